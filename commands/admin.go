package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/raynott/decmart/api"
	"github.com/raynott/decmart/checkout"
	"github.com/raynott/decmart/session"
)

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Back-office operations (admin accounts only)",
	}

	cmd.AddCommand(
		newAdminBootstrapCmd(app),
		newAdminUsersCmd(app),
		newAdminRoleCmd(app),
		newAdminRemoveUserCmd(app),
		newAdminCreateAdminCmd(app),
		newAdminOrdersCmd(app),
		newAdminSetStatusCmd(app),
		newAdminAddProductCmd(app),
		newAdminEditProductCmd(app),
		newAdminRemoveProductCmd(app),
	)

	return cmd
}

// requireAdmin is the command-side gate; the backend enforces the role
// on every admin route regardless.
func (a *App) requireAdmin() (session.Session, error) {
	sess, err := a.requireLogin()
	if err != nil {
		return sess, err
	}
	if sess.User == nil || !sess.User.IsAdmin {
		return sess, fmt.Errorf("this command needs an admin account")
	}
	return sess, nil
}

func newAdminBootstrapCmd(app *App) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Register the first admin account",
		Long: `Create the initial admin account. The backend only allows this
while no admin exists; afterwards use 'admin create-admin'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.RegisterRequest{Name: name, Email: email, Password: password}
			if err := checkout.ValidateRegistration(req); err != nil {
				return err
			}

			auth, err := app.Client.RegisterInitialAdmin(cmd.Context(), req)
			if err != nil {
				return err
			}

			if err := app.Sessions.Login(toSessionUser(auth.User()), auth.Token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin account created. Logged in as %s.\n", auth.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Admin display name")
	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	cmd.Flags().StringVar(&password, "password", "", "Admin password")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newAdminUsersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAdmin(); err != nil {
				return err
			}

			users, err := app.Client.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, u := range users {
				role := "customer"
				if u.IsAdmin {
					role = "admin"
				}
				fmt.Fprintf(out, "%s  %-20s %-30s %s\n", u.ID, u.Name, u.Email, role)
			}
			return nil
		},
	}
}

func newAdminRoleCmd(app *App) *cobra.Command {
	var admin bool

	cmd := &cobra.Command{
		Use:   "role <user-id>",
		Short: "Grant or revoke a user's admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAdmin(); err != nil {
				return err
			}

			if err := app.Client.UpdateUserRole(cmd.Context(), args[0], admin); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s admin=%t.\n", args[0], admin)
			return nil
		},
	}

	cmd.Flags().BoolVar(&admin, "admin", false, "Grant (true) or revoke (false) the admin role")

	return cmd
}

func newAdminRemoveUserCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-user <user-id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.requireAdmin()
			if err != nil {
				return err
			}
			if sess.User.ID == args[0] {
				return fmt.Errorf("refusing to delete the account you are logged in as")
			}

			if err := app.Client.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User %s deleted.\n", args[0])
			return nil
		},
	}
}

func newAdminCreateAdminCmd(app *App) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create another admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAdmin(); err != nil {
				return err
			}
			req := api.RegisterRequest{Name: name, Email: email, Password: password}
			if err := checkout.ValidateRegistration(req); err != nil {
				return err
			}

			user, err := app.Client.CreateAdmin(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s (%s) created.\n", user.Name, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Admin display name")
	cmd.Flags().StringVar(&email, "email", "", "Admin email")
	cmd.Flags().StringVar(&password, "password", "", "Admin password")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newAdminOrdersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List every order in the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAdmin(); err != nil {
				return err
			}

			orders, err := app.Client.ListOrders(cmd.Context())
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No orders yet.")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, o := range orders {
				status := o.Status
				if status == "" {
					status = "Processing"
				}
				fmt.Fprintf(out, "%s  %s  user=%s  %s  %s\n",
					o.ID,
					o.CreatedAt.Format("2006-01-02"),
					o.User,
					money(o.TotalPrice),
					status,
				)
			}
			return nil
		},
	}
}

func newAdminSetStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <order-id> <status>",
		Short: "Update an order's fulfilment status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAdmin(); err != nil {
				return err
			}

			if err := app.Client.UpdateOrderStatus(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s is now %q.\n", args[0], args[1])
			return nil
		},
	}
}

// productFlags binds the shared create/edit product flags.
type productFlags struct {
	name        string
	price       string
	image       string
	description string
	brand       string
	category    string
	stock       int
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Product name")
	cmd.Flags().StringVar(&f.price, "price", "", "Price, e.g. 199.99")
	cmd.Flags().StringVar(&f.image, "image", "", "Image URL")
	cmd.Flags().StringVar(&f.description, "description", "", "Description")
	cmd.Flags().StringVar(&f.brand, "brand", "", "Brand")
	cmd.Flags().StringVar(&f.category, "category", "", "Category")
	cmd.Flags().IntVar(&f.stock, "stock", 0, "Units in stock")
}

func (f *productFlags) input() (api.ProductInput, error) {
	if f.name == "" {
		return api.ProductInput{}, fmt.Errorf("product name is required")
	}
	price, err := decimal.NewFromString(f.price)
	if err != nil {
		return api.ProductInput{}, fmt.Errorf("parse price %q: %w", f.price, err)
	}
	if price.IsNegative() {
		return api.ProductInput{}, fmt.Errorf("price cannot be negative")
	}
	if f.stock < 0 {
		return api.ProductInput{}, fmt.Errorf("stock cannot be negative")
	}

	return api.ProductInput{
		Name:         f.name,
		Price:        price,
		Image:        f.image,
		Description:  f.description,
		Brand:        f.brand,
		Category:     f.category,
		CountInStock: f.stock,
	}, nil
}

func newAdminAddProductCmd(app *App) *cobra.Command {
	var flags productFlags

	cmd := &cobra.Command{
		Use:   "add-product",
		Short: "Add a product to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAdmin(); err != nil {
				return err
			}

			input, err := flags.input()
			if err != nil {
				return err
			}

			product, err := app.Client.CreateProduct(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product %s (%s) added at %s.\n",
				product.Name, product.ID, money(product.Price))
			return nil
		},
	}

	flags.register(cmd)
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("price")

	return cmd
}

func newAdminEditProductCmd(app *App) *cobra.Command {
	var flags productFlags

	cmd := &cobra.Command{
		Use:   "edit-product <product-id>",
		Short: "Replace a product's catalog entry",
		Long: `Replace the product's fields with the given values. Flags not set
fall back to the product's current values, fetched first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAdmin(); err != nil {
				return err
			}

			current, err := app.Client.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("name") {
				flags.name = current.Name
			}
			if !cmd.Flags().Changed("price") {
				flags.price = current.Price.String()
			}
			if !cmd.Flags().Changed("image") {
				flags.image = current.Image
			}
			if !cmd.Flags().Changed("description") {
				flags.description = current.Description
			}
			if !cmd.Flags().Changed("brand") {
				flags.brand = current.Brand
			}
			if !cmd.Flags().Changed("category") {
				flags.category = current.Category
			}
			if !cmd.Flags().Changed("stock") {
				flags.stock = current.CountInStock
			}

			input, err := flags.input()
			if err != nil {
				return err
			}

			product, err := app.Client.UpdateProduct(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product %s updated.\n", product.ID)
			return nil
		},
	}

	flags.register(cmd)

	return cmd
}

func newAdminRemoveProductCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm-product <product-id>",
		Short: "Remove a product from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAdmin(); err != nil {
				return err
			}

			if err := app.Client.DeleteProduct(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product %s removed.\n", args[0])
			return nil
		},
	}
}
