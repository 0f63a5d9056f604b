package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/raynott/decmart/cart"
	"github.com/raynott/decmart/pricing"
)

func newCartCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCart(cmd, app)
		},
	}

	cmd.AddCommand(
		newCartShowCmd(app),
		newCartAddCmd(app),
		newCartRemoveCmd(app),
		newCartQtyCmd(app),
		newCartClearCmd(app),
	)

	return cmd
}

func newCartShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart with the pricing breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showCart(cmd, app)
		},
	}
}

func showCart(cmd *cobra.Command, app *App) error {
	items := app.Carts.Load()
	out := cmd.OutOrStdout()

	if len(items) == 0 {
		fmt.Fprintln(out, "Your cart is empty.")
		return nil
	}

	rules, err := app.cartRules()
	if err != nil {
		return err
	}
	breakdown := pricing.Compute(cart.Lines(items), rules)

	var sb strings.Builder
	for i, it := range items {
		sb.WriteString(fmt.Sprintf("%2d. %-26s %3d × %10s = %10s\n",
			i+1, truncate(it.Name, 26), it.Qty, money(it.Price), money(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))))
	}
	sb.WriteString(fmt.Sprintf("\nSubtotal (%d items): %12s\n", cart.Count(items), money(breakdown.Subtotal)))
	if breakdown.ShippingFee.IsZero() {
		sb.WriteString(fmt.Sprintf("Shipping:            %12s\n", "FREE"))
	} else {
		sb.WriteString(fmt.Sprintf("Shipping:            %12s\n", money(breakdown.ShippingFee)))
		gap := pricing.FreeShippingGap(breakdown.Subtotal, rules)
		if gap.IsPositive() {
			sb.WriteString(fmt.Sprintf("  (add %s more for free shipping)\n", money(gap)))
		}
	}
	sb.WriteString(fmt.Sprintf("Tax:                 %12s\n", money(breakdown.Tax)))
	sb.WriteString(fmt.Sprintf("Total:               %12s\n", money(breakdown.Total)))

	fmt.Fprint(out, sb.String())
	return nil
}

func newCartAddCmd(app *App) *cobra.Command {
	var qty int

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Long: `Add a product to the cart. Adding a product that is already in the
cart increments its quantity instead of adding a second line.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if qty < 1 {
				return fmt.Errorf("quantity must be at least 1")
			}

			product, err := app.Client.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if product.CountInStock == 0 {
				return fmt.Errorf("%s is out of stock", product.Name)
			}

			if err := app.Carts.Add(cart.Item{
				Product: product.ID,
				Name:    product.Name,
				Price:   product.Price,
				Image:   product.Image,
				Qty:     qty,
			}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %d × %s to the cart.\n", qty, product.Name)
			return nil
		},
	}

	cmd.Flags().IntVar(&qty, "qty", 1, "Quantity to add")

	return cmd
}

func newCartRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <line>",
		Short: "Remove a cart line by its number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := parseLine(args[0], app)
			if err != nil {
				return err
			}
			if err := app.Carts.RemoveItem(line); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Item removed from cart.")
			return nil
		},
	}
}

func newCartQtyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "qty <line> <quantity>",
		Short: "Set the quantity of a cart line",
		Long: `Set the quantity of a cart line. Quantities below 1 are ignored:
use 'cart rm' to remove a line.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := parseLine(args[0], app)
			if err != nil {
				return err
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be a number: %w", err)
			}
			if qty < 1 {
				fmt.Fprintln(cmd.OutOrStdout(), "Quantity must be at least 1; cart unchanged.")
				return nil
			}
			if err := app.Carts.UpdateQuantity(line, qty); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Quantity updated.")
			return nil
		},
	}
}

func newCartClearCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove everything from the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Carts.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared.")
			return nil
		},
	}
}

// parseLine converts a 1-based line argument into a valid 0-based index.
func parseLine(arg string, app *App) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("line must be a number: %w", err)
	}
	idx := n - 1
	if idx < 0 || idx >= len(app.Carts.Load()) {
		return 0, fmt.Errorf("no cart line %d", n)
	}
	return idx, nil
}
