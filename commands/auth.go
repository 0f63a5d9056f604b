package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raynott/decmart/api"
	"github.com/raynott/decmart/checkout"
	"github.com/raynott/decmart/session"
)

var errNotLoggedIn = errors.New("not logged in, run 'decmart login' first")

func newRegisterCmd(app *App) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.RegisterRequest{Name: name, Email: email, Password: password}
			if err := checkout.ValidateRegistration(req); err != nil {
				return err
			}

			resp, err := app.Client.Register(cmd.Context(), req)
			if err != nil {
				return err
			}

			if err := app.Sessions.Login(toSessionUser(resp.User()), resp.Token); err != nil {
				return fmt.Errorf("persist session: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! You are now logged in.\n", resp.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (min 6 characters)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkout.ValidateEmail(email); err != nil {
				return err
			}

			resp, err := app.Client.Login(cmd.Context(), api.LoginRequest{Email: email, Password: password})
			if err != nil {
				return err
			}

			if err := app.Sessions.Login(toSessionUser(resp.User()), resp.Token); err != nil {
				return fmt.Errorf("persist session: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s <%s>\n", resp.Name, resp.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Sessions.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newProfileCmd(app *App) *cobra.Command {
	var name, email, phone string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
		Long: `Show the logged-in profile, or update it when --name, --email or
--phone is given. Updates merge into the stored session without
re-authenticating.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireLogin(); err != nil {
				return err
			}

			if name == "" && email == "" && phone == "" {
				profile, err := app.Client.GetProfile(cmd.Context())
				if err != nil {
					return err
				}
				printProfile(cmd, profile)
				return nil
			}

			if email != "" {
				if err := checkout.ValidateEmail(email); err != nil {
					return err
				}
			}

			updated, err := app.Client.UpdateProfile(cmd.Context(), api.ProfileUpdate{
				Name:  name,
				Email: email,
				Phone: phone,
			})
			if err != nil {
				return err
			}

			patch := session.UserPatch{}
			if name != "" {
				patch.Name = &updated.Name
			}
			if email != "" {
				patch.Email = &updated.Email
			}
			if phone != "" {
				patch.Phone = &updated.Phone
			}
			if err := app.Sessions.UpdateUser(patch); err != nil {
				return fmt.Errorf("update stored session: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated.")
			printProfile(cmd, updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New full name")
	cmd.Flags().StringVar(&email, "email", "", "New email address")
	cmd.Flags().StringVar(&phone, "phone", "", "New phone number")

	return cmd
}

func printProfile(cmd *cobra.Command, u *api.User) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:  %s\n", u.Name)
	fmt.Fprintf(out, "Email: %s\n", u.Email)
	if u.Phone != "" {
		fmt.Fprintf(out, "Phone: %s\n", u.Phone)
	}
	if u.IsAdmin {
		fmt.Fprintln(out, "Role:  admin")
	}
}

func toSessionUser(u api.User) session.User {
	return session.User{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		IsAdmin: u.IsAdmin,
	}
}
