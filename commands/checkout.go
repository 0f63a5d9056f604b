package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raynott/decmart/api"
	"github.com/raynott/decmart/checkout"
)

func newCheckoutCmd(app *App) *cobra.Command {
	var shipping api.ShippingInfo

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Start checkout for the current cart",
		Long: `Validate the shipping details, create the order and open a gateway
order for it. The flow is persisted locally; complete it with
'decmart pay confirm' once the hosted payment UI reports success.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireLogin(); err != nil {
				return err
			}

			flow, err := app.Checkout.Begin(cmd.Context(), shipping)
			if err != nil {
				return err
			}

			opts, err := app.Checkout.Options(flow)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Order %s created, total %s.\n\n", flow.OrderID, money(flow.Total))
			fmt.Fprintln(out, "Open the hosted payment UI with these options:")

			rendered, err := json.MarshalIndent(opts, "", "  ")
			if err != nil {
				return fmt.Errorf("render checkout options: %w", err)
			}
			fmt.Fprintf(out, "%s\n\n", rendered)
			fmt.Fprintln(out, "Then run: decmart pay confirm --payment-id <id> --signature <sig>")
			return nil
		},
	}

	cmd.Flags().StringVar(&shipping.Address, "address", "", "Full street address")
	cmd.Flags().StringVar(&shipping.City, "city", "", "City")
	cmd.Flags().StringVar(&shipping.State, "state", "", "State")
	cmd.Flags().StringVar(&shipping.Pincode, "pincode", "", "6-digit pincode")
	cmd.Flags().StringVar(&shipping.Phone, "phone", "", "10-digit phone number")

	return cmd
}

func newPayCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay",
		Short: "Complete or inspect the pending checkout",
	}

	cmd.AddCommand(
		newPayStatusCmd(app),
		newPayConfirmCmd(app),
		newPayFailCmd(app),
		newPayAbandonCmd(app),
	)

	return cmd
}

func newPayStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the pending checkout flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			flow, err := app.Checkout.Resume()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Attempt:  %s\n", flow.AttemptID)
			fmt.Fprintf(out, "State:    %s\n", flow.State)
			fmt.Fprintf(out, "Order:    %s\n", flow.OrderID)
			if flow.GatewayOrder != nil {
				fmt.Fprintf(out, "Gateway:  %s (%d %s)\n", flow.GatewayOrder.ID, flow.GatewayOrder.Amount, flow.GatewayOrder.Currency)
			}
			fmt.Fprintf(out, "Total:    %s\n", money(flow.Total))
			if flow.Reason != "" {
				fmt.Fprintf(out, "Reason:   %s\n", flow.Reason)
			}
			fmt.Fprintf(out, "Started:  %s\n", flow.StartedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}

func newPayConfirmCmd(app *App) *cobra.Command {
	var paymentID, signature string

	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Forward the gateway completion and finalize the order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireLogin(); err != nil {
				return err
			}

			order, err := app.Checkout.Confirm(cmd.Context(), checkout.Completion{
				PaymentID: paymentID,
				Signature: signature,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Payment successful! Order %s is placed.\n", order.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&paymentID, "payment-id", "", "Gateway payment ID from the completion callback")
	cmd.Flags().StringVar(&signature, "signature", "", "Gateway signature from the completion callback")
	cmd.MarkFlagRequired("payment-id")
	cmd.MarkFlagRequired("signature")

	return cmd
}

func newPayFailCmd(app *App) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "fail",
		Short: "Mark the pending checkout as failed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Checkout.Fail(reason); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Checkout marked as failed. The cart is untouched.")
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "payment cancelled", "Why the payment did not complete")

	return cmd
}

func newPayAbandonCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "abandon",
		Short: "Discard the pending checkout flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Checkout.Abandon(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Checkout flow discarded.")
			return nil
		},
	}
}
