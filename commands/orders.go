package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raynott/decmart/api"
)

func newOrdersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "orders [order-id]",
		Short: "Show your order history, or one order in detail",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireLogin(); err != nil {
				return err
			}

			if len(args) == 1 {
				order, err := app.Client.GetOrder(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatOrder(order))
				return nil
			}

			orders, err := app.Client.MyOrders(cmd.Context())
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
				fmt.Fprintf(out, "%s  %s  %d item(s)  %s  %s\n",
					o.ID,
					o.CreatedAt.Format("2006-01-02"),
					len(o.OrderItems),
					money(o.TotalPrice),
					status,
				)
			}
			return nil
		},
	}
}

func formatOrder(o *api.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Order %s\n", o.ID)
	if !o.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Placed:   %s\n", o.CreatedAt.Format("2006-01-02 15:04"))
	}
	if o.Status != "" {
		fmt.Fprintf(&b, "Status:   %s\n", o.Status)
	}
	if o.PaymentInfo != nil {
		fmt.Fprintf(&b, "Payment:  %s (%s)\n", o.PaymentInfo.Status, o.PaymentInfo.GatewayPaymentID)
	}

	b.WriteString("\nItems:\n")
	for _, it := range o.OrderItems {
		name := it.Name
		if name == "" {
			name = it.Product
		}
		fmt.Fprintf(&b, "  %dx %-30s %s\n", it.Qty, name, money(it.Price))
	}

	s := o.ShippingInfo
	fmt.Fprintf(&b, "\nShip to:  %s, %s, %s %s (phone %s)\n",
		s.Address, s.City, s.State, s.Pincode, s.Phone)
	fmt.Fprintf(&b, "Total:    %s\n", money(o.TotalPrice))

	return b.String()
}
