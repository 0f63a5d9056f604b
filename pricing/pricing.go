// Package pricing derives order totals from a cart snapshot.
// All arithmetic uses fixed-point decimals so repeated derivation
// never accumulates floating-point drift.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rules configures a pricing derivation. Different surfaces charge
// differently (the cart preview and the checkout flow each carry their
// own rules), so these are inputs, never constants.
type Rules struct {
	// TaxRate is the fractional tax rate (0.18 = 18%).
	TaxRate decimal.Decimal
	// ShippingThreshold is the subtotal above which shipping is free.
	ShippingThreshold decimal.Decimal
	// ShippingFee is charged when the subtotal does not exceed the threshold.
	ShippingFee decimal.Decimal
}

// Validate checks that the rules are usable.
func (r Rules) Validate() error {
	if r.TaxRate.IsNegative() {
		return fmt.Errorf("tax_rate must not be negative")
	}
	if r.ShippingThreshold.IsNegative() {
		return fmt.Errorf("shipping_threshold must not be negative")
	}
	if r.ShippingFee.IsNegative() {
		return fmt.Errorf("shipping_fee must not be negative")
	}
	return nil
}

// Line is the minimal view of a cart line the deriver needs.
type Line struct {
	Price decimal.Decimal
	Qty   int
}

// Breakdown holds the derived figures for one cart snapshot. It is
// recomputed on every read and never cached, since the cart can change
// between reads.
type Breakdown struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Tax         decimal.Decimal `json:"tax"`
	Total       decimal.Decimal `json:"total"`
}

// Compute derives a Breakdown from the given lines under the given rules.
// It is a pure function: no side effects, safe to call on every render.
//
// Shipping is free only when the subtotal strictly exceeds the threshold;
// a subtotal exactly at the threshold still pays the fee.
func Compute(lines []Line, rules Rules) Breakdown {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Qty))))
	}

	fee := rules.ShippingFee
	if subtotal.GreaterThan(rules.ShippingThreshold) {
		fee = decimal.Zero
	}

	tax := subtotal.Mul(rules.TaxRate)

	return Breakdown{
		Subtotal:    subtotal,
		ShippingFee: fee,
		Tax:         tax,
		Total:       subtotal.Add(fee).Add(tax),
	}
}

// FreeShippingGap returns how much more must be spent to qualify for free
// shipping, or zero when the subtotal already exceeds the threshold.
func FreeShippingGap(subtotal decimal.Decimal, rules Rules) decimal.Decimal {
	if subtotal.GreaterThan(rules.ShippingThreshold) {
		return decimal.Zero
	}
	return rules.ShippingThreshold.Sub(subtotal)
}
