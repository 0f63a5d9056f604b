package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rules(tax, threshold, fee string) Rules {
	return Rules{
		TaxRate:           decimal.RequireFromString(tax),
		ShippingThreshold: decimal.RequireFromString(threshold),
		ShippingFee:       decimal.RequireFromString(fee),
	}
}

func TestCompute_CheckoutScenario(t *testing.T) {
	// 2 × 100 under the 500 threshold: pays shipping and 18% tax.
	b := Compute([]Line{{Price: decimal.NewFromInt(100), Qty: 2}}, rules("0.18", "500", "49"))

	assert.True(t, b.Subtotal.Equal(decimal.NewFromInt(200)), "subtotal = %s", b.Subtotal)
	assert.True(t, b.ShippingFee.Equal(decimal.NewFromInt(49)), "shipping = %s", b.ShippingFee)
	assert.True(t, b.Tax.Equal(decimal.NewFromInt(36)), "tax = %s", b.Tax)
	assert.True(t, b.Total.Equal(decimal.NewFromInt(285)), "total = %s", b.Total)
}

func TestCompute_FreeShippingScenario(t *testing.T) {
	// 600 exceeds the 500 threshold: shipping is waived.
	b := Compute([]Line{{Price: decimal.NewFromInt(600), Qty: 1}}, rules("0.18", "500", "49"))

	assert.True(t, b.Subtotal.Equal(decimal.NewFromInt(600)))
	assert.True(t, b.ShippingFee.IsZero())
	assert.True(t, b.Tax.Equal(decimal.NewFromInt(108)))
	assert.True(t, b.Total.Equal(decimal.NewFromInt(708)))
}

func TestCompute_ThresholdBoundary(t *testing.T) {
	r := rules("0.08", "50", "9.99")

	tests := []struct {
		name     string
		subtotal string
		wantFee  string
	}{
		{"below threshold", "49.99", "9.99"},
		{"exactly at threshold", "50", "9.99"},
		{"above threshold", "50.01", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Compute([]Line{{Price: decimal.RequireFromString(tt.subtotal), Qty: 1}}, r)
			assert.True(t, b.ShippingFee.Equal(decimal.RequireFromString(tt.wantFee)),
				"fee = %s, want %s", b.ShippingFee, tt.wantFee)
		})
	}
}

func TestCompute_EmptyCart(t *testing.T) {
	b := Compute(nil, rules("0.18", "500", "49"))

	assert.True(t, b.Subtotal.IsZero())
	// Zero subtotal does not exceed the threshold, so the fee applies.
	assert.True(t, b.ShippingFee.Equal(decimal.NewFromInt(49)))
	assert.True(t, b.Tax.IsZero())
	assert.True(t, b.Total.Equal(decimal.NewFromInt(49)))
}

func TestCompute_Idempotent(t *testing.T) {
	lines := []Line{
		{Price: decimal.RequireFromString("19.99"), Qty: 3},
		{Price: decimal.RequireFromString("4.50"), Qty: 1},
	}
	r := rules("0.08", "50", "9.99")

	first := Compute(lines, r)
	second := Compute(lines, r)

	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.ShippingFee.Equal(second.ShippingFee))
	assert.True(t, first.Tax.Equal(second.Tax))
	assert.True(t, first.Total.Equal(second.Total))
}

func TestCompute_NoFloatDrift(t *testing.T) {
	// 0.1 + 0.2 style inputs stay exact under decimal arithmetic.
	b := Compute([]Line{
		{Price: decimal.RequireFromString("0.10"), Qty: 1},
		{Price: decimal.RequireFromString("0.20"), Qty: 1},
	}, rules("0", "1000", "0"))

	assert.True(t, b.Subtotal.Equal(decimal.RequireFromString("0.30")), "subtotal = %s", b.Subtotal)
}

func TestFreeShippingGap(t *testing.T) {
	r := rules("0.18", "500", "49")

	gap := FreeShippingGap(decimal.NewFromInt(200), r)
	assert.True(t, gap.Equal(decimal.NewFromInt(300)), "gap = %s", gap)

	assert.True(t, FreeShippingGap(decimal.NewFromInt(600), r).IsZero())
	// At the threshold the gap is zero even though shipping is still charged.
	assert.True(t, FreeShippingGap(decimal.NewFromInt(500), r).IsZero())
}

func TestRules_Validate(t *testing.T) {
	require.NoError(t, rules("0.18", "500", "49").Validate())

	bad := rules("0.18", "500", "49")
	bad.TaxRate = decimal.RequireFromString("-0.01")
	require.Error(t, bad.Validate())

	bad = rules("0.18", "500", "49")
	bad.ShippingFee = decimal.NewFromInt(-1)
	require.Error(t, bad.Validate())
}
