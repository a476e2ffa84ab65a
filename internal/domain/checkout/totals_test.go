package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
)

func int64Ptr(v int64) *int64 { return &v }

func nairobiConfig() *pricing.PricingConfig {
	return &pricing.PricingConfig{
		LocationKey:           "nairobi",
		FreeShippingThreshold: 500000,
		ShippingFees: []pricing.ShippingFee{
			{Method: "Standard", Fee: 20000, EstimatedDays: 3},
			{Method: "Express", Fee: 45000, EstimatedDays: 1},
			{Method: "Free Shipping", Fee: 25000, EstimatedDays: 7},
		},
		TaxTiers: []pricing.TaxTier{
			{MinAmount: 0, MaxAmount: int64Ptr(49999), Rate: decimal.Zero},
			{MinAmount: 50000, MaxAmount: int64Ptr(199999), Rate: decimal.NewFromFloat(0.05)},
			{MinAmount: 200000, MaxAmount: nil, Rate: decimal.NewFromFloat(0.08)},
		},
		PaymentFees: []pricing.PaymentFee{
			{Method: "cod", Fee: 5000},
		},
	}
}

func linesOf(totals ...int64) []cart.VerifiedLine {
	lines := make([]cart.VerifiedLine, 0, len(totals))
	for _, t := range totals {
		lines = append(lines, cart.VerifiedLine{Quantity: 1, UnitPrice: t, LineTotal: t})
	}
	return lines
}

func TestCalculatePricingBaseline(t *testing.T) {
	// 920.00 subtotal + 200.00 shipping + 5% tax (46.00) = 1166.00
	p, err := CalculatePricing(linesOf(92000), 0, nairobiConfig(), "Standard", "mpesa")
	require.NoError(t, err)

	assert.Equal(t, int64(92000), p.Subtotal)
	assert.Equal(t, int64(0), p.DiscountAmount)
	assert.Equal(t, int64(20000), p.ShippingCost)
	assert.Equal(t, int64(4600), p.TaxAmount)
	assert.Equal(t, int64(0), p.PaymentFee)
	assert.Equal(t, int64(116600), p.TotalAmount)
}

func TestCalculatePricingDiscountBeforeTax(t *testing.T) {
	// Discount pulls the taxable amount into a lower tier: 60000 - 20000 =
	// 40000 lands in the zero-rate bracket.
	p, err := CalculatePricing(linesOf(60000), 20000, nairobiConfig(), "Standard", "mpesa")
	require.NoError(t, err)

	assert.Equal(t, int64(60000), p.Subtotal)
	assert.Equal(t, int64(20000), p.DiscountAmount)
	assert.Equal(t, int64(0), p.TaxAmount)
	assert.Equal(t, int64(60000), p.TotalAmount) // 40000 + 20000 shipping
}

func TestCalculatePricingDiscountCappedAtSubtotal(t *testing.T) {
	p, err := CalculatePricing(linesOf(30000), 50000, nairobiConfig(), "Standard", "mpesa")
	require.NoError(t, err)

	assert.Equal(t, int64(30000), p.DiscountAmount)
	assert.Equal(t, int64(20000), p.TotalAmount) // Only shipping remains
}

func TestCalculatePricingFreeShippingThreshold(t *testing.T) {
	cfg := nairobiConfig()

	// Below threshold the configured fee applies
	p, err := CalculatePricing(linesOf(300000), 0, cfg, "Free Shipping", "mpesa")
	require.NoError(t, err)
	assert.Equal(t, int64(25000), p.ShippingCost)

	// At the threshold shipping is free
	p, err = CalculatePricing(linesOf(500000), 0, cfg, "Free Shipping", "mpesa")
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.ShippingCost)
}

func TestCalculatePricingPaymentFee(t *testing.T) {
	p, err := CalculatePricing(linesOf(92000), 0, nairobiConfig(), "Standard", "cod")
	require.NoError(t, err)

	assert.Equal(t, int64(5000), p.PaymentFee)
	assert.Equal(t, int64(121600), p.TotalAmount)
}

func TestCalculatePricingMultipleLines(t *testing.T) {
	lines := []cart.VerifiedLine{
		{Quantity: 2, UnitPrice: 25000, LineTotal: 50000},
		{Quantity: 1, UnitPrice: 42000, LineTotal: 42000},
	}
	p, err := CalculatePricing(lines, 0, nairobiConfig(), "Standard", "mpesa")
	require.NoError(t, err)

	assert.Equal(t, int64(92000), p.Subtotal)
	assert.Equal(t, int64(116600), p.TotalAmount)
}

func TestCalculatePricingUnknownShipping(t *testing.T) {
	_, err := CalculatePricing(linesOf(92000), 0, nairobiConfig(), "Teleport", "mpesa")
	assert.ErrorIs(t, err, ErrUnknownShipping)
}

func TestCalculatePricingEmptyLines(t *testing.T) {
	_, err := CalculatePricing(nil, 0, nairobiConfig(), "Standard", "mpesa")
	assert.ErrorIs(t, err, ErrNothingToCheckout)
}

func TestReconcile(t *testing.T) {
	p := &Pricing{TotalAmount: 116600}

	// Exact match and one-cent drift both pass
	assert.NoError(t, p.Reconcile(116600))
	assert.NoError(t, p.Reconcile(116599))
	assert.NoError(t, p.Reconcile(116601))

	// Two cents of drift is a stale client
	assert.ErrorIs(t, p.Reconcile(116598), ErrTotalMismatch)
	assert.ErrorIs(t, p.Reconcile(116602), ErrTotalMismatch)
	assert.ErrorIs(t, p.Reconcile(0), ErrTotalMismatch)
}
