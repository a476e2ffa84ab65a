package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func testConfig() *PricingConfig {
	return &PricingConfig{
		LocationKey:           "nairobi",
		FreeShippingThreshold: 100000,
		TaxTiers: []TaxTier{
			{MinAmount: 0, MaxAmount: int64Ptr(49999), Rate: decimal.NewFromFloat(0.00)},
			{MinAmount: 50000, MaxAmount: int64Ptr(199999), Rate: decimal.NewFromFloat(0.05)},
			{MinAmount: 200000, MaxAmount: nil, Rate: decimal.NewFromFloat(0.08)},
		},
		ShippingFees: []ShippingFee{
			{Method: "Standard", Fee: 20000, EstimatedDays: 3},
			{Method: "Express", Fee: 45000, EstimatedDays: 1},
			{Method: "Free Shipping", Fee: 15000, EstimatedDays: 7},
		},
		PaymentFees: []PaymentFee{
			{Method: "cod", Fee: 5000},
		},
	}
}

func TestResolveTaxRate(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name   string
		amount int64
		want   decimal.Decimal
	}{
		{name: "bottom tier", amount: 10000, want: decimal.NewFromFloat(0.00)},
		{name: "top of bottom tier", amount: 49999, want: decimal.NewFromFloat(0.00)},
		{name: "middle tier lower bound", amount: 50000, want: decimal.NewFromFloat(0.05)},
		{name: "middle tier", amount: 92000, want: decimal.NewFromFloat(0.05)},
		{name: "open-ended tier lower bound", amount: 200000, want: decimal.NewFromFloat(0.08)},
		{name: "open-ended tier large amount", amount: 10000000, want: decimal.NewFromFloat(0.08)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.ResolveTaxRate(tt.amount)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestResolveTaxRateNoMatchingTier(t *testing.T) {
	cfg := &PricingConfig{
		TaxTiers: []TaxTier{
			{MinAmount: 50000, MaxAmount: int64Ptr(100000), Rate: decimal.NewFromFloat(0.05)},
		},
	}
	// Amounts outside every bracket are taxed at zero
	assert.True(t, cfg.ResolveTaxRate(10000).IsZero())
	assert.True(t, cfg.ResolveTaxRate(200000).IsZero())
}

func TestTaxFor(t *testing.T) {
	cfg := testConfig()

	// 92000 cents at 5% = 4600 cents
	assert.Equal(t, int64(4600), cfg.TaxFor(92000))

	// Rounds to nearest cent: 50001 * 0.05 = 2500.05 -> 2500
	assert.Equal(t, int64(2500), cfg.TaxFor(50001))

	// Below the taxed bracket
	assert.Equal(t, int64(0), cfg.TaxFor(30000))
}

func TestShippingFeeFor(t *testing.T) {
	cfg := testConfig()

	fee, ok := cfg.ShippingFeeFor("Standard", 50000)
	assert.True(t, ok)
	assert.Equal(t, int64(20000), fee)

	// Free Shipping below threshold still charges the configured fee
	fee, ok = cfg.ShippingFeeFor("Free Shipping", 50000)
	assert.True(t, ok)
	assert.Equal(t, int64(15000), fee)

	// Free Shipping above threshold is free
	fee, ok = cfg.ShippingFeeFor("Free Shipping", 150000)
	assert.True(t, ok)
	assert.Equal(t, int64(0), fee)

	_, ok = cfg.ShippingFeeFor("Drone", 50000)
	assert.False(t, ok)
}

func TestPaymentFeeFor(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t, int64(5000), cfg.PaymentFeeFor("cod"))
	assert.Equal(t, int64(0), cfg.PaymentFeeFor("mpesa"))
}
