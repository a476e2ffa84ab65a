// internal/domain/checkout/totals.go
package checkout

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
)

var (
	ErrTotalMismatch     = errors.New("client total does not match server total")
	ErrUnknownShipping   = errors.New("unknown shipping method for location")
	ErrNothingToCheckout = errors.New("no items to price")
)

// TotalTolerance is the permitted drift between the client's displayed
// total and the server's recomputed one, in cents. Anything beyond it
// aborts checkout before a single write happens.
const TotalTolerance int64 = 1

// Pricing is the authoritative server-side order total breakdown.
// All amounts are in cents.
type Pricing struct {
	Subtotal       int64           `json:"subtotal"`
	DiscountAmount int64           `json:"discount_amount"`
	ShippingCost   int64           `json:"shipping_cost"`
	TaxAmount      int64           `json:"tax_amount"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	PaymentFee     int64           `json:"payment_fee"`
	TotalAmount    int64           `json:"total_amount"`
}

// CalculatePricing recomputes an order's money from verified cart lines and
// the location's pricing rules. The order of operations is fixed: discount
// applies to the subtotal, then shipping and tax are derived from the
// discounted subtotal.
func CalculatePricing(lines []cart.VerifiedLine, discount int64, cfg *pricing.PricingConfig, shippingMethod string, paymentMethod string) (*Pricing, error) {
	if len(lines) == 0 {
		return nil, ErrNothingToCheckout
	}

	var subtotal int64
	for _, line := range lines {
		subtotal += line.UnitPrice * int64(line.Quantity)
	}

	if discount > subtotal {
		discount = subtotal
	}
	discounted := subtotal - discount

	shipping, ok := cfg.ShippingFeeFor(shippingMethod, discounted)
	if !ok {
		return nil, ErrUnknownShipping
	}

	taxRate := cfg.ResolveTaxRate(discounted)
	tax := cfg.TaxFor(discounted)
	paymentFee := cfg.PaymentFeeFor(paymentMethod)

	return &Pricing{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		ShippingCost:   shipping,
		TaxAmount:      tax,
		TaxRate:        taxRate,
		PaymentFee:     paymentFee,
		TotalAmount:    discounted + shipping + tax + paymentFee,
	}, nil
}

// Reconcile compares the client's displayed total against the server's.
// The server total always wins; a drift beyond TotalTolerance means the
// client was showing stale prices and the order must not be created.
func (p *Pricing) Reconcile(clientTotal int64) error {
	diff := p.TotalAmount - clientTotal
	if diff < 0 {
		diff = -diff
	}
	if diff > TotalTolerance {
		return ErrTotalMismatch
	}
	return nil
}
