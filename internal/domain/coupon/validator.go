// internal/domain/coupon/validator.go
package coupon

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrCouponInvalid           = errors.New("coupon is invalid or inactive")
	ErrMinimumAmountNotMet     = errors.New("cart subtotal is below the coupon minimum")
	ErrCouponUsageLimitReached = errors.New("coupon usage limit reached")
)

// Discount is the result of a successful coupon validation
type Discount struct {
	Coupon *Coupon `json:"coupon"`
	Amount int64   `json:"amount"` // In cents
}

// Validator validates a coupon code against a cart subtotal and returns the
// computed discount. Validation never mutates the coupon; Redeem is called
// separately once an order actually materializes.
type Validator struct {
	repo Repository
	now  func() time.Time
}

// NewValidator creates a Validator backed by the given Repository
func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo, now: time.Now}
}

// Validate checks a coupon against the active window, minimum amount and
// usage limit, and computes the discount for the given subtotal.
func (v *Validator) Validate(ctx context.Context, code string, subtotal int64) (*Discount, error) {
	c, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrCouponInvalid) {
			return nil, ErrCouponInvalid
		}
		return nil, fmt.Errorf("coupon lookup failed: %w", err)
	}

	if !c.IsActive {
		return nil, ErrCouponInvalid
	}
	if !c.IsWithinWindow(v.now()) {
		return nil, ErrCouponInvalid
	}
	if subtotal < c.MinAmount {
		return nil, fmt.Errorf("%w: minimum is %d", ErrMinimumAmountNotMet, c.MinAmount)
	}
	if c.IsExhausted() {
		return nil, ErrCouponUsageLimitReached
	}

	return &Discount{
		Coupon: c,
		Amount: c.DiscountFor(subtotal),
	}, nil
}
