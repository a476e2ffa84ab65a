package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCouponRepo struct {
	coupons map[string]*Coupon
}

func (m *mockCouponRepo) FindByCode(_ context.Context, code string) (*Coupon, error) {
	c, ok := m.coupons[code]
	if !ok {
		return nil, ErrCouponInvalid
	}
	cp := *c
	return &cp, nil
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func newTestValidator(coupons ...*Coupon) *Validator {
	repo := &mockCouponRepo{coupons: map[string]*Coupon{}}
	for _, c := range coupons {
		repo.coupons[c.Code] = c
	}
	v := NewValidator(repo)
	v.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return v
}

func activeCoupon() *Coupon {
	return &Coupon{
		Code:          "SAVE20",
		DiscountType:  DiscountTypePercentage,
		DiscountValue: 20,
		MinAmount:     50000,
		MaxDiscount:   int64Ptr(30000),
		IsActive:      true,
		StartsAt:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:        time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC),
		MaxUses:       intPtr(100),
		UsedCount:     10,
	}
}

func TestValidatePercentageDiscount(t *testing.T) {
	v := newTestValidator(activeCoupon())

	d, err := v.Validate(context.Background(), "SAVE20", 100000)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), d.Amount)
	assert.Equal(t, "SAVE20", d.Coupon.Code)
}

func TestValidatePercentageDiscountCapped(t *testing.T) {
	v := newTestValidator(activeCoupon())

	// 20% of 500000 is 100000, capped at 30000
	d, err := v.Validate(context.Background(), "SAVE20", 500000)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), d.Amount)
}

func TestValidateFixedDiscount(t *testing.T) {
	c := activeCoupon()
	c.Code = "FLAT500"
	c.DiscountType = DiscountTypeFixed
	c.DiscountValue = 50000
	c.MaxDiscount = nil
	c.MinAmount = 0
	v := newTestValidator(c)

	d, err := v.Validate(context.Background(), "FLAT500", 80000)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), d.Amount)

	// Fixed discount never exceeds the subtotal
	d, err = v.Validate(context.Background(), "FLAT500", 30000)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), d.Amount)
}

func TestValidateUnknownCode(t *testing.T) {
	v := newTestValidator(activeCoupon())

	_, err := v.Validate(context.Background(), "NOPE", 100000)
	assert.ErrorIs(t, err, ErrCouponInvalid)
}

func TestValidateInactiveCoupon(t *testing.T) {
	c := activeCoupon()
	c.IsActive = false
	v := newTestValidator(c)

	_, err := v.Validate(context.Background(), "SAVE20", 100000)
	assert.ErrorIs(t, err, ErrCouponInvalid)
}

func TestValidateOutsideWindow(t *testing.T) {
	notStarted := activeCoupon()
	notStarted.Code = "FUTURE"
	notStarted.StartsAt = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	notStarted.EndsAt = time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)

	expired := activeCoupon()
	expired.Code = "PAST"
	expired.StartsAt = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	expired.EndsAt = time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)

	v := newTestValidator(notStarted, expired)

	_, err := v.Validate(context.Background(), "FUTURE", 100000)
	assert.ErrorIs(t, err, ErrCouponInvalid)

	_, err = v.Validate(context.Background(), "PAST", 100000)
	assert.ErrorIs(t, err, ErrCouponInvalid)
}

func TestValidateWindowBoundaries(t *testing.T) {
	c := activeCoupon()
	v := newTestValidator(c)

	// Exactly at StartsAt and EndsAt the coupon is usable
	v.now = func() time.Time { return c.StartsAt }
	_, err := v.Validate(context.Background(), "SAVE20", 100000)
	assert.NoError(t, err)

	v.now = func() time.Time { return c.EndsAt }
	_, err = v.Validate(context.Background(), "SAVE20", 100000)
	assert.NoError(t, err)
}

func TestValidateMinimumAmount(t *testing.T) {
	v := newTestValidator(activeCoupon())

	_, err := v.Validate(context.Background(), "SAVE20", 49999)
	assert.ErrorIs(t, err, ErrMinimumAmountNotMet)

	// Exactly at the minimum is allowed
	_, err = v.Validate(context.Background(), "SAVE20", 50000)
	assert.NoError(t, err)
}

func TestValidateUsageLimitReached(t *testing.T) {
	c := activeCoupon()
	c.UsedCount = 100
	v := newTestValidator(c)

	_, err := v.Validate(context.Background(), "SAVE20", 100000)
	assert.ErrorIs(t, err, ErrCouponUsageLimitReached)
}

func TestValidateUnlimitedUses(t *testing.T) {
	c := activeCoupon()
	c.MaxUses = nil
	c.UsedCount = 1000000
	v := newTestValidator(c)

	_, err := v.Validate(context.Background(), "SAVE20", 100000)
	assert.NoError(t, err)
}

func TestValidateDoesNotMutateUsage(t *testing.T) {
	repo := &mockCouponRepo{coupons: map[string]*Coupon{"SAVE20": activeCoupon()}}
	v := NewValidator(repo)
	v.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }

	for i := 0; i < 5; i++ {
		_, err := v.Validate(context.Background(), "SAVE20", 100000)
		require.NoError(t, err)
	}

	// Validation is side-effect free; only order creation redeems
	assert.Equal(t, 10, repo.coupons["SAVE20"].UsedCount)
}
