// internal/domain/coupon/entity.go
package coupon

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountType represents how a coupon's value is interpreted
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Coupon represents a discount coupon
type Coupon struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Code          string         `gorm:"uniqueIndex;not null;size:50" json:"code"`
	Description   string         `gorm:"size:255" json:"description"`
	DiscountType  DiscountType   `gorm:"not null;size:20" json:"discount_type"`
	DiscountValue int64          `gorm:"not null" json:"discount_value"` // Percent (whole number) or cents
	MinAmount     int64          `gorm:"default:0" json:"min_amount"`    // Minimum cart subtotal in cents
	MaxDiscount   *int64         `json:"max_discount"`                   // Cap for percentage discounts, in cents
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	StartsAt      time.Time      `gorm:"not null" json:"starts_at"`
	EndsAt        time.Time      `gorm:"not null" json:"ends_at"`
	MaxUses       *int           `json:"max_uses"` // Nil means unlimited
	UsedCount     int            `gorm:"default:0" json:"used_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Coupon) TableName() string {
	return "coupons"
}

// IsWithinWindow checks whether the coupon is active at the given time
func (c *Coupon) IsWithinWindow(now time.Time) bool {
	return !now.Before(c.StartsAt) && !now.After(c.EndsAt)
}

// IsExhausted checks whether the coupon has hit its usage limit
func (c *Coupon) IsExhausted() bool {
	return c.MaxUses != nil && c.UsedCount >= *c.MaxUses
}

// DiscountFor computes the discount in cents for a cart subtotal. The
// discount never exceeds the subtotal, and percentage discounts honor the
// MaxDiscount cap when one is set.
func (c *Coupon) DiscountFor(subtotal int64) int64 {
	var discount int64
	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(c.DiscountValue)).
			Div(decimal.NewFromInt(100)).
			Round(0).IntPart()
		if c.MaxDiscount != nil && discount > *c.MaxDiscount {
			discount = *c.MaxDiscount
		}
	case DiscountTypeFixed:
		discount = c.DiscountValue
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
