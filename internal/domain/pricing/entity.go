// internal/domain/pricing/entity.go
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricingConfig holds the pricing rules for one delivery location. Every
// location a store ships to has exactly one active config; checkout for a
// location without a config is rejected rather than priced at zero.
type PricingConfig struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	LocationKey           string         `gorm:"uniqueIndex;not null;size:100" json:"location_key"`
	FreeShippingThreshold int64          `gorm:"default:0" json:"free_shipping_threshold"` // In cents
	IsActive              bool           `gorm:"default:true" json:"is_active"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	ShippingFees []ShippingFee `gorm:"foreignKey:PricingConfigID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"shipping_fees"`
	TaxTiers     []TaxTier     `gorm:"foreignKey:PricingConfigID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"tax_tiers"`
	PaymentFees  []PaymentFee  `gorm:"foreignKey:PricingConfigID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"payment_fees"`
}

// ShippingFee represents the fee for one shipping method in a location
type ShippingFee struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PricingConfigID uint      `gorm:"not null;index" json:"pricing_config_id"`
	Method          string    `gorm:"not null;size:100" json:"method"`
	Fee             int64     `gorm:"not null" json:"fee"` // In cents
	EstimatedDays   int       `gorm:"default:0" json:"estimated_days"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TaxTier represents a tax rate bracket over the discounted subtotal.
// MaxAmount nil means the bracket is open-ended.
type TaxTier struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	PricingConfigID uint            `gorm:"not null;index" json:"pricing_config_id"`
	MinAmount       int64           `gorm:"not null" json:"min_amount"` // In cents
	MaxAmount       *int64          `json:"max_amount"`
	Rate            decimal.Decimal `gorm:"type:decimal(6,4);not null" json:"rate"` // e.g. 0.05 for 5%
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// PaymentFee represents a surcharge for a payment method in a location
type PaymentFee struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PricingConfigID uint      `gorm:"not null;index" json:"pricing_config_id"`
	Method          string    `gorm:"not null;size:50" json:"method"`
	Fee             int64     `gorm:"not null" json:"fee"` // In cents
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName overrides
func (PricingConfig) TableName() string { return "pricing_configs" }
func (ShippingFee) TableName() string   { return "shipping_fees" }
func (TaxTier) TableName() string       { return "tax_tiers" }
func (PaymentFee) TableName() string    { return "payment_fees" }

// ResolveTaxRate returns the tax rate for the given amount: the first tier
// whose bracket contains it. An amount matching no tier is taxed at zero.
func (c *PricingConfig) ResolveTaxRate(amount int64) decimal.Decimal {
	for _, tier := range c.TaxTiers {
		if amount < tier.MinAmount {
			continue
		}
		if tier.MaxAmount != nil && amount > *tier.MaxAmount {
			continue
		}
		return tier.Rate
	}
	return decimal.Zero
}

// TaxFor computes the tax in cents for the given amount, rounded to the
// nearest cent.
func (c *PricingConfig) TaxFor(amount int64) int64 {
	rate := c.ResolveTaxRate(amount)
	if rate.IsZero() {
		return 0
	}
	return decimal.NewFromInt(amount).Mul(rate).Round(0).IntPart()
}

// ShippingFeeFor returns the fee for a shipping method, honoring the
// free-shipping threshold for the "Free Shipping" method.
func (c *PricingConfig) ShippingFeeFor(method string, discountedSubtotal int64) (int64, bool) {
	for _, sf := range c.ShippingFees {
		if sf.Method != method {
			continue
		}
		if method == "Free Shipping" && c.FreeShippingThreshold > 0 && discountedSubtotal >= c.FreeShippingThreshold {
			return 0, true
		}
		return sf.Fee, true
	}
	return 0, false
}

// PaymentFeeFor returns the surcharge for a payment method, zero when the
// location defines none.
func (c *PricingConfig) PaymentFeeFor(method string) int64 {
	for _, pf := range c.PaymentFees {
		if pf.Method == method {
			return pf.Fee
		}
	}
	return 0
}
