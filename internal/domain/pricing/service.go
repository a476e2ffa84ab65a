// internal/domain/pricing/service.go
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

var ErrConfigNotFound = errors.New("pricing config not found for location")

// Service handles pricing rules business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logrus.Logger
}

// NewService creates a new pricing service
func NewService(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// ShippingFeeInput represents one shipping method in an upsert request
type ShippingFeeInput struct {
	Method        string `json:"method" binding:"required"`
	Fee           int64  `json:"fee" binding:"gte=0"`
	EstimatedDays int    `json:"estimated_days"`
}

// TaxTierInput represents one tax bracket in an upsert request
type TaxTierInput struct {
	MinAmount int64           `json:"min_amount" binding:"gte=0"`
	MaxAmount *int64          `json:"max_amount"`
	Rate      decimal.Decimal `json:"rate"`
}

// PaymentFeeInput represents one payment surcharge in an upsert request
type PaymentFeeInput struct {
	Method string `json:"method" binding:"required"`
	Fee    int64  `json:"fee" binding:"gte=0"`
}

// UpsertConfigRequest represents the admin payload to create or replace a
// location's pricing rules
type UpsertConfigRequest struct {
	LocationKey           string             `json:"location_key" binding:"required"`
	FreeShippingThreshold int64              `json:"free_shipping_threshold" binding:"gte=0"`
	ShippingFees          []ShippingFeeInput `json:"shipping_fees" binding:"required,min=1"`
	TaxTiers              []TaxTierInput     `json:"tax_tiers"`
	PaymentFees           []PaymentFeeInput  `json:"payment_fees"`
}

// GetConfig loads the active pricing config for a location with all of its
// rule rows. Callers must treat ErrConfigNotFound as checkout-blocking.
func (s *Service) GetConfig(locationKey string) (*PricingConfig, error) {
	var cfg PricingConfig
	err := s.db.Preload("ShippingFees").
		Preload("TaxTiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("min_amount ASC")
		}).
		Preload("PaymentFees").
		Where("location_key = ? AND is_active = ?", locationKey, true).
		First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to load pricing config: %w", err)
	}
	return &cfg, nil
}

// CalculateTax resolves the tax tier for an amount and returns tax in cents
// along with the applied rate
func (s *Service) CalculateTax(locationKey string, amount int64) (int64, decimal.Decimal, error) {
	cfg, err := s.GetConfig(locationKey)
	if err != nil {
		return 0, decimal.Zero, err
	}

	rate := cfg.ResolveTaxRate(amount)
	if rate.IsZero() && len(cfg.TaxTiers) > 0 {
		s.logger.WithFields(logrus.Fields{
			"location": locationKey,
			"amount":   amount,
		}).Warn("No tax tier matched amount, taxing at zero")
	}

	return cfg.TaxFor(amount), rate, nil
}

// GetShippingOptions returns the shipping methods available for a location
func (s *Service) GetShippingOptions(locationKey string) ([]ShippingFee, error) {
	cfg, err := s.GetConfig(locationKey)
	if err != nil {
		return nil, err
	}
	return cfg.ShippingFees, nil
}

// UpsertConfig creates or fully replaces the pricing rules for a location
func (s *Service) UpsertConfig(req *UpsertConfigRequest) (*PricingConfig, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var cfg PricingConfig
	err := tx.Where("location_key = ?", req.LocationKey).First(&cfg).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return nil, fmt.Errorf("failed to look up pricing config: %w", err)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = PricingConfig{LocationKey: req.LocationKey}
		if err := tx.Create(&cfg).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create pricing config: %w", err)
		}
	} else {
		// Replace rule rows wholesale, partial edits are not supported
		for _, model := range []interface{}{&ShippingFee{}, &TaxTier{}, &PaymentFee{}} {
			if err := tx.Where("pricing_config_id = ?", cfg.ID).Delete(model).Error; err != nil {
				tx.Rollback()
				return nil, fmt.Errorf("failed to clear pricing rules: %w", err)
			}
		}
	}

	updates := map[string]interface{}{
		"free_shipping_threshold": req.FreeShippingThreshold,
		"is_active":               true,
	}
	if err := tx.Model(&cfg).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update pricing config: %w", err)
	}

	for _, sf := range req.ShippingFees {
		row := ShippingFee{
			PricingConfigID: cfg.ID,
			Method:          sf.Method,
			Fee:             sf.Fee,
			EstimatedDays:   sf.EstimatedDays,
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create shipping fee: %w", err)
		}
	}
	for _, tt := range req.TaxTiers {
		row := TaxTier{
			PricingConfigID: cfg.ID,
			MinAmount:       tt.MinAmount,
			MaxAmount:       tt.MaxAmount,
			Rate:            tt.Rate,
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create tax tier: %w", err)
		}
	}
	for _, pf := range req.PaymentFees {
		row := PaymentFee{
			PricingConfigID: cfg.ID,
			Method:          pf.Method,
			Fee:             pf.Fee,
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to create payment fee: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit pricing config: %w", err)
	}

	return s.GetConfig(req.LocationKey)
}

// ListConfigs returns all pricing configs with their rules
func (s *Service) ListConfigs() ([]PricingConfig, error) {
	var configs []PricingConfig
	err := s.db.Preload("ShippingFees").
		Preload("TaxTiers").
		Preload("PaymentFees").
		Order("location_key ASC").
		Find(&configs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pricing configs: %w", err)
	}
	return configs, nil
}
