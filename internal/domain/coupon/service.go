// internal/domain/coupon/service.go
package coupon

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/config"
	"gorm.io/gorm"
)

var ErrCouponNotFound = errors.New("coupon not found")

// Service handles coupon administration
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new coupon service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateCouponRequest represents the admin payload for creating a coupon
type CreateCouponRequest struct {
	Code          string       `json:"code" binding:"required"`
	Description   string       `json:"description"`
	DiscountType  DiscountType `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue int64        `json:"discount_value" binding:"required,gt=0"`
	MinAmount     int64        `json:"min_amount" binding:"gte=0"`
	MaxDiscount   *int64       `json:"max_discount"`
	StartsAt      time.Time    `json:"starts_at" binding:"required"`
	EndsAt        time.Time    `json:"ends_at" binding:"required"`
	MaxUses       *int         `json:"max_uses"`
}

// CreateCoupon creates a new coupon
func (s *Service) CreateCoupon(req *CreateCouponRequest) (*Coupon, error) {
	if !req.EndsAt.After(req.StartsAt) {
		return nil, fmt.Errorf("ends_at must be after starts_at")
	}
	if req.DiscountType == DiscountTypePercentage && req.DiscountValue > 100 {
		return nil, fmt.Errorf("percentage discount cannot exceed 100")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))

	var existing Coupon
	if err := s.db.Where("code = ?", code).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("coupon with code %s already exists", code)
	}

	c := &Coupon{
		Code:          code,
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinAmount:     req.MinAmount,
		MaxDiscount:   req.MaxDiscount,
		IsActive:      true,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
		MaxUses:       req.MaxUses,
	}

	if err := s.db.Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}

	return c, nil
}

// ListCoupons returns all coupons, newest first
func (s *Service) ListCoupons() ([]Coupon, error) {
	var coupons []Coupon
	if err := s.db.Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, nil
}

// DeactivateCoupon disables a coupon without deleting its history
func (s *Service) DeactivateCoupon(couponID uint) error {
	result := s.db.Model(&Coupon{}).Where("id = ?", couponID).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCouponNotFound
	}
	return nil
}

// Redeem bumps a coupon's usage counter inside an order transaction. The
// conditional guard keeps concurrent checkouts from exceeding a usage limit
// between validation and redemption.
func Redeem(tx *gorm.DB, code string) error {
	result := tx.Model(&Coupon{}).
		Where("code = ? AND (max_uses IS NULL OR used_count < max_uses)", code).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to redeem coupon %s: %w", code, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCouponUsageLimitReached
	}
	return nil
}
