// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"gorm.io/gorm"
)

// Service orchestrates the pre-order checkout steps: cart verification,
// tax/shipping quotes and coupon validation.
type Service struct {
	db              *gorm.DB
	redisClient     *redis.Client
	config          *config.Config
	cartService     *cart.Service
	pricingService  *pricing.Service
	couponValidator *coupon.Validator
}

// NewService creates a new checkout service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, cartSvc *cart.Service, pricingSvc *pricing.Service) *Service {
	return &Service{
		db:              db,
		redisClient:     redisClient,
		config:          cfg,
		cartService:     cartSvc,
		pricingService:  pricingSvc,
		couponValidator: coupon.NewValidator(coupon.NewGormRepository(db)),
	}
}

// TaxCalculationRequest represents a tax quote request
type TaxCalculationRequest struct {
	Location string `json:"location" binding:"required"`
	Subtotal int64  `json:"subtotal" binding:"required,gt=0"` // In cents
}

// TaxCalculation represents a tax quote
type TaxCalculation struct {
	TaxRate       decimal.Decimal `json:"tax_rate"`
	TaxAmount     int64           `json:"tax_amount"`     // In cents
	TaxableAmount int64           `json:"taxable_amount"` // Amount the rate applied to
}

// ShippingOptionsRequest represents a shipping options request
type ShippingOptionsRequest struct {
	Location string `json:"location" binding:"required"`
}

// ValidateCouponRequest represents a coupon validation request
type ValidateCouponRequest struct {
	Code      string `json:"code" binding:"required"`
	CartTotal int64  `json:"cart_total" binding:"required,gt=0"` // Subtotal in cents
}

// CouponApplication represents the result of validating a coupon
type CouponApplication struct {
	CouponCode     string `json:"coupon_code"`
	DiscountType   string `json:"discount_type"`
	DiscountAmount int64  `json:"discount_amount"` // In cents
	Valid          bool   `json:"valid"`
	Message        string `json:"message,omitempty"`
}

// VerifyCart resolves the user's cart against the live catalog
func (s *Service) VerifyCart(userID uint) ([]cart.VerifiedLine, error) {
	return s.cartService.Verify(userID)
}

// CalculateTax produces a tax quote for a location and subtotal
func (s *Service) CalculateTax(req *TaxCalculationRequest) (*TaxCalculation, error) {
	tax, rate, err := s.pricingService.CalculateTax(req.Location, req.Subtotal)
	if err != nil {
		return nil, err
	}
	return &TaxCalculation{
		TaxRate:       rate,
		TaxAmount:     tax,
		TaxableAmount: req.Subtotal,
	}, nil
}

// GetShippingOptions lists the shipping methods for a location
func (s *Service) GetShippingOptions(req *ShippingOptionsRequest) ([]pricing.ShippingFee, error) {
	return s.pricingService.GetShippingOptions(req.Location)
}

// ValidateCoupon checks a coupon against a cart subtotal and caches the
// successful application so the order endpoint can surface it in summaries.
func (s *Service) ValidateCoupon(ctx context.Context, userID uint, req *ValidateCouponRequest) (*CouponApplication, error) {
	discount, err := s.couponValidator.Validate(ctx, req.Code, req.CartTotal)
	if err != nil {
		return nil, err
	}

	application := &CouponApplication{
		CouponCode:     discount.Coupon.Code,
		DiscountType:   string(discount.Coupon.DiscountType),
		DiscountAmount: discount.Amount,
		Valid:          true,
	}

	// Best effort cache; checkout revalidates before any write
	cacheKey := fmt.Sprintf("applied_coupon:%d", userID)
	if err := s.setAppliedCoupon(ctx, cacheKey, application); err != nil {
		return application, nil
	}

	return application, nil
}

// GetAppliedCoupon returns the cached coupon application for a user, nil
// when none is cached
func (s *Service) GetAppliedCoupon(ctx context.Context, userID uint) *CouponApplication {
	cacheKey := fmt.Sprintf("applied_coupon:%d", userID)

	var application CouponApplication
	data, err := s.redisClient.Get(ctx, cacheKey).Result()
	if err != nil {
		return nil
	}
	if err := json.Unmarshal([]byte(data), &application); err != nil {
		return nil
	}
	return &application
}

// ClearAppliedCoupon drops the cached coupon application, called once an
// order materializes or the cart is cleared
func (s *Service) ClearAppliedCoupon(ctx context.Context, userID uint) {
	cacheKey := fmt.Sprintf("applied_coupon:%d", userID)
	s.redisClient.Del(ctx, cacheKey)
}

// PriceOrder recomputes the full pricing breakdown for an order draft,
// validating the coupon along the way. This is the single source of truth
// the order materializer reconciles client totals against.
func (s *Service) PriceOrder(ctx context.Context, lines []cart.VerifiedLine, couponCode, location, shippingMethod, paymentMethod string) (*Pricing, *coupon.Discount, error) {
	cfg, err := s.pricingService.GetConfig(location)
	if err != nil {
		return nil, nil, err
	}

	var subtotal int64
	for _, line := range lines {
		subtotal += line.LineTotal
	}

	var discount *coupon.Discount
	var discountAmount int64
	if couponCode != "" {
		discount, err = s.couponValidator.Validate(ctx, couponCode, subtotal)
		if err != nil {
			return nil, nil, err
		}
		discountAmount = discount.Amount
	}

	p, err := CalculatePricing(lines, discountAmount, cfg, shippingMethod, paymentMethod)
	if err != nil {
		return nil, nil, err
	}

	return p, discount, nil
}

func (s *Service) setAppliedCoupon(ctx context.Context, key string, application *CouponApplication) error {
	data, err := json.Marshal(application)
	if err != nil {
		return err
	}
	return s.redisClient.Set(ctx, key, data, 30*time.Minute).Err()
}
