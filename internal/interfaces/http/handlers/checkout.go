// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CheckoutHandler handles pre-order checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	config          *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, cfg *config.Config) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		config:          cfg,
	}
}

// VerifyCart handles GET /checkout/verify-cart. The verification is
// all-or-nothing: one invalid line fails the whole cart with a per-item
// breakdown.
func (h *CheckoutHandler) VerifyCart(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	lines, err := h.checkoutService.VerifyCart(userID)
	if err != nil {
		var invalid *cart.InvalidItemsError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusConflict, gin.H{
				"error":         "Some cart items are no longer available",
				"invalid_items": invalid.Items,
			})
			return
		}
		if errors.Is(err, cart.ErrCartEmpty) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart verified successfully",
		"data":    gin.H{"items": lines},
	})
}

// CalculateTax handles POST /checkout/calculate-tax
func (h *CheckoutHandler) CalculateTax(c *gin.Context) {
	var req checkout.TaxCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	calculation, err := h.checkoutService.CalculateTax(&req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pricing.ErrConfigNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tax calculated successfully",
		"data":    calculation,
	})
}

// GetShippingOptions handles POST /checkout/shipping-options
func (h *CheckoutHandler) GetShippingOptions(c *gin.Context) {
	var req checkout.ShippingOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	options, err := h.checkoutService.GetShippingOptions(&req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pricing.ErrConfigNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Shipping options retrieved successfully",
		"data":    options,
	})
}

// ValidateCoupon handles POST /checkout/validate-coupon
func (h *CheckoutHandler) ValidateCoupon(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req checkout.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	application, err := h.checkoutService.ValidateCoupon(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, coupon.ErrCouponInvalid),
			errors.Is(err, coupon.ErrMinimumAmountNotMet),
			errors.Is(err, coupon.ErrCouponUsageLimitReached):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Coupon is valid",
		"data":    application,
	})
}
