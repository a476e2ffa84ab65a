// internal/interfaces/http/handlers/pricing.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
)

// PricingHandler handles admin pricing configuration endpoints
type PricingHandler struct {
	pricingService *pricing.Service
	config         *config.Config
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(pricingService *pricing.Service, cfg *config.Config) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
		config:         cfg,
	}
}

// ListConfigs handles GET /admin/pricing
func (h *PricingHandler) ListConfigs(c *gin.Context) {
	configs, err := h.pricingService.ListConfigs()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Pricing configurations retrieved successfully",
		"data":    configs,
	})
}

// GetConfig handles GET /admin/pricing/:location
func (h *PricingHandler) GetConfig(c *gin.Context) {
	cfg, err := h.pricingService.GetConfig(c.Param("location"))
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
		"message": "Pricing configuration retrieved successfully",
		"data":    cfg,
	})
}

// UpsertConfig handles PUT /admin/pricing
func (h *PricingHandler) UpsertConfig(c *gin.Context) {
	var req pricing.UpsertConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cfg, err := h.pricingService.UpsertConfig(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Pricing configuration saved successfully",
		"data":    cfg,
	})
}
