// internal/interfaces/http/handlers/webhook.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
)

// WebhookHandler handles payment gateway callbacks
type WebhookHandler struct {
	orderService *order.Service
	config       *config.Config
	logger       *logrus.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(orderService *order.Service, cfg *config.Config, logger *logrus.Logger) *WebhookHandler {
	return &WebhookHandler{
		orderService: orderService,
		config:       cfg,
		logger:       logger,
	}
}

// MpesaCallback handles POST /webhooks/mpesa. The gateway retries on
// non-200 responses, so everything except a malformed body acknowledges
// with 200; duplicates and unmatched callbacks are logged and dropped.
func (h *WebhookHandler) MpesaCallback(c *gin.Context) {
	var envelope payment.CallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"ResultCode": 1,
			"ResultDesc": "Invalid callback payload",
		})
		return
	}

	cb := &envelope.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"ResultCode": 1,
			"ResultDesc": "Missing CheckoutRequestID",
		})
		return
	}

	err := h.orderService.HandleMpesaCallback(c.Request.Context(), cb)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrCallbackDuplicate):
			h.logger.WithField("checkout_request_id", cb.CheckoutRequestID).
				Info("Duplicate M-Pesa callback ignored")
		case errors.Is(err, order.ErrCallbackUnmatched):
			h.logger.WithField("checkout_request_id", cb.CheckoutRequestID).
				Warn("M-Pesa callback matched no order")
		default:
			h.logger.WithField("checkout_request_id", cb.CheckoutRequestID).
				WithError(err).Error("Failed to process M-Pesa callback")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"ResultCode": 0,
		"ResultDesc": "Accepted",
	})
}
