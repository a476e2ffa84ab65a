// internal/domain/order/service.go
package order

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrCannotCancel      = errors.New("order can no longer be cancelled")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPhoneRequired     = errors.New("phone number is required for mpesa payments")
	ErrCallbackUnmatched = errors.New("no order matches the payment callback")
	ErrCallbackDuplicate = errors.New("payment callback already processed")
)

// Service handles order creation and lifecycle
type Service struct {
	db              *gorm.DB
	config          *config.Config
	logger          *logrus.Logger
	redisClient     *redis.Client
	cartService     *cart.Service
	checkoutService *checkout.Service
	initiators      *payment.Registry
	emailService    *email.EmailService
}

// NewService creates a new order service
func NewService(
	db *gorm.DB,
	cfg *config.Config,
	logger *logrus.Logger,
	redisClient *redis.Client,
	cartSvc *cart.Service,
	checkoutSvc *checkout.Service,
	initiators *payment.Registry,
	emailSvc *email.EmailService,
) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		logger:          logger,
		redisClient:     redisClient,
		cartService:     cartSvc,
		checkoutService: checkoutSvc,
		initiators:      initiators,
		emailService:    emailSvc,
	}
}

// AddressInput represents an address in an order request
type AddressInput struct {
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	AddressLine1 string `json:"address_line1" binding:"required"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
}

// CreateOrderRequest represents the checkout submission
type CreateOrderRequest struct {
	ShippingAddress AddressInput  `json:"shipping_address" binding:"required"`
	BillingAddress  *AddressInput `json:"billing_address"` // Optional, defaults to shipping
	Location        string        `json:"location" binding:"required"`
	ShippingMethod  string        `json:"shipping_method" binding:"required"`
	PaymentMethod   string        `json:"payment_method" binding:"required,oneof=cod mpesa"`
	PhoneNumber     string        `json:"phone_number"`
	CouponCode      string        `json:"coupon_code"`
	ClientTotal     int64         `json:"client_total" binding:"required,gt=0"` // Total the customer saw, in cents
	Notes           string        `json:"notes"`
}

// CreateOrderResponse carries the persisted order plus the gateway outcome
type CreateOrderResponse struct {
	Order   *Order           `json:"order"`
	Payment *payment.Outcome `json:"payment"`
}

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status  Status `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

// ListOrdersResponse represents a paginated order list
type ListOrdersResponse struct {
	Orders     []Order `json:"orders"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"total_pages"`
}

// CreateOrder runs the checkout pipeline: verify the cart, price the order
// server-side, reconcile the client total, initiate payment, and only then
// materialize the order. The payment gateway is contacted before the
// transaction opens; if it does not acknowledge, nothing is persisted.
func (s *Service) CreateOrder(ctx context.Context, userID uint, req *CreateOrderRequest) (*CreateOrderResponse, error) {
	method := payment.Method(req.PaymentMethod)
	initiator, err := s.initiators.Resolve(method)
	if err != nil {
		return nil, err
	}

	var phone string
	if method == payment.MethodMpesa {
		if req.PhoneNumber == "" {
			return nil, ErrPhoneRequired
		}
		phone, err = payment.NormalizePhone(req.PhoneNumber)
		if err != nil {
			return nil, err
		}
	}

	// All-or-nothing cart verification against the live catalog
	lines, err := s.cartService.Verify(userID)
	if err != nil {
		return nil, err
	}

	// A coupon applied during checkout carries over when the request omits
	// the code; PriceOrder revalidates either way
	couponCode := req.CouponCode
	if couponCode == "" {
		if applied := s.checkoutService.GetAppliedCoupon(ctx, userID); applied != nil {
			couponCode = applied.CouponCode
		}
	}

	pricing, discount, err := s.checkoutService.PriceOrder(ctx, lines, couponCode, req.Location, req.ShippingMethod, req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	// The server total is authoritative; a stale client aborts here
	if err := pricing.Reconcile(req.ClientTotal); err != nil {
		return nil, err
	}

	var usr user.User
	if err := s.db.First(&usr, userID).Error; err != nil {
		return nil, user.ErrUserNotFound
	}

	orderNumber := generateOrderNumber()

	outcome, err := initiator.Initiate(ctx, &payment.Draft{
		Amount:      pricing.TotalAmount,
		PhoneNumber: phone,
		Reference:   orderNumber,
		Description: fmt.Sprintf("%s order %s", s.config.App.Name, orderNumber),
	})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"method":  req.PaymentMethod,
		}).WithError(err).Warn("Payment initiation failed, order not created")
		return nil, fmt.Errorf("payment initiation failed: %w", err)
	}

	ord := s.buildOrder(userID, usr.Email, orderNumber, couponCode, req, lines, pricing, phone, outcome)

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(ord).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Stock moves in the same transaction as the order rows, so a failed
	// decrement rolls everything back
	for _, line := range lines {
		if err := product.DecrementStock(tx, line.ProductID, line.Quantity); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// Coupon usage and purchase aggregates settle at creation only for
	// methods that need no gateway confirmation; async payments burn them
	// in the success callback instead, so an abandoned STK prompt costs
	// the customer nothing
	if outcome.Mode == payment.ModeImmediate {
		if discount != nil {
			if err := coupon.Redeem(tx, discount.Coupon.Code); err != nil {
				tx.Rollback()
				return nil, err
			}
		}

		if err := user.RecordPurchase(tx, userID, pricing.TotalAmount); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := cart.ClearCartTx(tx, userID); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	s.checkoutService.ClearAppliedCoupon(ctx, userID)

	s.logger.WithFields(logrus.Fields{
		"order_number": ord.OrderNumber,
		"user_id":      userID,
		"total":        ord.TotalAmount,
		"method":       req.PaymentMethod,
	}).Info("Order created")

	// Fire-and-forget confirmation; email failures never fail an order
	go s.sendOrderConfirmation(ord, &usr)

	return &CreateOrderResponse{Order: ord, Payment: outcome}, nil
}

func (s *Service) buildOrder(
	userID uint,
	userEmail, orderNumber, couponCode string,
	req *CreateOrderRequest,
	lines []cart.VerifiedLine,
	pricing *checkout.Pricing,
	phone string,
	outcome *payment.Outcome,
) *Order {
	billing := req.BillingAddress
	if billing == nil {
		billing = &req.ShippingAddress
	}

	ord := &Order{
		OrderNumber:       orderNumber,
		UserID:            userID,
		Email:             userEmail,
		Status:            StatusPending,
		PaymentStatus:     PaymentStatusPending,
		SubtotalAmount:    pricing.Subtotal,
		DiscountAmount:    pricing.DiscountAmount,
		ShippingAmount:    pricing.ShippingCost,
		TaxAmount:         pricing.TaxAmount,
		PaymentFee:        pricing.PaymentFee,
		TotalAmount:       pricing.TotalAmount,
		ShippingAddress:   toAddress(&req.ShippingAddress),
		BillingAddress:    toAddress(billing),
		PaymentMethod:     req.PaymentMethod,
		PhoneNumber:       phone,
		MerchantRequestID: outcome.MerchantRequestID,
		CheckoutRequestID: outcome.CheckoutRequestID,
		CouponCode:        couponCode,
		Currency:          s.config.Order.Currency,
		Location:          req.Location,
		ShippingMethod:    req.ShippingMethod,
		Notes:             req.Notes,
	}

	for _, line := range lines {
		ord.Items = append(ord.Items, OrderItem{
			ProductID:  line.ProductID,
			SKU:        line.SKU,
			Name:       line.Name,
			ImageURL:   line.ImageURL,
			Variant:    line.Variant,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.LineTotal,
		})
	}

	ord.Payments = []Payment{{
		PaymentMethod:     req.PaymentMethod,
		Amount:            pricing.TotalAmount,
		Currency:          s.config.Order.Currency,
		Status:            PaymentStatusPending,
		CheckoutRequestID: outcome.CheckoutRequestID,
	}}

	ord.AddStatusHistory(StatusPending, "Order placed", userID)

	return ord
}

// GetOrder retrieves an order owned by the user
func (s *Service) GetOrder(userID, orderID uint) (*Order, error) {
	var ord Order
	err := s.db.Preload("Items").Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Where("id = ? AND user_id = ?", orderID, userID).First(&ord).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &ord, nil
}

// ListOrders retrieves a user's orders, newest first
func (s *Service) ListOrders(userID uint, page, limit int) (*ListOrdersResponse, error) {
	return s.listOrders(s.db.Where("user_id = ?", userID), page, limit)
}

// ListAllOrders retrieves all orders for admin review, optionally filtered
// by status
func (s *Service) ListAllOrders(status string, page, limit int) (*ListOrdersResponse, error) {
	query := s.db
	if status != "" {
		query = query.Where("status = ?", status)
	}
	return s.listOrders(query, page, limit)
}

func (s *Service) listOrders(query *gorm.DB, page, limit int) (*ListOrdersResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := query.Model(&Order{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	if err := query.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &ListOrdersResponse{
		Orders:     orders,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// CancelOrder cancels a pending or processing order within the cancellation
// window and restores its stock in the same transaction
func (s *Service) CancelOrder(userID, orderID uint) (*Order, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var ord Order
	err := tx.Preload("Items").Where("id = ? AND user_id = ?", orderID, userID).First(&ord).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if !ord.CanBeCancelled(time.Now().UTC(), s.config.Order.CancellationWindow) {
		tx.Rollback()
		return nil, ErrCannotCancel
	}

	for _, item := range ord.Items {
		if err := product.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":       StatusCancelled,
		"cancelled_at": now,
	}
	if err := tx.Model(&ord).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	history := OrderStatusHistory{
		OrderID:   ord.ID,
		Status:    StatusCancelled,
		Comment:   "Cancelled by customer",
		CreatedBy: userID,
		CreatedAt: now,
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record cancellation: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	ord.Status = StatusCancelled
	ord.CancelledAt = &now

	s.logger.WithFields(logrus.Fields{
		"order_number": ord.OrderNumber,
		"user_id":      userID,
	}).Info("Order cancelled, stock restored")

	return &ord, nil
}

// UpdateStatus applies an admin status change, enforcing the transition
// table and appending history
func (s *Service) UpdateStatus(orderID, adminID uint, req *UpdateStatusRequest) (*Order, error) {
	var ord Order
	if err := s.db.First(&ord, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if !IsValidTransition(ord.Status, req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, ord.Status, req.Status)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{"status": req.Status}
	switch req.Status {
	case StatusShipped:
		updates["shipped_at"] = now
	case StatusDelivered:
		updates["delivered_at"] = now
	case StatusCancelled:
		updates["cancelled_at"] = now
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Model(&ord).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	// Admin cancellation of an unshipped order also returns stock
	if req.Status == StatusCancelled {
		var items []OrderItem
		if err := tx.Where("order_id = ?", ord.ID).Find(&items).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to load order items: %w", err)
		}
		for _, item := range items {
			if err := product.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	history := OrderStatusHistory{
		OrderID:   ord.ID,
		Status:    req.Status,
		Comment:   req.Comment,
		CreatedBy: adminID,
		CreatedAt: now,
	}
	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record status change: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}

	ord.Status = req.Status
	return &ord, nil
}

// HandleMpesaCallback reconciles an STK push result with its order. A
// successful payment marks the order paid; a failed one cancels it and
// returns the reserved stock. Replayed callbacks are dropped.
func (s *Service) HandleMpesaCallback(ctx context.Context, cb *payment.StkCallback) error {
	// Gateways redeliver callbacks on slow responses
	dedupeKey := fmt.Sprintf("mpesa_cb:%s", cb.CheckoutRequestID)
	set, err := s.redisClient.SetNX(ctx, dedupeKey, 1, 24*time.Hour).Result()
	if err == nil && !set {
		return ErrCallbackDuplicate
	}

	if err := s.reconcileCallback(ctx, cb); err != nil {
		// Release the dedupe key so a gateway retry can succeed, unless
		// the callback matched nothing or was itself a replay
		if !errors.Is(err, ErrCallbackUnmatched) && !errors.Is(err, ErrCallbackDuplicate) {
			s.redisClient.Del(ctx, dedupeKey)
		}
		return err
	}
	return nil
}

func (s *Service) reconcileCallback(ctx context.Context, cb *payment.StkCallback) error {
	var ord Order
	err := s.db.Preload("Items").Where("checkout_request_id = ?", cb.CheckoutRequestID).First(&ord).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCallbackUnmatched
		}
		return fmt.Errorf("failed to look up order for callback: %w", err)
	}

	now := time.Now().UTC()

	// The order may have moved on before the gateway answered: a customer
	// can cancel during the STK prompt, which already returned the stock.
	// Such orders are never reopened; the gateway result is recorded and,
	// for a successful charge, flagged for refund.
	if !ord.AwaitingPayment() {
		if ord.PaymentStatus != PaymentStatusPending {
			// A replay that slipped past the redis dedupe
			return ErrCallbackDuplicate
		}
		return s.recordLateCallback(&ord, cb, now)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if cb.Succeeded() {
		updates := map[string]interface{}{
			"payment_status": PaymentStatusPaid,
			"mpesa_receipt":  cb.ReceiptNumber(),
			"paid_at":        now,
			"status":         StatusProcessing,
		}
		if err := tx.Model(&ord).Updates(updates).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to mark order paid: %w", err)
		}

		// Confirmed payment is when an async order consumes its coupon
		// use and counts toward the customer's loyalty spend
		if ord.CouponCode != "" {
			if err := coupon.Redeem(tx, ord.CouponCode); err != nil {
				// The discount was honored at checkout; a usage limit
				// reached since then must not block a confirmed payment
				if !errors.Is(err, coupon.ErrCouponUsageLimitReached) {
					tx.Rollback()
					return err
				}
				s.logger.WithFields(logrus.Fields{
					"order_number": ord.OrderNumber,
					"coupon":       ord.CouponCode,
				}).Warn("Coupon exhausted before payment confirmation")
			}
		}
		if err := user.RecordPurchase(tx, ord.UserID, ord.TotalAmount); err != nil {
			tx.Rollback()
			return err
		}

		paymentUpdates := map[string]interface{}{
			"status":       PaymentStatusPaid,
			"receipt":      cb.ReceiptNumber(),
			"processed_at": now,
		}
		if err := tx.Model(&Payment{}).Where("order_id = ?", ord.ID).Updates(paymentUpdates).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to update payment record: %w", err)
		}

		history := OrderStatusHistory{
			OrderID:   ord.ID,
			Status:    StatusProcessing,
			Comment:   fmt.Sprintf("Payment received, receipt %s", cb.ReceiptNumber()),
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record payment: %w", err)
		}
	} else {
		// Payment failed on the customer's phone: cancel and return stock
		updates := map[string]interface{}{
			"payment_status": PaymentStatusFailed,
			"status":         StatusCancelled,
			"cancelled_at":   now,
		}
		if err := tx.Model(&ord).Updates(updates).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to mark order failed: %w", err)
		}

		if err := tx.Model(&Payment{}).Where("order_id = ?", ord.ID).
			Updates(map[string]interface{}{"status": PaymentStatusFailed, "processed_at": now}).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to update payment record: %w", err)
		}

		for _, item := range ord.Items {
			if err := product.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
				tx.Rollback()
				return err
			}
		}

		history := OrderStatusHistory{
			OrderID:   ord.ID,
			Status:    StatusCancelled,
			Comment:   fmt.Sprintf("Payment failed: %s", cb.ResultDesc),
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record payment failure: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit callback reconciliation: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_number":        ord.OrderNumber,
		"checkout_request_id": cb.CheckoutRequestID,
		"result_code":         cb.ResultCode,
	}).Info("M-Pesa callback reconciled")

	if cb.Succeeded() {
		go s.sendPaymentNotification(&ord, true, cb.ReceiptNumber())
	} else {
		go s.sendPaymentNotification(&ord, false, cb.ResultDesc)
	}

	return nil
}

// recordLateCallback stores a gateway result that arrived after the order
// left the pending state. Stock and order status stay untouched; a
// successful charge against a cancelled order is flagged in the history so
// support can refund it.
func (s *Service) recordLateCallback(ord *Order, cb *payment.StkCallback, now time.Time) error {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	paymentUpdates := map[string]interface{}{"processed_at": now}
	if cb.Succeeded() {
		paymentUpdates["status"] = PaymentStatusPaid
		paymentUpdates["receipt"] = cb.ReceiptNumber()
	} else {
		paymentUpdates["status"] = PaymentStatusFailed
	}
	if err := tx.Model(&Payment{}).Where("order_id = ?", ord.ID).Updates(paymentUpdates).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update payment record: %w", err)
	}

	if cb.Succeeded() {
		if err := tx.Model(ord).Updates(map[string]interface{}{
			"payment_status": PaymentStatusPaid,
			"mpesa_receipt":  cb.ReceiptNumber(),
			"paid_at":        now,
		}).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record late payment: %w", err)
		}

		history := OrderStatusHistory{
			OrderID:   ord.ID,
			Status:    ord.Status,
			Comment:   fmt.Sprintf("Payment received after order was %s, refund required, receipt %s", ord.Status, cb.ReceiptNumber()),
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record late payment: %w", err)
		}
	} else {
		if err := tx.Model(ord).Update("payment_status", PaymentStatusFailed).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record late payment failure: %w", err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit late callback: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_number":        ord.OrderNumber,
		"order_status":        ord.Status,
		"checkout_request_id": cb.CheckoutRequestID,
		"result_code":         cb.ResultCode,
		"succeeded":           cb.Succeeded(),
	}).Warn("Late M-Pesa callback recorded, order not reopened")

	return nil
}

func (s *Service) sendOrderConfirmation(ord *Order, usr *user.User) {
	if err := s.emailService.SendOrderConfirmation(ord.Email, usr.GetDisplayName(), orderEmailData(ord)); err != nil {
		s.logger.WithFields(logrus.Fields{
			"order_number": ord.OrderNumber,
		}).WithError(err).Warn("Failed to send order confirmation email")
	}
}

func (s *Service) sendPaymentNotification(ord *Order, success bool, detail string) {
	var err error
	if success {
		err = s.emailService.SendPaymentReceived(ord.Email, ord.OrderNumber, ord.TotalAmount, detail)
	} else {
		err = s.emailService.SendPaymentFailed(ord.Email, ord.OrderNumber, detail)
	}
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"order_number": ord.OrderNumber,
		}).WithError(err).Warn("Failed to send payment email")
	}
}

func orderEmailData(ord *Order) *email.OrderConfirmationData {
	data := &email.OrderConfirmationData{
		OrderNumber: ord.OrderNumber,
		Subtotal:    ord.SubtotalAmount,
		Discount:    ord.DiscountAmount,
		Shipping:    ord.ShippingAmount,
		Tax:         ord.TaxAmount,
		Total:       ord.TotalAmount,
		Currency:    ord.Currency,
	}
	for _, item := range ord.Items {
		data.Items = append(data.Items, email.OrderItemData{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.TotalPrice,
		})
	}
	return data
}

const orderNumberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateOrderNumber builds an order number of the form
// ORD-<epoch-millis>-<9 random uppercase alphanumerics>
func generateOrderNumber() string {
	suffix := make([]byte, 9)
	if _, err := rand.Read(suffix); err != nil {
		// Degenerate fallback; failing checkout over an entropy hiccup is
		// worse than a timestamp suffix
		return fmt.Sprintf("ORD-%d-%09d", time.Now().UnixMilli(), time.Now().UnixNano()%1e9)
	}
	for i, b := range suffix {
		suffix[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}

func toAddress(in *AddressInput) Address {
	country := in.Country
	if country == "" {
		country = "KE"
	}
	return Address{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		State:        in.State,
		PostalCode:   in.PostalCode,
		Country:      country,
		Phone:        in.Phone,
	}
}
