// internal/domain/order/entity.go
package order

import (
	"time"

	"gorm.io/gorm"
)

// Status represents the order status
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Order represents the order entity. Item rows are immutable snapshots of
// the catalog at purchase time; later price or name changes never touch a
// placed order.
type Order struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	OrderNumber   string        `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID        uint          `gorm:"not null;index" json:"user_id"`
	Email         string        `gorm:"not null;size:255" json:"email"`
	Status        Status        `gorm:"not null;default:'pending'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"not null;default:'pending'" json:"payment_status"`

	// Financial information, all in cents
	SubtotalAmount int64 `gorm:"not null" json:"subtotal_amount"`
	DiscountAmount int64 `gorm:"default:0" json:"discount_amount"`
	ShippingAmount int64 `gorm:"default:0" json:"shipping_amount"`
	TaxAmount      int64 `gorm:"default:0" json:"tax_amount"`
	PaymentFee     int64 `gorm:"default:0" json:"payment_fee"`
	TotalAmount    int64 `gorm:"not null" json:"total_amount"`

	// Addresses
	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`
	BillingAddress  Address `gorm:"embedded;embeddedPrefix:billing_" json:"billing_address"`

	// Payment information
	PaymentMethod     string `gorm:"not null;size:50" json:"payment_method"`
	PhoneNumber       string `gorm:"size:20" json:"phone_number"` // Normalized payer phone for mobile money
	MerchantRequestID string `gorm:"size:100;index" json:"merchant_request_id,omitempty"`
	CheckoutRequestID string `gorm:"size:100;index" json:"checkout_request_id,omitempty"`
	MpesaReceipt      string `gorm:"size:50" json:"mpesa_receipt,omitempty"`

	// Coupon
	CouponCode string `gorm:"size:50" json:"coupon_code,omitempty"`

	// Shipping information
	Currency          string     `gorm:"size:3;default:'KES'" json:"currency"`
	Location          string     `gorm:"size:100" json:"location"` // Pricing location key
	ShippingMethod    string     `gorm:"size:100" json:"shipping_method"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
	Notes             string     `gorm:"type:text" json:"notes"`

	// Timestamps
	PaidAt      *time.Time     `json:"paid_at"`
	ShippedAt   *time.Time     `json:"shipped_at"`
	DeliveredAt *time.Time     `json:"delivered_at"`
	CancelledAt *time.Time     `json:"cancelled_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	Payments      []Payment            `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"payments,omitempty"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem is an immutable snapshot of one purchased line
type OrderItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"not null;index" json:"order_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	SKU        string    `gorm:"not null;size:100" json:"sku"`
	Name       string    `gorm:"not null;size:255" json:"name"`
	ImageURL   string    `gorm:"size:500" json:"image_url"`
	Variant    string    `gorm:"size:100" json:"variant,omitempty"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UnitPrice  int64     `gorm:"not null" json:"unit_price"`  // Effective price at purchase, in cents
	TotalPrice int64     `gorm:"not null" json:"total_price"` // UnitPrice * Quantity
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Payment represents one gateway transaction for an order
type Payment struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	OrderID           uint           `gorm:"not null;index" json:"order_id"`
	PaymentMethod     string         `gorm:"not null;size:50" json:"payment_method"`
	Amount            int64          `gorm:"not null" json:"amount"` // In cents
	Currency          string         `gorm:"size:3;default:'KES'" json:"currency"`
	Status            PaymentStatus  `gorm:"not null" json:"status"`
	CheckoutRequestID string         `gorm:"size:100;index" json:"checkout_request_id,omitempty"`
	Receipt           string         `gorm:"size:50" json:"receipt,omitempty"`
	GatewayResponse   string         `gorm:"type:text" json:"gateway_response,omitempty"`
	ProcessedAt       *time.Time     `json:"processed_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// OrderStatusHistory tracks order status changes, append-only
type OrderStatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Status    Status    `gorm:"not null" json:"status"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedBy uint      `gorm:"index" json:"created_by"` // User ID who made the change, 0 for system
	CreatedAt time.Time `json:"created_at"`
}

// Address represents shipping/billing address (embedded in Order)
type Address struct {
	FirstName    string `gorm:"size:100" json:"first_name"`
	LastName     string `gorm:"size:100" json:"last_name"`
	AddressLine1 string `gorm:"size:255" json:"address_line1"`
	AddressLine2 string `gorm:"size:255" json:"address_line2"`
	City         string `gorm:"size:100" json:"city"`
	State        string `gorm:"size:100" json:"state"`
	PostalCode   string `gorm:"size:20" json:"postal_code"`
	Country      string `gorm:"size:2" json:"country"`
	Phone        string `gorm:"size:20" json:"phone"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (Payment) TableName() string            { return "payments" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// CanBeCancelled checks whether a customer may still cancel: only before
// shipment and only within the cancellation window.
func (o *Order) CanBeCancelled(now time.Time, window time.Duration) bool {
	if o.Status != StatusPending && o.Status != StatusProcessing {
		return false
	}
	return now.Sub(o.CreatedAt) <= window
}

// IsPaid checks whether payment has settled
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// AwaitingPayment reports whether a gateway result may still settle this
// order: it has not moved past pending and no payment outcome has been
// recorded. A cancelled order is never awaiting payment, its stock has
// already been returned.
func (o *Order) AwaitingPayment() bool {
	return o.Status == StatusPending && o.PaymentStatus == PaymentStatusPending
}

// AddStatusHistory appends a status change to the order's history
func (o *Order) AddStatusHistory(status Status, comment string, createdBy uint) {
	history := OrderStatusHistory{
		OrderID:   o.ID,
		Status:    status,
		Comment:   comment,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	o.StatusHistory = append(o.StatusHistory, history)
}

// validTransitions defines the allowed order status transitions. Cancelled
// and refunded are terminal for customers; refunds only follow delivery
// or cancellation of a paid order.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {StatusRefunded},
	StatusRefunded:   {},
}

// IsValidTransition checks whether a status change is allowed
func IsValidTransition(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
