// internal/domain/payment/initiator.go
package payment

import (
	"context"
	"errors"
)

// Method identifies a supported payment method
type Method string

const (
	MethodCOD   Method = "cod"
	MethodMpesa Method = "mpesa"
)

// Mode distinguishes how a payment settles relative to order creation
type Mode string

const (
	// ModeImmediate settles out of band (e.g. cash on delivery); the order
	// materializes as soon as stock and totals check out.
	ModeImmediate Mode = "immediate"
	// ModeAsyncPush requires a gateway acknowledgment before the order
	// materializes; settlement arrives later via webhook.
	ModeAsyncPush Mode = "async_push"
)

var ErrUnsupportedMethod = errors.New("unsupported payment method")

// Draft carries everything an initiator needs to start a payment
type Draft struct {
	Amount      int64  // In cents
	PhoneNumber string // Normalized 254XXXXXXXXX, required for M-Pesa
	Reference   string // Order number used as the gateway account reference
	Description string
}

// Outcome is the result of a successful initiation. For ModeAsyncPush the
// gateway request identifiers are set; for ModeImmediate they are empty.
type Outcome struct {
	Mode              Mode   `json:"mode"`
	MerchantRequestID string `json:"merchant_request_id,omitempty"`
	CheckoutRequestID string `json:"checkout_request_id,omitempty"`
	CustomerMessage   string `json:"customer_message,omitempty"`
}

// Initiator starts a payment for an order draft. An error means the order
// must not be created: no initiation, no order, no stock movement.
type Initiator interface {
	Method() Method
	Initiate(ctx context.Context, draft *Draft) (*Outcome, error)
}

// Registry resolves initiators by payment method
type Registry struct {
	initiators map[Method]Initiator
}

// NewRegistry builds a registry from the given initiators
func NewRegistry(initiators ...Initiator) *Registry {
	r := &Registry{initiators: make(map[Method]Initiator, len(initiators))}
	for _, in := range initiators {
		r.initiators[in.Method()] = in
	}
	return r
}

// Resolve returns the initiator for a method
func (r *Registry) Resolve(method Method) (Initiator, error) {
	in, ok := r.initiators[method]
	if !ok {
		return nil, ErrUnsupportedMethod
	}
	return in, nil
}
