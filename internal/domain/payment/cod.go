// internal/domain/payment/cod.go
package payment

import "context"

// CODInitiator handles cash-on-delivery payments. There is no gateway to
// talk to, so initiation always succeeds and the order materializes
// immediately with payment collected on delivery.
type CODInitiator struct{}

// NewCODInitiator creates a cash-on-delivery initiator
func NewCODInitiator() *CODInitiator {
	return &CODInitiator{}
}

// Method returns the payment method this initiator serves
func (c *CODInitiator) Method() Method {
	return MethodCOD
}

// Initiate acknowledges a cash-on-delivery payment
func (c *CODInitiator) Initiate(_ context.Context, _ *Draft) (*Outcome, error) {
	return &Outcome{
		Mode:            ModeImmediate,
		CustomerMessage: "Pay with cash when your order is delivered",
	}, nil
}
