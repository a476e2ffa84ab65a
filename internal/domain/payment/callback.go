// internal/domain/payment/callback.go
package payment

import "strconv"

// CallbackEnvelope is the JSON body Daraja posts to the callback URL after
// an STK push resolves on the customer's phone.
type CallbackEnvelope struct {
	Body struct {
		StkCallback StkCallback `json:"stkCallback"`
	} `json:"Body"`
}

// StkCallback carries the result of one STK push. ResultCode 0 means the
// customer paid; anything else is a failure (cancelled, timed out,
// insufficient funds).
type StkCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

// CallbackMetadata holds the name/value items present on successful payments
type CallbackMetadata struct {
	Item []CallbackItem `json:"Item"`
}

// CallbackItem is one metadata entry; Value is a string or a number
// depending on the item name.
type CallbackItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value,omitempty"`
}

// Succeeded reports whether the customer completed the payment
func (c *StkCallback) Succeeded() bool {
	return c.ResultCode == 0
}

// ReceiptNumber extracts the M-Pesa receipt from the callback metadata,
// empty when the payment failed.
func (c *StkCallback) ReceiptNumber() string {
	return c.metadataString("MpesaReceiptNumber")
}

// PayerPhone extracts the paying phone number from the callback metadata
func (c *StkCallback) PayerPhone() string {
	return c.metadataString("PhoneNumber")
}

// AmountCents extracts the paid amount converted from shillings to cents
func (c *StkCallback) AmountCents() int64 {
	if c.CallbackMetadata == nil {
		return 0
	}
	for _, item := range c.CallbackMetadata.Item {
		if item.Name != "Amount" {
			continue
		}
		if v, ok := item.Value.(float64); ok {
			return int64(v * 100)
		}
	}
	return 0
}

func (c *StkCallback) metadataString(name string) string {
	if c.CallbackMetadata == nil {
		return ""
	}
	for _, item := range c.CallbackMetadata.Item {
		if item.Name != name {
			continue
		}
		switch v := item.Value.(type) {
		case string:
			return v
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
