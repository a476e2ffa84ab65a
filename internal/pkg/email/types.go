// internal/pkg/email/types.go
package email

import (
	"fmt"
	"time"
)

// EmailType represents the type of email being sent
type EmailType string

const (
	EmailTypeWelcome           EmailType = "welcome"
	EmailTypeOrderConfirmation EmailType = "order_confirmation"
	EmailTypePaymentSuccess    EmailType = "payment_success"
	EmailTypePaymentFailed     EmailType = "payment_failed"
)

// Email represents an email message
type Email struct {
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"html_content"`
	Type        EmailType `json:"type"`
}

// OrderItemData is one line in a confirmation email
type OrderItemData struct {
	Name     string
	Quantity int
	Price    int64 // Line total in cents
}

// OrderConfirmationData carries the order summary for the confirmation
// email. All amounts are in cents.
type OrderConfirmationData struct {
	OrderNumber string
	Items       []OrderItemData
	Subtotal    int64
	Discount    int64
	Shipping    int64
	Tax         int64
	Total       int64
	Currency    string
}

// templateData is what the rendered templates actually see: money already
// formatted, plus the common footer fields
type templateData struct {
	SiteName    string
	UserName    string
	OrderNumber string
	Items       []renderedItem
	Subtotal    string
	Discount    string
	Shipping    string
	Tax         string
	Total       string
	Amount      string
	Receipt     string
	Reason      string
	Year        int
}

type renderedItem struct {
	Name     string
	Quantity int
	Price    string
}

// FormatAmount renders cents as a currency string, e.g. "KES 1,166.00"
func FormatAmount(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100
	return fmt.Sprintf("%s%s %s.%02d", sign, currency, groupThousands(whole), frac)
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}

func currentYear() int {
	return time.Now().Year()
}
