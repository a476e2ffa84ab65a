// internal/domain/payment/phone.go
package payment

import (
	"errors"
	"strings"
)

var ErrInvalidPhoneNumber = errors.New("invalid phone number")

// NormalizePhone converts a Kenyan phone number to the 254XXXXXXXXX form
// the Daraja API requires. Accepted inputs:
//
//	0712345678   -> 254712345678
//	0112345678   -> 254112345678
//	+254712345678 -> 254712345678
//	254712345678 -> 254712345678
//
// Anything that does not normalize to a 12-digit 254-prefixed number is
// rejected before any gateway call or database write.
func NormalizePhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")

	switch {
	case strings.HasPrefix(phone, "+254"):
		phone = phone[1:]
	case strings.HasPrefix(phone, "07"), strings.HasPrefix(phone, "01"):
		phone = "254" + phone[1:]
	}

	if len(phone) != 12 || !strings.HasPrefix(phone, "254") {
		return "", ErrInvalidPhoneNumber
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhoneNumber
		}
	}

	return phone, nil
}
