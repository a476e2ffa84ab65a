// internal/pkg/email/service.go
package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
)

// EmailService sends transactional mail over SMTP. When email is disabled
// in config every send becomes a logged no-op, which keeps development and
// test environments quiet.
type EmailService struct {
	config    *config.Config
	logger    *logrus.Logger
	templates map[string]*template.Template
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, logger *logrus.Logger) *EmailService {
	return &EmailService{
		config:    cfg,
		logger:    logger,
		templates: parseTemplates(),
	}
}

// SendOrderConfirmation sends the order summary after checkout succeeds
func (s *EmailService) SendOrderConfirmation(to, userName string, data *OrderConfirmationData) error {
	td := templateData{
		SiteName:    s.config.App.Name,
		UserName:    userName,
		OrderNumber: data.OrderNumber,
		Subtotal:    FormatAmount(data.Subtotal, data.Currency),
		Shipping:    FormatAmount(data.Shipping, data.Currency),
		Tax:         FormatAmount(data.Tax, data.Currency),
		Total:       FormatAmount(data.Total, data.Currency),
		Year:        currentYear(),
	}
	if data.Discount > 0 {
		td.Discount = FormatAmount(data.Discount, data.Currency)
	}
	for _, item := range data.Items {
		td.Items = append(td.Items, renderedItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    FormatAmount(item.Price, data.Currency),
		})
	}

	return s.send(to, fmt.Sprintf("Order Confirmation - %s", data.OrderNumber), "order_confirmation", EmailTypeOrderConfirmation, td)
}

// SendPaymentReceived notifies the customer that their mobile money payment
// settled
func (s *EmailService) SendPaymentReceived(to, orderNumber string, amountCents int64, receipt string) error {
	td := templateData{
		SiteName:    s.config.App.Name,
		OrderNumber: orderNumber,
		Amount:      FormatAmount(amountCents, s.config.Order.Currency),
		Receipt:     receipt,
		Year:        currentYear(),
	}
	return s.send(to, fmt.Sprintf("Payment Received - %s", orderNumber), "payment_success", EmailTypePaymentSuccess, td)
}

// SendPaymentFailed notifies the customer that their payment did not go
// through and the order was cancelled
func (s *EmailService) SendPaymentFailed(to, orderNumber, reason string) error {
	td := templateData{
		SiteName:    s.config.App.Name,
		OrderNumber: orderNumber,
		Reason:      reason,
		Year:        currentYear(),
	}
	return s.send(to, fmt.Sprintf("Payment Failed - %s", orderNumber), "payment_failed", EmailTypePaymentFailed, td)
}

// SendWelcome greets a newly registered user
func (s *EmailService) SendWelcome(to, userName string) error {
	td := templateData{
		SiteName: s.config.App.Name,
		UserName: userName,
		Year:     currentYear(),
	}
	return s.send(to, fmt.Sprintf("Welcome to %s!", s.config.App.Name), "welcome", EmailTypeWelcome, td)
}

func (s *EmailService) send(to, subject, templateName string, emailType EmailType, td templateData) error {
	if !s.config.Email.Enabled {
		s.logger.WithFields(logrus.Fields{
			"to":   to,
			"type": emailType,
		}).Debug("Email disabled, skipping send")
		return nil
	}

	html, err := s.render(templateName, td)
	if err != nil {
		return err
	}

	return s.sendSMTP(&Email{
		To:          []string{to},
		Subject:     subject,
		HTMLContent: html,
		Type:        emailType,
	})
}

func (s *EmailService) render(name string, td templateData) (string, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("email template %s not found", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, td); err != nil {
		return "", fmt.Errorf("failed to render email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func parseTemplates() map[string]*template.Template {
	out := make(map[string]*template.Template, len(templateBodies))
	for name, body := range templateBodies {
		out[name] = template.Must(template.New(name).Parse(wrapLayout(body)))
	}
	return out
}

func wrapLayout(body string) string {
	return `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.SiteName}}</title></head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f4f4f4;">
  <div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 8px;">
    <h1 style="color: #333;">{{.SiteName}}</h1>
` + body + `
    <p>Best regards,<br>The {{.SiteName}} Team</p>
    <hr>
    <p style="font-size: 12px; color: #666;">&copy; {{.Year}} {{.SiteName}}. All rights reserved.</p>
  </div>
</body>
</html>`
}

var templateBodies = map[string]string{
	"welcome": `
    <p>Hello {{.UserName}},</p>
    <p>Welcome to {{.SiteName}}! Your account is ready.</p>`,

	"order_confirmation": `
    <p>Hello {{.UserName}},</p>
    <p>Thank you for your order <strong>{{.OrderNumber}}</strong>.</p>
    <table style="width: 100%; border-collapse: collapse;">
      <tr style="border-bottom: 1px solid #ddd;"><th align="left">Item</th><th align="right">Qty</th><th align="right">Price</th></tr>
      {{range .Items}}
      <tr><td>{{.Name}}</td><td align="right">{{.Quantity}}</td><td align="right">{{.Price}}</td></tr>
      {{end}}
      <tr><td colspan="2" align="right">Subtotal</td><td align="right">{{.Subtotal}}</td></tr>
      {{if .Discount}}<tr><td colspan="2" align="right">Discount</td><td align="right">-{{.Discount}}</td></tr>{{end}}
      <tr><td colspan="2" align="right">Shipping</td><td align="right">{{.Shipping}}</td></tr>
      <tr><td colspan="2" align="right">Tax</td><td align="right">{{.Tax}}</td></tr>
      <tr style="font-weight: bold;"><td colspan="2" align="right">Total</td><td align="right">{{.Total}}</td></tr>
    </table>`,

	"payment_success": `
    <p>We have received your payment of <strong>{{.Amount}}</strong> for order <strong>{{.OrderNumber}}</strong>.</p>
    <p>M-Pesa receipt: <strong>{{.Receipt}}</strong></p>
    <p>Your order is now being processed.</p>`,

	"payment_failed": `
    <p>Unfortunately your payment for order <strong>{{.OrderNumber}}</strong> did not go through.</p>
    <p>Reason: {{.Reason}}</p>
    <p>The order has been cancelled and any reserved items returned to stock. You can place a new order at any time.</p>`,
}
