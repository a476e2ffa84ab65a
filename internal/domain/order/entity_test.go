package order

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanBeCancelled(t *testing.T) {
	window := 15 * time.Minute
	placed := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status Status
		at     time.Time
		want   bool
	}{
		{"pending inside window", StatusPending, placed.Add(5 * time.Minute), true},
		{"processing inside window", StatusProcessing, placed.Add(5 * time.Minute), true},
		{"exactly at window edge", StatusPending, placed.Add(15 * time.Minute), true},
		{"just past window", StatusPending, placed.Add(15*time.Minute + time.Second), false},
		{"shipped", StatusShipped, placed.Add(time.Minute), false},
		{"delivered", StatusDelivered, placed.Add(time.Minute), false},
		{"already cancelled", StatusCancelled, placed.Add(time.Minute), false},
		{"refunded", StatusRefunded, placed.Add(time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ord := &Order{Status: tt.status, CreatedAt: placed}
			assert.Equal(t, tt.want, ord.CanBeCancelled(tt.at, window))
		})
	}
}

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusProcessing, StatusShipped, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusProcessing, StatusDelivered, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, false},
		{StatusDelivered, StatusRefunded, true},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusRefunded, true},
		{StatusCancelled, StatusProcessing, false},
		{StatusRefunded, StatusPending, false},
		{StatusRefunded, StatusCancelled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestGenerateOrderNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD-\d{13}-[A-Z0-9]{9}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		num := generateOrderNumber()
		assert.Regexp(t, pattern, num)
		assert.False(t, seen[num], "duplicate order number %s", num)
		seen[num] = true
	}
}

func TestAddStatusHistory(t *testing.T) {
	ord := &Order{ID: 7}
	ord.AddStatusHistory(StatusPending, "Order placed", 42)
	ord.AddStatusHistory(StatusProcessing, "Payment received", 0)

	assert.Len(t, ord.StatusHistory, 2)
	assert.Equal(t, StatusPending, ord.StatusHistory[0].Status)
	assert.Equal(t, uint(42), ord.StatusHistory[0].CreatedBy)
	assert.Equal(t, StatusProcessing, ord.StatusHistory[1].Status)
}

func TestIsPaid(t *testing.T) {
	assert.False(t, (&Order{PaymentStatus: PaymentStatusPending}).IsPaid())
	assert.True(t, (&Order{PaymentStatus: PaymentStatusPaid}).IsPaid())
	assert.False(t, (&Order{PaymentStatus: PaymentStatusFailed}).IsPaid())
}

func TestAwaitingPayment(t *testing.T) {
	tests := []struct {
		name          string
		status        Status
		paymentStatus PaymentStatus
		want          bool
	}{
		{"fresh order waiting on gateway", StatusPending, PaymentStatusPending, true},
		{"cancelled during the payment prompt", StatusCancelled, PaymentStatusPending, false},
		{"already settled", StatusProcessing, PaymentStatusPaid, false},
		{"payment already failed", StatusCancelled, PaymentStatusFailed, false},
		{"shipped", StatusShipped, PaymentStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ord := &Order{Status: tt.status, PaymentStatus: tt.paymentStatus}
			assert.Equal(t, tt.want, ord.AwaitingPayment())
		})
	}
}
