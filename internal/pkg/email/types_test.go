package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		currency string
		want     string
	}{
		{"zero", 0, "KES", "KES 0.00"},
		{"under one unit", 99, "KES", "KES 0.99"},
		{"whole units", 150000, "KES", "KES 1,500.00"},
		{"grouping across millions", 123456789, "KES", "KES 1,234,567.89"},
		{"no grouping needed", 95000, "USD", "USD 950.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.cents, tt.currency))
		})
	}
}
