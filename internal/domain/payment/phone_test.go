package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "local safaricom format", input: "0712345678", want: "254712345678"},
		{name: "local 01 format", input: "0112345678", want: "254112345678"},
		{name: "international with plus", input: "+254712345678", want: "254712345678"},
		{name: "already normalized", input: "254712345678", want: "254712345678"},
		{name: "with spaces", input: "0712 345 678", want: "254712345678"},
		{name: "with dashes", input: "0712-345-678", want: "254712345678"},
		{name: "too short", input: "071234567", wantErr: true},
		{name: "too long", input: "07123456789", wantErr: true},
		{name: "wrong country code", input: "255712345678", wantErr: true},
		{name: "letters", input: "0712345abc", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPhoneNumber)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
