package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierForSpend(t *testing.T) {
	tests := []struct {
		name       string
		totalSpent int64
		want       LoyaltyTier
	}{
		{name: "zero spend is bronze", totalSpent: 0, want: TierBronze},
		{name: "just below silver", totalSpent: 99999, want: TierBronze},
		{name: "silver boundary", totalSpent: 100000, want: TierSilver},
		{name: "between silver and gold", totalSpent: 150000, want: TierSilver},
		{name: "gold boundary", totalSpent: 200000, want: TierGold},
		{name: "just below platinum", totalSpent: 499999, want: TierGold},
		{name: "platinum boundary", totalSpent: 500000, want: TierPlatinum},
		{name: "well above platinum", totalSpent: 2500000, want: TierPlatinum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierForSpend(tt.totalSpent))
		})
	}
}

func TestUserGetDisplayName(t *testing.T) {
	u := &User{Email: "jane@example.com"}
	assert.Equal(t, "jane@example.com", u.GetDisplayName())

	u.FirstName = "Jane"
	u.LastName = "Wanjiku"
	assert.Equal(t, "Jane Wanjiku", u.GetDisplayName())
}
