package tier

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkkikiki/loyalty/internal/model"
)

func mkTier(id int64, name string, min int64, rank int) model.Tier {
	return model.Tier{
		ID:               id,
		Name:             name,
		MinSpend:         decimal.NewFromInt(min),
		RankOrder:        rank,
		EvaluationPeriod: model.EvaluationYearly,
		IsActive:         true,
	}
}

func standardTiers() []model.Tier {
	// deliberately unsorted
	return []model.Tier{
		mkTier(3, "Gold", 2000, 1),
		mkTier(1, "Bronze", 0, 3),
		mkTier(2, "Silver", 500, 2),
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		spend string
		want  string
	}{
		{"0", "Bronze"},
		{"100", "Bronze"},
		{"499.99", "Bronze"},
		{"500", "Silver"},
		{"600", "Silver"},
		{"1999.99", "Silver"},
		{"2000", "Gold"},
		{"1000000", "Gold"},
	}
	for _, tt := range tests {
		t.Run(tt.spend, func(t *testing.T) {
			got := Resolve(decimal.RequireFromString(tt.spend), standardTiers())
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestResolveFallsBackToLowestTier(t *testing.T) {
	tiers := []model.Tier{
		mkTier(1, "Silver", 500, 2),
		mkTier(2, "Gold", 2000, 1),
	}
	got := Resolve(decimal.NewFromInt(100), tiers)
	require.NotNil(t, got)
	assert.Equal(t, "Silver", got.Name)
}

func TestResolveUnassignedWithoutActiveTiers(t *testing.T) {
	assert.Nil(t, Resolve(decimal.NewFromInt(5000), nil))

	inactive := standardTiers()
	for i := range inactive {
		inactive[i].IsActive = false
	}
	assert.Nil(t, Resolve(decimal.NewFromInt(5000), inactive))
}

func TestResolveIgnoresInactiveAndDeletedTiers(t *testing.T) {
	tiers := standardTiers()
	tiers[0].IsActive = false // Gold
	deleted := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tiers[2].DeletedAt = &deleted // Silver

	got := Resolve(decimal.NewFromInt(5000), tiers)
	require.NotNil(t, got)
	assert.Equal(t, "Bronze", got.Name)
}

func TestResolveEqualThresholdsPreferLowerRank(t *testing.T) {
	tiers := []model.Tier{
		mkTier(1, "Base", 0, 9),
		mkTier(2, "Silver", 500, 5),
		mkTier(3, "Silver Plus", 500, 2),
	}
	got := Resolve(decimal.NewFromInt(700), tiers)
	require.NotNil(t, got)
	assert.Equal(t, "Silver Plus", got.Name)

	low := []model.Tier{
		mkTier(1, "Starter", 100, 4),
		mkTier(2, "Welcome", 100, 1),
	}
	got = Resolve(decimal.Zero, low)
	require.NotNil(t, got)
	assert.Equal(t, "Welcome", got.Name)
}

func TestResolveDoesNotReorderInput(t *testing.T) {
	tiers := standardTiers()
	Resolve(decimal.NewFromInt(600), tiers)
	assert.Equal(t, "Gold", tiers[0].Name)
	assert.Equal(t, "Bronze", tiers[1].Name)
}

func TestResolveIsMonotonic(t *testing.T) {
	tiers := []model.Tier{
		mkTier(1, "Bronze", 0, 4),
		mkTier(2, "Silver", 500, 3),
		mkTier(3, "Gold", 2000, 2),
		mkTier(4, "Gold Club", 2000, 1),
		mkTier(5, "Platinum", 10000, 0),
	}
	var prev *model.Tier
	for s := int64(0); s <= 12000; s += 50 {
		got := Resolve(decimal.NewFromInt(s), tiers)
		require.NotNil(t, got)
		if prev != nil {
			assert.True(t, got.MinSpend.GreaterThanOrEqual(prev.MinSpend),
				"spend %d resolved to %s below %s", s, got.Name, prev.Name)
		}
		prev = got
	}
}

func TestSpendWindowSince(t *testing.T) {
	asOf := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	assert.Nil(t, WindowLifetime.Since(asOf))
	assert.Equal(t, time.Date(2026, 9, 19, 12, 0, 0, 0, time.UTC), *WindowMonthly.Since(asOf))
	assert.Equal(t, time.Date(2026, 7, 19, 12, 0, 0, 0, time.UTC), *WindowQuarterly.Since(asOf))
	assert.Equal(t, time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC), *WindowYearly.Since(asOf))

	_, err := ParseSpendWindow("weekly")
	assert.Error(t, err)
	w, err := ParseSpendWindow("quarterly")
	require.NoError(t, err)
	assert.Equal(t, WindowQuarterly, w)
}
