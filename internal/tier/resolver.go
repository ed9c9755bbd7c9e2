// Package tier maps accumulated spend onto membership tiers.
//
// Resolve is the only place that compares spend with tier thresholds; the
// per-transaction and batch reassessment paths both go through it.
package tier

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kkkkikiki/loyalty/internal/model"
)

// Resolve returns the tier a customer with the given spend qualifies for.
//
// Only eligible tiers (active and not deleted) are considered. They are
// ordered by minimum spend descending, ties broken by rank order ascending
// and then by id, and the first tier whose threshold is <= spend wins. When
// spend is below every threshold the lowest tier is returned, so every
// customer holds some tier once one exists. Resolve returns nil when no
// eligible tier is configured.
func Resolve(spend decimal.Decimal, tiers []model.Tier) *model.Tier {
	eligible := Eligible(tiers)
	if len(eligible) == 0 {
		return nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return senior(&eligible[i], &eligible[j])
	})

	for i := range eligible {
		if eligible[i].MinSpend.LessThanOrEqual(spend) {
			return &eligible[i]
		}
	}

	// Below every threshold: fall back to the entry tier, i.e. the lowest
	// threshold, with the most senior rank among equal thresholds.
	lowest := &eligible[len(eligible)-1]
	for i := len(eligible) - 2; i >= 0 && eligible[i].MinSpend.Equal(lowest.MinSpend); i-- {
		lowest = &eligible[i]
	}
	return lowest
}

// Eligible returns a copy of the tiers that can be assigned.
func Eligible(tiers []model.Tier) []model.Tier {
	out := make([]model.Tier, 0, len(tiers))
	for i := range tiers {
		if tiers[i].Eligible() {
			out = append(out, tiers[i])
		}
	}
	return out
}

// senior orders a before b when a has the higher threshold, or the same
// threshold and a lower rank order.
func senior(a, b *model.Tier) bool {
	if c := a.MinSpend.Cmp(b.MinSpend); c != 0 {
		return c > 0
	}
	if a.RankOrder != b.RankOrder {
		return a.RankOrder < b.RankOrder
	}
	return a.ID < b.ID
}
