package rating

import (
	"cmp"
	"slices"

	"ctrnf-scores/internal/domain"
)

// SortTiers returns a copy of tiers ordered by lower bound.
func SortTiers(tiers []domain.BoardTier) []domain.BoardTier {
	out := slices.Clone(tiers)
	slices.SortStableFunc(out, func(a, b domain.BoardTier) int {
		return cmp.Compare(a.LowerBound, b.LowerBound)
	})
	return out
}

// TierFor names the highest tier whose lower bound the rating reaches. Ratings
// below every bound fall into the lowest tier. tiers must be sorted.
func TierFor(tiers []domain.BoardTier, rating float64) string {
	if len(tiers) == 0 {
		return ""
	}
	name := tiers[0].Name
	for _, t := range tiers {
		if rating < t.LowerBound {
			break
		}
		name = t.Name
	}
	return name
}
