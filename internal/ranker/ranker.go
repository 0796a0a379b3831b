package ranker

import (
	"sort"
	"time"

	"github.com/MichalMitros/steam-deals-digest/internal/platform/models"
)

// DefaultMinReviews is the default localized-review-count eligibility
// threshold.
const DefaultMinReviews = 10

// Option is custom configuration of Ranker.
type Option func(r *Ranker)

// Ranker filters enriched items by review-count eligibility and orders the
// survivors deterministically.
type Ranker struct {
	minReviews int
}

// NewRanker returns new Ranker.
func NewRanker(ops ...Option) *Ranker {
	rnk := &Ranker{
		minReviews: DefaultMinReviews,
	}

	for _, op := range ops {
		op(rnk)
	}

	return rnk
}

// Rank drops items below the review threshold and sorts the rest ascending
// by the composite key (-reviews, -discount, expiry, final price, name).
// Known expiries sort before unknown ones, earliest first. The order is
// total: re-ranking ranked output reproduces it.
func (r *Ranker) Rank(items []models.EnrichedItem) []models.RankedItem {
	ranked := make([]models.RankedItem, 0, len(items))
	for _, item := range items {
		if item.ReviewCount < r.minReviews {
			continue
		}
		ranked = append(ranked, models.RankedItem{EnrichedItem: item})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i].EnrichedItem, ranked[j].EnrichedItem)
	})

	return ranked
}

func less(a, b models.EnrichedItem) bool {
	if a.ReviewCount != b.ReviewCount {
		return a.ReviewCount > b.ReviewCount
	}
	if a.DiscountPercent != b.DiscountPercent {
		return a.DiscountPercent > b.DiscountPercent
	}
	if cmp := compareExpiry(a.Expiry, b.Expiry); cmp != 0 {
		return cmp < 0
	}
	if a.PriceFinal != b.PriceFinal {
		return a.PriceFinal < b.PriceFinal
	}
	return a.Name < b.Name
}

// compareExpiry orders known expiries ascending and places unknown ones last.
func compareExpiry(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	}
	return 0
}

// WithMinReviews sets the eligibility threshold.
func WithMinReviews(minReviews int) Option {
	return func(r *Ranker) {
		r.minReviews = minReviews
	}
}
