package steps

import (
	"github.com/promovista/promovista-backend/internal/types"
)

// Bucket is the per-period aggregate of matching observations. Periods
// with no observations keep a zero Amount so the sequence stays complete;
// downstream stages filter on Amount > 0 explicitly.
type Bucket struct {
	Period           Period
	Amount           float64
	IsPromoted       bool
	ObservationCount int
}

// AggregateObservations buckets observations into the generated periods
// and flags buckets containing at least one observation that falls inside
// a known promotional window, either via an explicit promotion link on
// the observation or by date overlap with a promotion record.
func AggregateObservations(periods []Period, observations []*types.SalesObservation, promotions []*types.Promotion) []Bucket {
	buckets := make([]Bucket, len(periods))
	for i, p := range periods {
		buckets[i] = Bucket{Period: p}
	}

	for _, obs := range observations {
		if obs == nil {
			continue
		}
		idx := findPeriod(periods, obs)
		if idx < 0 {
			continue
		}
		buckets[idx].Amount += obs.Amount
		buckets[idx].ObservationCount++
		if obs.PromotionID != nil || inPromotionWindow(obs, promotions) {
			buckets[idx].IsPromoted = true
		}
	}
	return buckets
}

func findPeriod(periods []Period, obs *types.SalesObservation) int {
	for i, p := range periods {
		if p.Contains(obs.OccurredAt) {
			return i
		}
	}
	return -1
}

func inPromotionWindow(obs *types.SalesObservation, promotions []*types.Promotion) bool {
	d := dateOnly(obs.OccurredAt)
	for _, promo := range promotions {
		if promo == nil {
			continue
		}
		if !d.Before(dateOnly(promo.StartDate)) && !d.After(dateOnly(promo.EndDate)) {
			return true
		}
	}
	return false
}
