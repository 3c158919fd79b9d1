package steps

import "math"

// Below this many non-promoted buckets the average falls back to all
// positive buckets, promoted included. Recalculation must never produce
// a zero baseline while any sales data exists; this is a known precision
// limitation during heavy promotional periods, preserved deliberately.
const minNonPromotedBuckets = 4

// Seasonality coverage threshold: indexes are only computed when at
// least half the periods carry data, otherwise every index is 1.0.
const minSeasonalityCoverage = 0.5

// SeasonalityResult carries the fitted seasonal model for a baseline.
type SeasonalityResult struct {
	// AverageBase is the mean amount of the source buckets.
	AverageBase float64
	// Index maps period number to its seasonal factor (1.0 = average).
	Index map[int]float64
	// UsedPromotedFallback is true when too few non-promoted buckets
	// existed and the average was taken over all positive buckets.
	UsedPromotedFallback bool
}

// EstimateSeasonality computes the average base amount and, when enabled
// and coverage allows, a per-period seasonal index rounded to two
// decimals. cleaned is the outlier-filtered non-promoted positive subset
// and all is the full bucket sequence.
func EstimateSeasonality(cleaned, all []Bucket, enabled bool, totalPeriods int) SeasonalityResult {
	res := SeasonalityResult{Index: make(map[int]float64, totalPeriods)}

	source := cleaned
	if countNonPromotedPositive(all) < minNonPromotedBuckets {
		source = positiveBuckets(all)
		res.UsedPromotedFallback = true
	}
	res.AverageBase = meanAmount(source)

	for i := 1; i <= totalPeriods; i++ {
		res.Index[i] = 1.0
	}
	if !enabled || res.AverageBase <= 0 || totalPeriods == 0 {
		return res
	}
	if float64(len(source)) < minSeasonalityCoverage*float64(totalPeriods) {
		return res
	}

	for _, b := range source {
		idx := b.Amount / res.AverageBase
		res.Index[b.Period.Number] = math.Round(idx*100) / 100
	}
	return res
}

// TrendResult carries the ordinary least squares fit of amount against
// sequential index over the cleaned non-promoted series.
type TrendResult struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// EstimateTrend fits amount = intercept + slope*x over the cleaned
// series, x being the 0-based position. Requires at least four points;
// with fewer, or when disabled, the trend is zero.
func EstimateTrend(cleaned []Bucket, enabled bool) TrendResult {
	if !enabled || len(cleaned) < minNonPromotedBuckets {
		return TrendResult{}
	}

	n := float64(len(cleaned))
	var sumX, sumY float64
	for i, b := range cleaned {
		sumX += float64(i)
		sumY += b.Amount
	}
	meanX := sumX / n
	meanY := sumY / n

	var sxy, sxx, syy float64
	for i, b := range cleaned {
		dx := float64(i) - meanX
		dy := b.Amount - meanY
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 {
		return TrendResult{}
	}

	slope := sxy / sxx
	intercept := meanY - slope*meanX

	rsq := 0.0
	if syy > 0 {
		var ssRes float64
		for i, b := range cleaned {
			pred := intercept + slope*float64(i)
			ssRes += (b.Amount - pred) * (b.Amount - pred)
		}
		rsq = 1 - ssRes/syy
		if rsq < 0 {
			rsq = 0
		}
	}
	return TrendResult{Slope: slope, Intercept: intercept, RSquared: rsq}
}

func countNonPromotedPositive(buckets []Bucket) int {
	n := 0
	for _, b := range buckets {
		if !b.IsPromoted && b.Amount > 0 {
			n++
		}
	}
	return n
}

func positiveBuckets(buckets []Bucket) []Bucket {
	out := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		if b.Amount > 0 {
			out = append(out, b)
		}
	}
	return out
}

func meanAmount(buckets []Bucket) float64 {
	if len(buckets) == 0 {
		return 0
	}
	var sum float64
	for _, b := range buckets {
		sum += b.Amount
	}
	return sum / float64(len(buckets))
}

// NonPromotedPositive returns the subset the outlier filter and trend
// estimator operate on.
func NonPromotedPositive(buckets []Bucket) []Bucket {
	out := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		if !b.IsPromoted && b.Amount > 0 {
			out = append(out, b)
		}
	}
	return out
}
