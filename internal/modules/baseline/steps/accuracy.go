package steps

import "math"

// Predict returns the modeled base amount for a period: the average base
// scaled by the period's seasonal index plus the linear trend component.
func Predict(periodNumber int, averageBase float64, index map[int]float64, trendSlope float64) float64 {
	seasonal := 1.0
	if v, ok := index[periodNumber]; ok && v > 0 {
		seasonal = v
	}
	return averageBase*seasonal + trendSlope*float64(periodNumber-1)
}

// AccuracyResult is the fitted model scored against observed amounts.
type AccuracyResult struct {
	// MAPE is the mean absolute percentage error, in percent.
	MAPE float64
	// Confidence is clamp(1 - MAPE/100, 0, 1).
	Confidence float64
}

// ScoreAccuracy computes MAPE over every bucket with a positive observed
// amount. With no scorable buckets the result is zero MAPE and zero
// confidence: the model produced nothing it can be trusted on.
func ScoreAccuracy(buckets []Bucket, averageBase float64, index map[int]float64, trendSlope float64) AccuracyResult {
	var sum float64
	n := 0
	for _, b := range buckets {
		if b.Amount <= 0 {
			continue
		}
		pred := Predict(b.Period.Number, averageBase, index, trendSlope)
		sum += math.Abs(b.Amount-pred) / b.Amount
		n++
	}
	if n == 0 {
		return AccuracyResult{}
	}
	mape := sum / float64(n) * 100
	return AccuracyResult{
		MAPE:       Sanitize(mape),
		Confidence: Clamp(1-mape/100, 0, 1),
	}
}

// Sanitize substitutes 0 for NaN and infinities so no non-finite value
// is ever written or returned.
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func Clamp(v, lo, hi float64) float64 {
	v = Sanitize(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
