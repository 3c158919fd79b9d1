package steps

import "sort"

// Fewer points than this and quartile estimates are too unstable to
// trust, so the filter becomes a no-op.
const minBucketsForOutlierFilter = 8

// FilterOutliers drops buckets whose amount falls outside
// [Q1 - k*IQR, Q3 + k*IQR], with quartiles taken by index from the
// sorted amounts. Callers pass only non-promoted buckets with positive
// amounts. If filtering would empty the set, the input is returned
// unchanged.
func FilterOutliers(buckets []Bucket, k float64) []Bucket {
	if len(buckets) < minBucketsForOutlierFilter {
		return buckets
	}

	amounts := make([]float64, len(buckets))
	for i, b := range buckets {
		amounts[i] = b.Amount
	}
	sort.Float64s(amounts)

	q1 := amounts[len(amounts)/4]
	q3 := amounts[(len(amounts)*3)/4]
	iqr := q3 - q1
	lower := q1 - k*iqr
	upper := q3 + k*iqr

	filtered := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		if b.Amount >= lower && b.Amount <= upper {
			filtered = append(filtered, b)
		}
	}
	if len(filtered) == 0 {
		return buckets
	}
	return filtered
}
