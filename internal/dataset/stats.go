package dataset

import (
	"math"
	"sort"
)

// ColumnStatistics holds the per-column numbers the cleaning stages need.
// They are recomputed fresh for every stage invocation and never persisted.
type ColumnStatistics struct {
	Q1         float64
	Q3         float64
	IQR        float64
	LowerBound float64
	UpperBound float64
	Median     float64
}

// Quantile returns the q-th quantile (0 <= q <= 1) of values using linear
// interpolation between closest ranks, matching the convention of most
// dataframe libraries. Returns NaN for an empty slice.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	frac := pos - float64(lower)
	if lower+1 >= len(sorted) {
		return sorted[lower]
	}
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

// Median returns the middle value of values, interpolating for even counts.
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// Mode returns the most frequent value in values. Ties break toward the
// value seen first. The second return is false when values is empty.
func Mode(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(values))
	var order []string
	for _, v := range values {
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best, true
}

// ComputeStatistics derives quartile bounds for outlier detection from
// values, using the given IQR multiplier.
func ComputeStatistics(values []float64, multiplier float64) ColumnStatistics {
	q1 := Quantile(values, 0.25)
	q3 := Quantile(values, 0.75)
	iqr := q3 - q1
	return ColumnStatistics{
		Q1:         q1,
		Q3:         q3,
		IQR:        iqr,
		LowerBound: q1 - multiplier*iqr,
		UpperBound: q3 + multiplier*iqr,
		Median:     Median(values),
	}
}
