package util

import (
	"math"
	"slices"
)

// Stats summarizes a series of float64 samples
type Stats struct {
	Count        int     `json:"count"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	StdDeviation float64 `json:"std_deviation"` // population standard deviation
	MinMaxRatio  float64 `json:"min_max_ratio"` // 1 if max is not positive
}

// NewStats computes the summary of values. The slice is not modified.
// An empty slice yields the zero Stats.
func NewStats(values []float64) Stats {
	n := len(values)
	if n == 0 {
		return Stats{}
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	var squares float64
	for _, v := range sorted {
		squares += (v - mean) * (v - mean)
	}

	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	s := Stats{
		Count:        n,
		Min:          sorted[0],
		Max:          sorted[n-1],
		Mean:         mean,
		Median:       median,
		StdDeviation: math.Sqrt(squares / float64(n)),
		MinMaxRatio:  1,
	}
	if s.Max > 0 {
		s.MinMaxRatio = s.Min / s.Max
	}
	return s
}
