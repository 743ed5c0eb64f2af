package state

import "math"

// ProbabilitySumTolerance is how far estimates may drift from 100 and still be accepted.
const ProbabilitySumTolerance = 1.0

// ProbabilitySum totals a set of estimates.
func ProbabilitySum(estimates map[string]float64) float64 {
	var sum float64
	for _, p := range estimates {
		sum += p
	}
	return sum
}

// IsProbabilitySumValid reports whether estimates add up to roughly 100.
// It is advisory; the reducer accepts any estimates.
func IsProbabilitySumValid(estimates map[string]float64) bool {
	return math.Abs(ProbabilitySum(estimates)-100) <= ProbabilitySumTolerance
}
