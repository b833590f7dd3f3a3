// Package derive computes the dashboard's read-only views: aggregate
// metrics, simulated live metrics, health assessments, ARM templates and
// cost estimates. Every function here is pure given its inputs; randomness
// comes in through the Rand interface so tests can pin it down.
package derive

import (
	"math"
)

// Rand is the source of jitter for simulated values. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
