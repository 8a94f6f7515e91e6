package grid

import (
	"math"
	"slices"
)

// Quantile returns the q-th quantile (q in [0,1]) of vals using linear
// interpolation between closest ranks. vals is not modified. An empty slice
// yields 0.
func Quantile(vals []float64, q float64) float64 {
	return Quantiles(vals, q)[0]
}

// Quantiles computes several quantiles over a single sorted copy of vals.
func Quantiles(vals []float64, qs ...float64) []float64 {
	out := make([]float64, len(qs))
	if len(vals) == 0 {
		return out
	}
	sorted := slices.Clone(vals)
	slices.Sort(sorted)
	last := float64(len(sorted) - 1)
	for i, q := range qs {
		pos := Clamp01(q) * last
		lo := int(math.Floor(pos))
		hi := int(math.Ceil(pos))
		frac := pos - float64(lo)
		out[i] = sorted[lo]*(1-frac) + sorted[hi]*frac
	}
	return out
}

// Band returns how many of the ascending cuts are less than or equal to v,
// which is the index of the band v falls into.
func Band(cuts []float64, v float64) int {
	n := 0
	for _, c := range cuts {
		if v < c {
			break
		}
		n++
	}
	return n
}
