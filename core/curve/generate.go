package curve

import (
	"fmt"
	"math/rand"
	"sort"
)

// RandomEfficiency generates a monotonic efficiency curve with n breakpoints,
// load ratios spanning [0,1] and values bounded by [minEff, maxEff]. The
// direction (increasing or decreasing) is drawn from rng. Infeasible bounds
// (minEff > maxEff) are rejected.
func RandomEfficiency(rng *rand.Rand, n int, minEff, maxEff float64) (*Curve, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: at least two points required", ErrConfiguration)
	}
	if minEff > maxEff {
		return nil, fmt.Errorf("%w: min efficiency %.4f exceeds max %.4f", ErrConfiguration, minEff, maxEff)
	}
	if minEff <= 0 || maxEff > 1 {
		return nil, fmt.Errorf("%w: bounds [%.4f, %.4f] outside (0,1]", ErrConfiguration, minEff, maxEff)
	}

	ratios := distinctSorted(rng, n, 0, 1)
	values := distinctSorted(rng, n, minEff, maxEff)
	if rng.Intn(2) == 1 {
		for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
			values[i], values[j] = values[j], values[i]
		}
	}
	return NewEfficiency(ratios, values)
}

// distinctSorted draws n strictly increasing samples covering [lo, hi].
func distinctSorted(rng *rand.Rand, n int, lo, hi float64) []float64 {
	out := make([]float64, n)
	out[0] = lo
	out[n-1] = hi
	for i := 1; i < n-1; i++ {
		out[i] = lo + rng.Float64()*(hi-lo)
	}
	sort.Float64s(out)
	for i := 1; i < n; i++ {
		if out[i] <= out[i-1] {
			// nudge duplicates apart while staying inside the bounds
			out[i] = out[i-1] + (hi-out[i-1])/float64(2*n)
		}
	}
	return out
}
