package vertical

import (
	"math"
	"math/rand/v2"
)

// normal draws from N(mean, stddev).
func normal(rng *rand.Rand, mean, stddev float64) float64 {
	return rng.NormFloat64()*stddev + mean
}

// expo draws from an exponential distribution with the given mean.
func expo(rng *rand.Rand, mean float64) float64 {
	return rng.ExpFloat64() * mean
}

// poisson draws from Poisson(lambda) using Knuth's method, which is fine
// for the small lambdas used by the generators.
func poisson(rng *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

// between returns a uniform integer in [lo, hi].
func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

// uniform returns a uniform float in [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// pick returns a uniformly chosen element.
func pick[T any](rng *rand.Rand, items ...T) T {
	return items[rng.IntN(len(items))]
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
