package common

import "math/rand"

// RNG is the seedable random source the engines draw from. Production code
// injects NewRNG(seed) or a time-seeded instance; tests inject a fixed
// seed. Never the package-global math/rand state.
type RNG interface {
	Float64() float64
	Intn(n int) int
}

func NewRNG(seed int64) RNG {
	return rand.New(rand.NewSource(seed))
}

// WeightedIndex picks an index with probability proportional to its weight.
// Weights are relative; the total need not be 1. Returns -1 when no weight
// is positive.
func WeightedIndex(rng RNG, weights []float64) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	target := rng.Float64() * total
	var cumulative float64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		if target < cumulative {
			return i
		}
	}
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return -1
}
