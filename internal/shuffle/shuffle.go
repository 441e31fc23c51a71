// Package shuffle provides an unbiased, non-mutating Fisher-Yates shuffle.
package shuffle

import "math/rand/v2"

// Shuffle returns a uniformly random permutation of in. The input slice is
// never modified. A nil rng draws from the global source.
func Shuffle[T any](in []T, rng *rand.Rand) []T {
	out := make([]T, len(in))
	copy(out, in)

	for i := len(out) - 1; i > 0; i-- {
		j := intN(rng, i+1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Take returns the first n elements of a shuffled copy of in.
// n is clamped to [0, len(in)].
func Take[T any](in []T, n int, rng *rand.Rand) []T {
	if n <= 0 {
		return []T{}
	}
	shuffled := Shuffle(in, rng)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}

func intN(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}
