package shuffle

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffle_Uniformity(t *testing.T) {
	const (
		size   = 5
		trials = 10000
	)
	input := []int{0, 1, 2, 3, 4}
	rng := rand.New(rand.NewPCG(42, 7))

	var counts [size][size]int
	for range trials {
		out := Shuffle(input, rng)
		for pos, v := range out {
			counts[pos][v]++
		}
	}

	expected := float64(trials) / size
	chi2 := 0.0
	for pos := range size {
		for v := range size {
			d := float64(counts[pos][v]) - expected
			chi2 += d * d / expected
		}
	}
	assert.Less(t, chi2, 50.0, "chi-squared statistic too high: %.2f", chi2)
}

func TestShuffle_BiasedSortFailsSameCheck(t *testing.T) {
	// A "swap with any index" shuffle is the classic biased variant; the same
	// statistic must reject it, proving the test has teeth.
	const (
		size   = 5
		trials = 10000
	)
	rng := rand.New(rand.NewPCG(1, 2))

	var counts [size][size]int
	for range trials {
		out := []int{0, 1, 2, 3, 4}
		for i := range out {
			j := rng.IntN(size)
			out[i], out[j] = out[j], out[i]
		}
		for pos, v := range out {
			counts[pos][v]++
		}
	}

	expected := float64(trials) / size
	chi2 := 0.0
	for pos := range size {
		for v := range size {
			d := float64(counts[pos][v]) - expected
			chi2 += d * d / expected
		}
	}
	assert.Greater(t, chi2, 50.0)
}

func TestShuffle_DoesNotMutateInput(t *testing.T) {
	input := []string{"a", "b", "c", "d", "e", "f"}
	orig := slices.Clone(input)

	out := Shuffle(input, rand.New(rand.NewPCG(3, 4)))

	assert.Equal(t, orig, input)
	require.Len(t, out, len(input))

	sortedOut := slices.Clone(out)
	slices.Sort(sortedOut)
	assert.Equal(t, orig, sortedOut, "output must be a permutation of the input")
}

func TestShuffle_EmptyAndSingleton(t *testing.T) {
	assert.Empty(t, Shuffle([]int{}, nil))
	assert.Empty(t, Shuffle[int](nil, nil))
	assert.Equal(t, []int{7}, Shuffle([]int{7}, nil))
}

func TestShuffle_ReturnsFreshSlice(t *testing.T) {
	input := []int{1}
	out := Shuffle(input, nil)
	out[0] = 99
	assert.Equal(t, 1, input[0])
}

func TestTake(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	input := []int{1, 2, 3, 4, 5}

	assert.Len(t, Take(input, 3, rng), 3)
	assert.Len(t, Take(input, 10, rng), 5)
	assert.Empty(t, Take(input, 0, rng))
	assert.Empty(t, Take(input, -1, rng))
}
