package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedPick_EmptySet(t *testing.T) {
	_, err := WeightedPick(nil, func(int) float64 { return 1 }, NewSeeded(1))
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestWeightedPick_SingleCandidateAlwaysWins(t *testing.T) {
	rng := NewSeeded(2)
	for i := 0; i < 100; i++ {
		got, err := WeightedPick([]string{"only"}, func(string) float64 { return 0.3 }, rng)
		require.NoError(t, err)
		assert.Equal(t, "only", got)
	}
}

func TestWeightedPick_ProportionalToWeights(t *testing.T) {
	type candidate struct {
		name   string
		weight float64
	}
	items := []candidate{{"heavy", 0.8}, {"light", 0.2}}
	rng := NewSeeded(3)

	counts := map[string]int{}
	const draws = 50000
	for i := 0; i < draws; i++ {
		got, err := WeightedPick(items, func(c candidate) float64 { return c.weight }, rng)
		require.NoError(t, err)
		counts[got.name]++
	}

	assert.InDelta(t, 0.8, float64(counts["heavy"])/float64(draws), 0.01)
}

func TestWeightedPick_NonPositiveTotalFallsBackToUniform(t *testing.T) {
	items := []string{"a", "b", "c"}
	rng := NewSeeded(4)

	counts := map[string]int{}
	const draws = 30000
	for i := 0; i < draws; i++ {
		got, err := WeightedPick(items, func(string) float64 { return 0 }, rng)
		require.NoError(t, err)
		counts[got]++
	}

	for _, item := range items {
		assert.InDelta(t, 1.0/3.0, float64(counts[item])/float64(draws), 0.02)
	}
}

func TestWeightedPick_SkipsNonPositiveWeights(t *testing.T) {
	type candidate struct {
		name   string
		weight float64
	}
	items := []candidate{{"dead", -1}, {"alive", 1}}
	rng := NewSeeded(5)

	for i := 0; i < 100; i++ {
		got, err := WeightedPick(items, func(c candidate) float64 { return c.weight }, rng)
		require.NoError(t, err)
		assert.Equal(t, "alive", got.name)
	}
}
