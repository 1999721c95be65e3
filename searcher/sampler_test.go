package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestSamplerSample(t *testing.T) {
	t.Run("frequencies converge to normalized weights", func(t *testing.T) {
		s := NewSampler[string]()
		weights := map[string]float64{"a": 1, "b": 2, "c": 3, "d": 4}
		for _, item := range []string{"a", "b", "c", "d"} {
			require.NoError(t, s.Add(item, weights[item], false))
		}
		rng := rand.New(rand.NewSource(42))

		const draws = 200000
		counts := map[string]int{}
		for i := 0; i < draws; i++ {
			item, err := s.Sample(rng)
			require.NoError(t, err)
			counts[item]++
		}

		for item, weight := range weights {
			require.InDelta(t, weight/10, float64(counts[item])/draws, 0.01,
				"Frequency of %s should match its weight", item)
		}
	})

	t.Run("single item is always returned", func(t *testing.T) {
		s := NewSampler[int]()
		require.NoError(t, s.Add(7, 0.3, true))
		rng := rand.New(rand.NewSource(1))

		for i := 0; i < 100; i++ {
			item, err := s.Sample(rng)
			require.NoError(t, err)
			require.Equal(t, 7, item)
		}
	})

	t.Run("zero weight items are never returned", func(t *testing.T) {
		s := NewSampler[int]()
		require.NoError(t, s.Add(1, 0, false))
		require.NoError(t, s.Add(2, 5, false))
		rng := rand.New(rand.NewSource(1))

		for i := 0; i < 1000; i++ {
			item, err := s.Sample(rng)
			require.NoError(t, err)
			require.Equal(t, 2, item)
		}
	})

	t.Run("stale table is rebuilt before sampling", func(t *testing.T) {
		s := NewSampler[int]()
		require.NoError(t, s.Add(1, 1, true))
		require.NoError(t, s.Add(2, 1, false))
		require.NoError(t, s.Remove(1, false))
		rng := rand.New(rand.NewSource(1))

		item, err := s.Sample(rng)

		require.NoError(t, err)
		require.Equal(t, 2, item, "Removed item should not be sampled")
	})
}

func TestSamplerErrors(t *testing.T) {
	t.Run("sampling an empty table", func(t *testing.T) {
		s := NewSampler[int]()

		_, err := s.Sample(rand.New(rand.NewSource(1)))

		require.ErrorIs(t, err, ErrEmptySampler)
	})

	t.Run("sampling after removing the last item", func(t *testing.T) {
		s := NewSampler[int]()
		require.NoError(t, s.Add(1, 1, true))

		require.ErrorIs(t, s.Remove(1, true), ErrEmptySampler)
		_, err := s.Sample(rand.New(rand.NewSource(1)))
		require.ErrorIs(t, err, ErrEmptySampler)
	})

	t.Run("sampling with zero total weight", func(t *testing.T) {
		s := NewSampler[int]()
		require.ErrorIs(t, s.Add(1, 0, true), ErrZeroWeight)

		_, err := s.Sample(rand.New(rand.NewSource(1)))

		require.ErrorIs(t, err, ErrZeroWeight)
	})

	t.Run("adding a negative weight", func(t *testing.T) {
		s := NewSampler[int]()

		err := s.Add(1, -1, true)

		require.ErrorIs(t, err, ErrNegativeWeight)
		require.Equal(t, 0, s.Len(), "Rejected item should not be added")
	})
}

func TestSamplerRecalculate(t *testing.T) {
	t.Run("probabilities stay valid for extreme weights", func(t *testing.T) {
		s := NewSampler[int]()
		for i, w := range []float64{1e-12, 1, 1e12, 3, 0.1, 1e-3, 7} {
			require.NoError(t, s.Add(i, w, false))
		}

		require.NoError(t, s.Recalculate())

		for i, p := range s.prob {
			require.GreaterOrEqual(t, p, 0.0)
			require.LessOrEqual(t, p, 1.0+1e-9)
			require.Less(t, s.alias[i], s.Len(), "Alias should point into the table")
		}
	})

	t.Run("updating a weight replaces it", func(t *testing.T) {
		s := NewSampler[string]()
		require.NoError(t, s.Add("a", 1, false))
		require.NoError(t, s.Add("b", 1, false))
		require.NoError(t, s.Add("a", 3, true))

		require.Equal(t, 2, s.Len())
		require.InDelta(t, 0.75, s.Probability("a"), 1e-9)
		require.InDelta(t, 0.0, s.Probability("c"), 1e-9)
	})
}
