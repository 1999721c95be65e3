package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("counting concurrent updates", func(t *testing.T) {
		c := NewCollector()
		c.Start("lsi", 4)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 25; j++ {
					c.AddGeneration()
					c.AddEvaluation()
				}
				c.AddCandidates(3)
				c.AddRounds(2)
			}()
		}
		wg.Wait()
		c.AddFailure()

		got := c.Complete()
		require.Equal(t, "lsi", got.Searcher)
		require.Equal(t, 4, got.Members)
		require.Equal(t, 100, got.Generations)
		require.Equal(t, 100, got.Evaluations)
		require.Equal(t, 12, got.Candidates)
		require.Equal(t, 8, got.Rounds)
		require.Equal(t, 1, got.Failures)
	})

	t.Run("resetting on start", func(t *testing.T) {
		c := NewCollector()
		c.Start("mcts", 1)
		c.AddEpisode()
		c.AddFullPlayout()

		c.Start("mcts", 1)

		got := c.Complete()
		require.Zero(t, got.Episodes)
		require.Zero(t, got.FullPlayouts)
	})

	t.Run("ignoring everything in the dummy collector", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start("lsi", 2)
		c.AddGeneration()

		require.Equal(t, SearchMetric{}, c.Complete())
	})
}

func TestPrometheusCollector(t *testing.T) {
	c := NewPrometheusCollector()
	c.Start("prom-test", 1)
	before := testutil.ToFloat64(playoutsTotal.WithLabelValues("prom-test", "generation"))

	c.AddGeneration()
	c.AddGeneration()
	c.AddFailure()

	got := c.Complete()
	require.Equal(t, 2, got.Generations, "Local counts should still be collected")
	require.Equal(t, before+2, testutil.ToFloat64(playoutsTotal.WithLabelValues("prom-test", "generation")))
	require.Equal(t, 1.0, testutil.ToFloat64(memberFailuresTotal.WithLabelValues("prom-test")))
}
