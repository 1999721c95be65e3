package searcher

import (
	"context"
	"testing"
	"time"

	"cardsearch/experiments/metrics"
	"cardsearch/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func newRequest(state game.State, budget Budget, seed uint64) Request {
	return Request{
		State:  state,
		Budget: budget,
		Rand:   rand.New(rand.NewSource(seed)),
	}
}

func TestLSISearch(t *testing.T) {
	t.Run("finding the best turn", func(t *testing.T) {
		l := NewLSI(WithCutoff(0), WithEvaluationFn(evaluateMock))
		collector := metrics.NewCollector()
		collector.Start(l.Name(), 1)
		req := newRequest(newMockState(), Iterations(2000), 1)
		req.Metrics = collector

		got, err := l.Search(context.Background(), req)

		require.NoError(t, err)
		require.True(t, got.Action.Complete())
		require.ElementsMatch(t, []int{1, 2, 3, 4, 0}, ids(got.Action), "Picking every item scores most")
		_, err = replay(newMockState(), got.Action)
		require.NoError(t, err, "Action should be legal")
		require.Equal(t, 5, got.Stats.Len(), "Every item and the terminator should have statistics")

		metric := collector.Complete()
		require.Equal(t, 500, metric.Generations, "Generation should use a quarter of the budget")
		require.Equal(t, got.Consumed, metric.Generations+metric.Evaluations)
		require.Equal(t, got.Candidates, metric.Candidates)
	})

	t.Run("being deterministic for a fixed seed", func(t *testing.T) {
		l := NewLSI(WithEvaluationFn(evaluateMock))

		first, err := l.Search(context.Background(), newRequest(newMockState(), Iterations(300), 9))
		require.NoError(t, err)
		second, err := l.Search(context.Background(), newRequest(newMockState(), Iterations(300), 9))
		require.NoError(t, err)

		require.Equal(t, first.Action, second.Action)
		require.Equal(t, first.Consumed, second.Consumed)
	})

	t.Run("terminator only without options", func(t *testing.T) {
		state := newMockState()
		state.none = true

		got, err := NewLSI().Search(context.Background(), newRequest(state, Iterations(100), 1))

		require.NoError(t, err)
		require.Equal(t, game.CombinedAction{endTurn}, got.Action)
		require.Zero(t, got.Consumed)
	})

	t.Run("terminator as the only option", func(t *testing.T) {
		state := newMockState()
		state.items = nil

		got, err := NewLSI().Search(context.Background(), newRequest(state, Iterations(100), 1))

		require.NoError(t, err)
		require.Equal(t, game.CombinedAction{endTurn}, got.Action)
		require.Zero(t, got.Consumed)
	})

	t.Run("searching with a time budget", func(t *testing.T) {
		l := NewLSI(WithEvaluationFn(evaluateMock))

		got, err := l.Search(context.Background(), newRequest(newMockState(), Duration(20*time.Millisecond), 1))

		require.NoError(t, err)
		require.True(t, got.Action.Complete())
		require.Positive(t, got.Consumed)
	})

	t.Run("searching with flat expansion", func(t *testing.T) {
		l := NewLSI(WithCutoff(0), WithEvaluationFn(evaluateMock), WithFlatExpansion(100))

		got, err := l.Search(context.Background(), newRequest(newMockState(), Iterations(400), 2))

		require.NoError(t, err)
		_, err = replay(newMockState(), got.Action)
		require.NoError(t, err)
	})

	t.Run("seeding estimates with retained statistics", func(t *testing.T) {
		prior := NewWeightTable()
		prior.Set(mockDecision{id: 1}.Canonical(), Stat{Value: 50, Visits: 100})
		req := newRequest(newMockState(), Iterations(100), 4)
		req.Prior = prior

		got, err := NewLSI(WithEvaluationFn(evaluateMock)).Search(context.Background(), req)

		require.NoError(t, err)
		stat, _ := got.Stats.Get(mockDecision{id: 1}.Canonical())
		require.Less(t, stat.Visits, 100, "Returned statistics should not include the prior")
		priorStat, _ := prior.Get(mockDecision{id: 1}.Canonical())
		require.Equal(t, 100, priorStat.Visits, "Prior should not be modified")
	})

	t.Run("rejecting an empty budget", func(t *testing.T) {
		_, err := NewLSI().Search(context.Background(), newRequest(newMockState(), Budget{}, 1))

		require.ErrorIs(t, err, ErrInvalidBudget)
	})
}

func TestBudget(t *testing.T) {
	t.Run("splitting iterations", func(t *testing.T) {
		generation, evaluation := Iterations(1000).Split(0.25)
		require.Equal(t, 250, generation)
		require.Equal(t, 750, evaluation)

		generation, evaluation = Iterations(1).Split(0.25)
		require.Equal(t, 1, generation, "Each phase should get at least one iteration")
		require.Equal(t, 1, evaluation)
	})

	t.Run("dividing among members", func(t *testing.T) {
		for _, total := range []int{7, 100, 1001} {
			for members := 1; members <= 7; members++ {
				share, err := Iterations(total).Divide(members)
				require.NoError(t, err)
				require.Equal(t, total/members, share.Iterations)
				require.LessOrEqual(t, share.Iterations*members, total)
			}
		}

		share, err := Duration(time.Second).Divide(4)
		require.NoError(t, err)
		require.Equal(t, 250*time.Millisecond, share.Duration)

		_, err = Iterations(3).Divide(4)
		require.ErrorIs(t, err, ErrInvalidBudget)
	})
}
