package searcher

import (
	"context"
	"testing"
	"time"

	"cardsearch/game"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// candidatesOf returns n complete actions picking distinct item subsets.
func candidatesOf(n int) []game.CombinedAction {
	actions, _ := NewDecomposer(OrderNone, nil, 0).Expand(newMockState(), n)
	return actions
}

func newHalving() *SequentialHalving {
	return &SequentialHalving{Cutoff: 0, Evaluate: evaluateMock}
}

func TestRounds(t *testing.T) {
	tests := map[int]int{1: 1, 2: 1, 3: 2, 4: 2, 5: 3, 8: 3, 9: 4, 16: 4, 17: 5}
	for k, want := range tests {
		require.Equal(t, want, Rounds(k), "Rounds for %d candidates", k)
	}
}

func TestSequentialHalvingSelect(t *testing.T) {
	t.Run("eight candidates with a budget of 100", func(t *testing.T) {
		got, err := newHalving().Select(context.Background(), newMockState(), candidatesOf(8), 100, rand.New(rand.NewSource(1)))

		require.NoError(t, err)
		require.Equal(t, 3, got.Rounds)
		require.Equal(t, []int{8, 4, 2, 1}, got.Sizes)
		require.Equal(t, 100, got.Consumed, "4, 8 and 18 playouts per candidate should spend the budget exactly")
		require.True(t, got.Winner.Complete())
	})

	t.Run("halving with ceil at every round", func(t *testing.T) {
		for k := 2; k <= 17; k++ {
			got, err := newHalving().Select(context.Background(), newMockState(), candidatesOf(k), 10, rand.New(rand.NewSource(1)))

			require.NoError(t, err)
			require.Equal(t, Rounds(k), got.Rounds, "Rounds for %d candidates", k)
			for i := 1; i < len(got.Sizes); i++ {
				require.Equal(t, (got.Sizes[i-1]+1)/2, got.Sizes[i])
			}
			require.Equal(t, 1, got.Sizes[len(got.Sizes)-1])
			require.GreaterOrEqual(t, got.Consumed, k, "Every candidate should get at least one playout")
		}
	})

	t.Run("single candidate costs nothing", func(t *testing.T) {
		candidates := candidatesOf(1)

		got, err := newHalving().Select(context.Background(), newMockState(), candidates, 100, rand.New(rand.NewSource(1)))

		require.NoError(t, err)
		require.Equal(t, candidates[0], got.Winner)
		require.Zero(t, got.Consumed)
		require.Zero(t, got.Rounds)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := newHalving().Select(context.Background(), newMockState(), nil, 100, rand.New(rand.NewSource(1)))

		require.ErrorIs(t, err, ErrNoCandidates)
	})

	t.Run("selecting the best candidate", func(t *testing.T) {
		candidates := []game.CombinedAction{
			{endTurn},
			{mockDecision{id: 1}, endTurn},
			{mockDecision{id: 4}, mockDecision{id: 3}, endTurn},
			{mockDecision{id: 2}, endTurn},
			{mockDecision{id: 3}, mockDecision{id: 4}, endTurn},
		}

		got, err := newHalving().Select(context.Background(), newMockState(), candidates, 50, rand.New(rand.NewSource(1)))

		require.NoError(t, err)
		require.Equal(t, candidates[2], got.Winner, "Highest score should win, first seen on ties")
	})

	t.Run("stopping at the deadline", func(t *testing.T) {
		h := newHalving()
		h.Deadline = time.Now().Add(-time.Second)
		candidates := candidatesOf(8)

		got, err := h.Select(context.Background(), newMockState(), candidates, 100, rand.New(rand.NewSource(1)))

		require.NoError(t, err)
		require.Zero(t, got.Consumed)
		require.Equal(t, candidates[0], got.Winner, "First candidate should win without evaluations")
	})

	t.Run("stopping on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got, err := newHalving().Select(ctx, newMockState(), candidatesOf(4), 100, rand.New(rand.NewSource(1)))

		require.NoError(t, err)
		require.Zero(t, got.Consumed)
	})
}
