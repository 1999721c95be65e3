package searcher

import (
	"testing"

	"cardsearch/game"

	"github.com/stretchr/testify/require"
)

func ids(decisions []game.Decision) []int {
	var got []int
	for _, d := range decisions {
		got = append(got, d.(mockDecision).id)
	}
	return got
}

func TestDecomposerOptions(t *testing.T) {
	t.Run("collapsing placement variants", func(t *testing.T) {
		state := newMockState()
		state.items = []mockDecision{{id: 1, slot: 0}, {id: 1, slot: 1}, {id: 2}}

		got := NewDecomposer(OrderNone, nil, 0).Options(state)

		require.Equal(t, []game.Decision{mockDecision{id: 1, slot: 0}, mockDecision{id: 2}, endTurn}, got,
			"Only the first variant of a play should remain")
	})

	t.Run("ordering options", func(t *testing.T) {
		prior := NewWeightTable()
		prior.Set(mockDecision{id: 1}.Canonical(), Stat{Value: 1, Visits: 1}) // Certain win
		prior.Set(mockDecision{id: 2}.Canonical(), Stat{Value: 1, Visits: 2}) // Coin flip
		prior.Set(mockDecision{id: 3}.Canonical(), Stat{Value: 1, Visits: 4})

		tests := []struct {
			ordering Ordering
			want     []int
		}{
			{OrderNone, []int{1, 2, 3, 4, 0}},
			{OrderCategory, []int{2, 4, 1, 3, 0}},
			{OrderCostAscending, []int{0, 1, 3, 2, 4}},
			{OrderCostDescending, []int{4, 2, 3, 1, 0}},
			{OrderEntropyAscending, []int{1, 3, 2, 4, 0}},
			{OrderEntropyDescending, []int{2, 4, 0, 3, 1}},
		}
		for _, tt := range tests {
			t.Run(tt.ordering.String(), func(t *testing.T) {
				got := NewDecomposer(tt.ordering, prior, 0).Options(newMockState())

				require.Equal(t, tt.want, ids(got))
			})
		}
	})

	t.Run("no options at a terminal state", func(t *testing.T) {
		state := newMockState()
		state.none = true

		require.Empty(t, NewDecomposer(OrderNone, nil, 0).Options(state))
	})
}

func TestParseOrdering(t *testing.T) {
	for _, ordering := range []Ordering{OrderNone, OrderCategory, OrderCostAscending, OrderCostDescending, OrderEntropyAscending, OrderEntropyDescending} {
		got, err := ParseOrdering(ordering.String())
		require.NoError(t, err)
		require.Equal(t, ordering, got)
	}

	_, err := ParseOrdering("alphabetical")
	require.Error(t, err)
}

func TestDecomposerExpand(t *testing.T) {
	t.Run("enumerating every completion", func(t *testing.T) {
		actions, truncated := NewDecomposer(OrderNone, nil, 0).Expand(newMockState(), 1000)

		// Ordered selections of 0 to 4 out of 4 items
		require.False(t, truncated)
		require.Len(t, actions, 1+4+12+24+24)
		seen := map[game.Signature]bool{}
		for _, action := range actions {
			require.True(t, action.Complete(), "%s should end the turn", action)
			require.False(t, seen[action.Signature()], "%s should be enumerated once", action)
			seen[action.Signature()] = true
		}
	})

	t.Run("truncating large turns", func(t *testing.T) {
		actions, truncated := NewDecomposer(OrderNone, nil, 0).Expand(newMockState(), 10)

		require.True(t, truncated)
		require.Len(t, actions, 10)
	})

	t.Run("capping the turn length", func(t *testing.T) {
		actions, _ := NewDecomposer(OrderNone, nil, 2).Expand(newMockState(), 1000)

		require.Len(t, actions, 1+4, "Only one pick fits before the terminator")
		for _, action := range actions {
			require.LessOrEqual(t, len(action), 2)
			require.True(t, action.Complete())
		}
	})

	t.Run("terminator only without options", func(t *testing.T) {
		state := newMockState()
		state.none = true

		actions, truncated := NewDecomposer(OrderNone, nil, 0).Expand(state, 10)

		require.False(t, truncated)
		require.Equal(t, []game.CombinedAction{{endTurn}}, actions)
	})
}

func TestFallback(t *testing.T) {
	t.Run("ignoring options without a category", func(t *testing.T) {
		state := newMockState()
		options := []game.Decision{mockDecision{id: 1}, mockDecision{id: 2, category: game.CategoryPlay}}

		require.Equal(t, game.CategoryNone, mockDecision{id: 1}.Category(), "Unset categories should not be mandatory")
		require.Equal(t, endTurn, fallback(state, options), "Without a mandatory option the terminator is the fallback")
	})

	t.Run("preferring a mandatory option", func(t *testing.T) {
		state := newMockState()
		options := []game.Decision{mockDecision{id: 1}, mockDecision{id: 2, mandatory: true}}

		require.Equal(t, 2, fallback(state, options).(mockDecision).id)
	})
}
