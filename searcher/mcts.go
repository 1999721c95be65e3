package searcher

import (
	"context"
	"time"

	"cardsearch/game"

	"github.com/rs/zerolog/log"
)

// MCTS is the UCB1 tree search baseline. The tree spans the elementary
// decisions of the current player's turn; everything after the turn is a
// random playout to the cutoff.
type MCTS struct {
	settings
}

func NewMCTS(options ...Option) *MCTS {
	m := &MCTS{settings: defaultSettings()}
	for _, option := range options {
		option(&m.settings)
	}
	return m
}

func (m *MCTS) Name() string {
	return "mcts"
}

func (m *MCTS) Search(ctx context.Context, req Request) (Result, error) {
	if err := req.Budget.Validate(); err != nil {
		return Result{}, err
	}
	collector := collectorOf(req)
	root := req.State
	decomposer := NewDecomposer(m.ordering, req.Prior, m.maxLength)

	options := decomposer.Options(root)
	if len(options) == 0 {
		return Result{Action: game.Forced(root), Stats: NewWeightTable()}, nil
	}

	t := newTree(root, decomposer)
	stop := newDeadline(req.Budget, time.Now())
	player := root.Player()
	episodes := 0
	for req.Budget.IsTimed() || episodes < req.Budget.Iterations {
		if episodes > 0 && (stop.expired() || ctx.Err() != nil) {
			break
		}
		state := root.Copy()
		leaf, depth := t.selectThenExpand(state, m.exploration)
		if !t.nodes[leaf].ended {
			randomAction(state, decomposer, depth, req.Rand)
		}
		score := playout(state, player, m.cutoff, m.maxLength, m.evaluate, req.Rand, collector)
		t.backup(leaf, score)
		collector.AddEpisode()
		episodes++
	}

	action, _ := t.bestPath()
	if !action.Complete() {
		action = append(action, root.Terminator())
	}

	log.Debug().Int("episodes", episodes).Int("nodes", len(t.nodes)).Stringer("action", action).Msg("mcts search complete")
	return Result{
		Action:   action,
		Consumed: episodes,
		Stats:    t.stats(),
	}, nil
}

// stats exposes the visited decisions of the tree as a weight table, so that
// tree search members can be merged like LSI members.
func (t *tree) stats() *WeightTable {
	table := NewWeightTable()
	for _, n := range t.nodes[1:] {
		if n.visits > 0 {
			table.Add(n.decision.Canonical(), Stat{Value: n.rewards, Visits: int(n.visits)})
		}
	}
	return table
}
