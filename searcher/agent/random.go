package agent

import (
	"context"

	"cardsearch/experiments/metrics"
	"cardsearch/game"
	"cardsearch/searcher"

	"golang.org/x/exp/rand"
)

type randomAgent struct {
	rng *rand.Rand
}

// NewRandomAgent returns an agent that plays uniformly random legal decisions
// until it picks the terminator.
func NewRandomAgent(seed uint64) Agent {
	return &randomAgent{rng: rand.New(rand.NewSource(seed))}
}

func (a *randomAgent) Decide(ctx context.Context, state game.State) (game.CombinedAction, metrics.SearchMetric) {
	s := state.Copy()
	var action game.CombinedAction
	for len(action) < searcher.DefaultMaxTurnLength-1 {
		options := s.LegalOptions()
		if len(options) == 0 {
			break
		}
		decision := options[a.rng.Intn(len(options))]
		action = append(action, decision)
		if decision.IsTerminator() {
			return action, metrics.SearchMetric{Searcher: "random"}
		}
		s.Apply(decision)
		if s.IsTerminal() {
			break
		}
	}
	return append(action, s.Terminator()), metrics.SearchMetric{Searcher: "random"}
}
