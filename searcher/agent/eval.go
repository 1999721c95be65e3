package agent

import (
	"context"

	"cardsearch/experiments/metrics"
	"cardsearch/game"
	"cardsearch/searcher"
	"cardsearch/searcher/ensemble"

	"github.com/rs/zerolog/log"
)

type searchAgent struct {
	ensemble *ensemble.Ensemble
	budget   searcher.Budget
}

// NewSearchAgent returns an agent that spends budget on an ensemble search
// every turn.
func NewSearchAgent(e *ensemble.Ensemble, budget searcher.Budget) Agent {
	if err := budget.Validate(); err != nil {
		panic(err)
	}
	return searchAgent{ensemble: e, budget: budget}
}

func (a searchAgent) Decide(ctx context.Context, state game.State) (game.CombinedAction, metrics.SearchMetric) {
	result, err := a.ensemble.Decide(ctx, state, a.budget)
	if err != nil {
		log.Warn().Err(err).Int("turn", state.Turn()).Msg("search failed, ending the turn")
		return game.Forced(state), metrics.SearchMetric{}
	}
	return result.Action, result.Metric
}
