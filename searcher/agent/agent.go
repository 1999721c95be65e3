package agent

import (
	"context"

	"cardsearch/experiments/metrics"
	"cardsearch/game"
)

type Agent interface {
	// Decide returns the complete action for the player to move and the metrics
	// of the search behind it (if collected)
	Decide(ctx context.Context, state game.State) (game.CombinedAction, metrics.SearchMetric)
}
