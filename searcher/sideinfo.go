package searcher

import (
	"context"

	"cardsearch/experiments/metrics"
	"cardsearch/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// estimator runs the generation phase: it plays uniformly random reference
// actions and credits their playout scores to every decision they contain.
// Reference actions are never weighted by the estimates.
type estimator struct {
	decomposer *Decomposer
	cutoff     int
	maxLength  int
	flatLimit  int
	evaluate   game.Evaluate
	metrics    metrics.Collector
}

// estimate runs samples generation playouts from root, or until stop fires
// when samples is 0, and adds them to table. At least one sample always runs.
// Returns the number of samples taken.
func (e *estimator) estimate(ctx context.Context, root game.State, samples int, stop deadline, table *WeightTable, rng *rand.Rand) int {
	player := root.Player()

	var enumeration []game.CombinedAction
	if e.flatLimit > 0 {
		actions, truncated := e.decomposer.Expand(root, e.flatLimit)
		if truncated {
			log.Debug().Int("limit", e.flatLimit).Msg("turn too large for flat expansion, sampling step by step")
		} else {
			enumeration = actions
		}
	}

	done := 0
	for samples <= 0 || done < samples {
		if done > 0 && (stop.expired() || ctx.Err() != nil) {
			break
		}

		state := root.Copy()
		var action game.CombinedAction
		if enumeration != nil {
			action = enumeration[rng.Intn(len(enumeration))]
			apply(state, action)
		} else {
			action = randomAction(state, e.decomposer, 0, rng)
		}

		score := playout(state, player, e.cutoff, e.maxLength, e.evaluate, rng, e.metrics)
		table.Credit(action, score)
		e.metrics.AddGeneration()
		done++
	}
	return done
}
