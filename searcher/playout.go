package searcher

import (
	"cardsearch/experiments/metrics"
	"cardsearch/game"

	"golang.org/x/exp/rand"
)

// playout continues state with uniformly random decisions until the game is
// over or cutoff further turns have started, then scores the result for
// player. state is consumed.
func playout(state game.State, player, cutoff, maxLength int, evaluate game.Evaluate, rng *rand.Rand, metrics metrics.Collector) float64 {
	end := state.Turn() + cutoff
	turn := state.Turn()
	length := 0
	// Rollout till game over or cutoff
	for !state.IsTerminal() && state.Turn() < end {
		options := state.LegalOptions()
		var decision game.Decision
		if len(options) == 0 || (maxLength > 0 && length >= maxLength-1) {
			decision = state.Terminator()
		} else {
			decision = options[rng.Intn(len(options))] // Random rollout policy
		}
		state.Apply(decision)
		length++
		if state.Turn() != turn {
			turn = state.Turn()
			length = 0
		}
	}

	if state.IsTerminal() { // Game over before cutoff
		metrics.AddFullPlayout()
	}
	return evaluate(state, player)
}

// randomAction completes the turn on state, choosing uniformly among the
// canonical options of every step, and returns the decisions played. depth is
// the number of decisions already played this turn.
func randomAction(state game.State, decomposer *Decomposer, depth int, rng *rand.Rand) game.CombinedAction {
	var action game.CombinedAction
	for {
		options := decomposer.Options(state)
		var decision game.Decision
		if len(options) == 0 || decomposer.capped(depth+len(action)) {
			decision = state.Terminator()
		} else {
			decision = options[rng.Intn(len(options))]
		}
		state.Apply(decision)
		action = append(action, decision)
		if decision.IsTerminator() {
			return action
		}
	}
}

// apply plays a complete action on state.
func apply(state game.State, action game.CombinedAction) {
	for _, decision := range action {
		state.Apply(decision)
	}
}
