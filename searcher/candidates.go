package searcher

import (
	"cardsearch/game"

	"golang.org/x/exp/rand"
)

// generator builds complete candidate actions by sampling decisions from the
// side information, step by step, keeping only legal ones.
type generator struct {
	decomposer *Decomposer
	maxRetries int
}

// candidate samples one complete action from root. A step that finds no legal
// sample within maxRetries draws falls back to a mandatory option or the
// terminator, so the result always ends with the terminator.
func (g *generator) candidate(root game.State, sampler *Sampler[game.Signature], rng *rand.Rand) game.CombinedAction {
	state := root.Copy()
	var action game.CombinedAction
	for {
		options := g.decomposer.Options(state)
		var decision game.Decision
		if len(options) == 0 || g.decomposer.capped(len(action)) {
			decision = state.Terminator()
		} else {
			for retry := 0; retry < g.maxRetries; retry++ {
				sig, err := sampler.Sample(rng)
				if err != nil {
					break
				}
				if option, ok := findOption(options, sig); ok {
					decision = option
					break
				}
			}
			if decision == nil {
				decision = fallback(state, options)
			}
		}

		state.Apply(decision)
		action = append(action, decision)
		if decision.IsTerminator() {
			return action
		}
	}
}

// generate draws count candidates, fewer if stop fires first, and keeps the
// distinct ones in the order they were first drawn.
func (g *generator) generate(root game.State, sampler *Sampler[game.Signature], count int, stop deadline, rng *rand.Rand) []game.CombinedAction {
	seen := make(map[game.Signature]bool)
	var candidates []game.CombinedAction
	for i := 0; i < count; i++ {
		if i > 0 && stop.expired() {
			break
		}
		action := g.candidate(root, sampler, rng)
		sig := action.Signature()
		if seen[sig] {
			continue
		}
		seen[sig] = true
		candidates = append(candidates, action)
	}
	return candidates
}
