package searcher

import (
	"cardsearch/game"
)

// Decomposer breaks a turn into elementary decisions. Options exposes one step
// at a time (hierarchical expansion); Expand enumerates whole turns (flat
// expansion), which is only feasible for small turns.
type Decomposer struct {
	Ordering Ordering
	// Prior feeds the entropy orderings, may be nil
	Prior *WeightTable
	// MaxLength caps the number of decisions in one turn, 0 for no cap
	MaxLength int
}

func NewDecomposer(ordering Ordering, prior *WeightTable, maxLength int) *Decomposer {
	return &Decomposer{
		Ordering:  ordering,
		Prior:     prior,
		MaxLength: maxLength,
	}
}

// Options returns the legal options of the next decision, one representative
// per canonical signature, in policy order. No options is a normal terminal
// condition; callers then play the terminator.
func (d *Decomposer) Options(state game.State) []game.Decision {
	options := canonicalize(state.LegalOptions())
	d.Ordering.order(options, d.Prior)
	return options
}

// canonicalize keeps the first option of every canonical signature.
func canonicalize(options []game.Decision) []game.Decision {
	seen := make(map[game.Signature]bool, len(options))
	canonical := make([]game.Decision, 0, len(options))
	for _, option := range options {
		sig := option.Canonical()
		if seen[sig] {
			continue
		}
		seen[sig] = true
		canonical = append(canonical, option)
	}
	return canonical
}

// capped reports whether an action of the given length must be ended now.
func (d *Decomposer) capped(length int) bool {
	return d.MaxLength > 0 && length >= d.MaxLength-1
}

// Expand enumerates every complete action of the current turn. It stops and
// reports truncated once more than limit actions would be produced.
func (d *Decomposer) Expand(state game.State, limit int) ([]game.CombinedAction, bool) {
	var actions []game.CombinedAction
	truncated := false

	var expand func(state game.State, prefix game.CombinedAction)
	expand = func(state game.State, prefix game.CombinedAction) {
		if truncated {
			return
		}
		options := d.Options(state)
		if len(options) == 0 || d.capped(len(prefix)) {
			if limit > 0 && len(actions) >= limit {
				truncated = true
				return
			}
			actions = append(actions, extend(prefix, state.Terminator()))
			return
		}
		for _, option := range options {
			if option.IsTerminator() {
				if limit > 0 && len(actions) >= limit {
					truncated = true
					return
				}
				actions = append(actions, extend(prefix, option))
				continue
			}
			next := state.Copy()
			next.Apply(option)
			expand(next, extend(prefix, option))
			if truncated {
				return
			}
		}
	}
	expand(state, nil)

	return actions, truncated
}

// extend appends to a copy so sibling branches never share a backing array.
func extend(prefix game.CombinedAction, decision game.Decision) game.CombinedAction {
	action := make(game.CombinedAction, len(prefix), len(prefix)+1)
	copy(action, prefix)
	return append(action, decision)
}

// findOption returns the option whose canonical signature is sig.
func findOption(options []game.Decision, sig game.Signature) (game.Decision, bool) {
	for _, option := range options {
		if option.Canonical() == sig {
			return option, true
		}
	}
	return nil, false
}

// fallback is the guaranteed legal decision used when sampling cannot make
// progress: a mandatory option if there is one, the terminator otherwise.
func fallback(state game.State, options []game.Decision) game.Decision {
	for _, option := range options {
		if option.Category() == game.CategoryMandatory {
			return option
		}
	}
	return state.Terminator()
}
