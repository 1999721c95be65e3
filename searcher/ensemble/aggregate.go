package ensemble

import (
	"fmt"
	"strings"

	"cardsearch/game"
	"cardsearch/searcher"

	"golang.org/x/exp/rand"
)

// Aggregation combines the answers of the ensemble members.
type Aggregation int

const (
	// AggregateVote replays the members' actions, taking the most proposed
	// legal decision at every step
	AggregateVote Aggregation = iota
	// AggregateMerge merges the members' statistics and follows the best mean
	AggregateMerge
)

func (a Aggregation) String() string {
	switch a {
	case AggregateVote:
		return "vote"
	case AggregateMerge:
		return "merge"
	default:
		return "unknown"
	}
}

func ParseAggregation(name string) (Aggregation, error) {
	switch strings.ToLower(name) {
	case "vote", "":
		return AggregateVote, nil
	case "merge":
		return AggregateMerge, nil
	default:
		return 0, fmt.Errorf("unknown aggregation %q", name)
	}
}

// canonical lists one legal option per canonical signature
var canonical = searcher.NewDecomposer(searcher.OrderNone, nil, 0)

func legal(state game.State, sig game.Signature) (game.Decision, bool) {
	for _, option := range canonical.Options(state) {
		if option.Canonical() == sig {
			return option, true
		}
	}
	return nil, false
}

// step applies decision and reports whether the action is finished. The
// terminator is appended once the action reaches maxLength.
func step(state game.State, action game.CombinedAction, decision game.Decision, maxLength int) (game.CombinedAction, bool) {
	action = append(action, decision)
	if decision.IsTerminator() {
		return action, true
	}
	state.Apply(decision)
	if state.IsTerminal() || len(action) >= maxLength-1 {
		return append(action, state.Terminator()), true
	}
	return action, false
}

// vote replays the members' proposals on state. Each member proposes the
// next decision of its action that is still pending; members whose proposal is
// illegal abstain. Ties are broken uniformly at random.
func vote(state game.State, members []Member, maxLength int, rng *rand.Rand) game.CombinedAction {
	pending := make([]game.CombinedAction, len(members))
	for i, m := range members {
		pending[i] = append(game.CombinedAction(nil), m.Result.Action...)
	}

	var action game.CombinedAction
	for {
		counts := map[game.Signature]int{}
		var order []game.Signature
		for _, p := range pending {
			if len(p) == 0 {
				continue
			}
			sig := p[0].Canonical()
			if _, ok := legal(state, sig); !ok && !p[0].IsTerminator() {
				continue
			}
			if counts[sig] == 0 {
				order = append(order, sig)
			}
			counts[sig]++
		}

		if len(order) == 0 {
			return append(action, state.Terminator())
		}

		best := 0
		var tied []game.Signature
		for _, sig := range order {
			switch {
			case counts[sig] > best:
				best = counts[sig]
				tied = append(tied[:0], sig)
			case counts[sig] == best:
				tied = append(tied, sig)
			}
		}
		chosen := tied[0]
		if len(tied) > 1 {
			chosen = tied[rng.Intn(len(tied))]
		}

		decision, ok := legal(state, chosen)
		if !ok {
			decision = state.Terminator()
		}
		for i, p := range pending {
			for j, d := range p {
				if d.Canonical() == chosen {
					pending[i] = append(p[:j:j], p[j+1:]...)
					break
				}
			}
		}

		var done bool
		if action, done = step(state, action, decision, maxLength); done {
			return action
		}
	}
}

// merge follows the best mean of the merged member statistics. Options with
// no statistic are skipped; when none has one a legal option is picked
// uniformly at random.
func merge(state game.State, members []Member, maxLength int, rng *rand.Rand) game.CombinedAction {
	table := searcher.NewWeightTable()
	for _, m := range members {
		table.Merge(m.Result.Stats)
	}

	var action game.CombinedAction
	for {
		legalOptions := canonical.Options(state)
		if len(legalOptions) == 0 {
			return append(action, state.Terminator())
		}

		var best game.Decision
		bestMean := 0.0
		for _, option := range legalOptions {
			stat, ok := table.Get(option.Canonical())
			if !ok || stat.Visits == 0 {
				continue
			}
			if best == nil || stat.Mean() > bestMean {
				best = option
				bestMean = stat.Mean()
			}
		}
		if best == nil {
			best = legalOptions[rng.Intn(len(legalOptions))]
		}

		var done bool
		if action, done = step(state, action, best, maxLength); done {
			return action
		}
	}
}
