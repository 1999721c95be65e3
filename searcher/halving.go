package searcher

import (
	"context"
	"errors"
	"math/bits"
	"slices"
	"time"

	"cardsearch/experiments/metrics"
	"cardsearch/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

var ErrNoCandidates = errors.New("no candidates to select from")

// SequentialHalving selects one of a set of candidate actions under a fixed
// playout budget by repeatedly evaluating the survivors and discarding the
// weaker half.
type SequentialHalving struct {
	Cutoff    int
	MaxLength int
	Evaluate  game.Evaluate
	// Deadline stops evaluation early, the zero value never does
	Deadline time.Time
	Metrics  metrics.Collector
}

type HalvingResult struct {
	Winner   game.CombinedAction
	Consumed int
	Rounds   int
	Sizes    []int // Survivors at the start of each round, then the final count
}

type arm struct {
	index  int // Position in the candidate set, breaks ties
	reward float64
	pulls  int
}

func (a arm) mean() float64 {
	if a.pulls == 0 {
		return 0
	}
	return a.reward / float64(a.pulls)
}

// Rounds returns the number of halving rounds needed for k candidates.
func Rounds(k int) int {
	if k <= 1 {
		return 1
	}
	return bits.Len(uint(k - 1)) // ceil(log2(k))
}

// Select evaluates candidates from root for the player to move. One candidate
// is returned immediately without playouts. Rounding means the playouts
// consumed may differ slightly from budget.
func (h *SequentialHalving) Select(ctx context.Context, root game.State, candidates []game.CombinedAction, budget int, rng *rand.Rand) (HalvingResult, error) {
	if len(candidates) == 0 {
		return HalvingResult{}, ErrNoCandidates
	}
	if len(candidates) == 1 {
		return HalvingResult{Winner: candidates[0], Sizes: []int{1}}, nil
	}
	collector := h.Metrics
	if collector == nil {
		collector = metrics.NewDummyCollector()
	}
	stop := deadline{at: h.Deadline}
	player := root.Player()

	survivors := make([]arm, len(candidates))
	for i := range survivors {
		survivors[i] = arm{index: i}
	}
	rounds := Rounds(len(candidates))
	result := HalvingResult{Sizes: []int{len(survivors)}}
	remaining := budget

	stopped := false
	for round := 0; len(survivors) > 1 && !stopped; round++ {
		remainingRounds := max(1, rounds-round)
		perArm := max(1, remaining/(len(survivors)*remainingRounds))

	evaluation:
		for i := range survivors {
			for j := 0; j < perArm; j++ {
				if stop.expired() || ctx.Err() != nil {
					stopped = true
					break evaluation
				}
				state := root.Copy()
				apply(state, candidates[survivors[i].index])
				survivors[i].reward += playout(state, player, h.Cutoff, h.MaxLength, h.Evaluate, rng, collector)
				survivors[i].pulls++
				collector.AddEvaluation()
				result.Consumed++
				remaining--
			}
		}

		rank(survivors)
		if stopped {
			break
		}
		survivors = survivors[:(len(survivors)+1)/2]
		result.Rounds++
		result.Sizes = append(result.Sizes, len(survivors))
	}

	if stopped {
		log.Debug().Int("rounds", result.Rounds).Int("survivors", len(survivors)).Msg("halving stopped before budget was spent")
	}
	collector.AddRounds(result.Rounds)
	result.Winner = candidates[survivors[0].index]
	return result, nil
}

// rank orders arms by descending mean, earlier candidates first on ties.
// Unevaluated arms rank after evaluated ones.
func rank(arms []arm) {
	slices.SortFunc(arms, func(a, b arm) int {
		if (a.pulls == 0) != (b.pulls == 0) {
			if a.pulls == 0 {
				return 1
			}
			return -1
		}
		if a.mean() > b.mean() {
			return -1
		}
		if a.mean() < b.mean() {
			return 1
		}
		return a.index - b.index
	})
}
