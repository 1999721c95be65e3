package searcher

import (
	"context"

	"cardsearch/experiments/metrics"
	"cardsearch/game"

	"golang.org/x/exp/rand"
)

// Defaults shared by the searchers.
const (
	DefaultCutoff               = 2 // Turns simulated past the searched turn
	DefaultMaxRetries           = 16
	DefaultMaxTurnLength        = 32
	DefaultGenerationFraction   = 0.25
	DefaultEvaluationCorrection = 1.0
	DefaultExploration          = 2.0 // C squared of UCB1
)

// Request is one search over a fully determined world.
type Request struct {
	State  game.State // Not modified
	Budget Budget
	Rand   *rand.Rand
	// Prior holds retained statistics from earlier turns, read only, may be nil
	Prior   *WeightTable
	Metrics metrics.Collector // May be nil
}

type Result struct {
	Action game.CombinedAction
	// Consumed counts playouts
	Consumed int
	// Stats holds the statistics gathered by this search only
	Stats      *WeightTable
	Candidates int
	Rounds     int
}

// Searcher finds the action to play for the player to move.
type Searcher interface {
	Search(ctx context.Context, req Request) (Result, error)
	Name() string
}

type Option func(s *settings)

type settings struct {
	cutoff               int
	maxRetries           int
	maxLength            int
	ordering             Ordering
	flatLimit            int
	evaluate             game.Evaluate
	generationFraction   float64
	evaluationCorrection float64
	exploration          float64
}

func defaultSettings() settings {
	return settings{
		cutoff:               DefaultCutoff,
		maxRetries:           DefaultMaxRetries,
		maxLength:            DefaultMaxTurnLength,
		ordering:             OrderNone,
		evaluate:             game.EvaluateBoard,
		generationFraction:   DefaultGenerationFraction,
		evaluationCorrection: DefaultEvaluationCorrection,
		exploration:          DefaultExploration,
	}
}

func WithCutoff(turns int) Option {
	return func(s *settings) {
		if turns >= 0 {
			s.cutoff = turns
		}
	}
}

func WithMaxRetries(retries int) Option {
	return func(s *settings) {
		if retries > 0 {
			s.maxRetries = retries
		}
	}
}

func WithMaxTurnLength(length int) Option {
	return func(s *settings) {
		if length > 0 {
			s.maxLength = length
		}
	}
}

func WithOrdering(ordering Ordering) Option {
	return func(s *settings) {
		s.ordering = ordering
	}
}

// WithFlatExpansion samples uniform reference actions from the full turn
// enumeration instead of step by step, as long as the turn has at most limit
// completions.
func WithFlatExpansion(limit int) Option {
	return func(s *settings) {
		if limit > 0 {
			s.flatLimit = limit
		}
	}
}

func WithEvaluationFn(evaluate game.Evaluate) Option {
	return func(s *settings) {
		if evaluate != nil {
			s.evaluate = evaluate
		}
	}
}

func WithGenerationFraction(fraction float64) Option {
	return func(s *settings) {
		if fraction > 0 && fraction < 1 {
			s.generationFraction = fraction
		}
	}
}

func WithEvaluationCorrection(correction float64) Option {
	return func(s *settings) {
		if correction > 0 {
			s.evaluationCorrection = correction
		}
	}
}

func WithExploration(cSquared float64) Option {
	return func(s *settings) {
		if cSquared > 0 {
			s.exploration = cSquared
		}
	}
}

func collectorOf(req Request) metrics.Collector {
	if req.Metrics == nil {
		return metrics.NewDummyCollector()
	}
	return req.Metrics
}
