package searcher

import (
	"context"
	"fmt"
	"math"
	"time"

	"cardsearch/game"

	"github.com/rs/zerolog/log"
)

// LSI is the linear side information search: a generation phase estimates the
// value of every elementary decision from random reference actions, candidate
// actions are sampled from those estimates, and sequential halving picks the
// winner among them. A single search runs on one goroutine.
type LSI struct {
	settings
}

func NewLSI(options ...Option) *LSI {
	l := &LSI{settings: defaultSettings()}
	for _, option := range options {
		option(&l.settings)
	}
	return l
}

func (l *LSI) Name() string {
	return "lsi"
}

func (l *LSI) Search(ctx context.Context, req Request) (Result, error) {
	if err := req.Budget.Validate(); err != nil {
		return Result{}, err
	}
	start := time.Now()
	collector := collectorOf(req)
	root := req.State
	decomposer := NewDecomposer(l.ordering, req.Prior, l.maxLength)
	stats := NewWeightTable()

	options := decomposer.Options(root)
	if len(options) == 0 {
		return Result{Action: game.Forced(root), Stats: stats}, nil
	}
	if len(options) == 1 && options[0].IsTerminator() {
		return Result{Action: game.CombinedAction{options[0]}, Stats: stats}, nil
	}

	// Generation
	var generations, evaluations int
	var generationStop deadline
	overall := newDeadline(req.Budget, start)
	if req.Budget.IsTimed() {
		share := time.Duration(float64(req.Budget.Duration) * l.generationFraction)
		generationStop = deadline{at: start.Add(share)}
	} else {
		generations, evaluations = req.Budget.Split(l.generationFraction)
	}
	e := estimator{
		decomposer: decomposer,
		cutoff:     l.cutoff,
		maxLength:  l.maxLength,
		flatLimit:  l.flatLimit,
		evaluate:   l.evaluate,
		metrics:    collector,
	}
	generated := e.estimate(ctx, root, generations, generationStop, stats, req.Rand)
	if req.Budget.IsTimed() {
		evaluations = estimateEvaluations(generated, time.Since(start), req.Budget.Duration)
	}

	// Sampling
	estimates := stats.Clone()
	estimates.Merge(req.Prior)
	sampler, err := estimates.Sampler()
	if err != nil {
		return Result{}, fmt.Errorf("failed to sample candidates: %w", err)
	}
	g := generator{decomposer: decomposer, maxRetries: l.maxRetries}
	candidates := g.generate(root, sampler, evaluations, overall, req.Rand)
	collector.AddCandidates(len(candidates))

	// Evaluation
	h := SequentialHalving{
		Cutoff:    l.cutoff,
		MaxLength: l.maxLength,
		Evaluate:  l.evaluate,
		Deadline:  overall.at,
		Metrics:   collector,
	}
	budget := max(1, int(math.Floor(float64(evaluations)*l.evaluationCorrection)))
	selected, err := h.Select(ctx, root, candidates, budget, req.Rand)
	if err != nil {
		return Result{}, fmt.Errorf("failed to evaluate candidates: %w", err)
	}

	log.Debug().
		Int("generations", generated).
		Int("candidates", len(candidates)).
		Int("evaluations", selected.Consumed).
		Int("rounds", selected.Rounds).
		Stringer("action", selected.Winner).
		Msg("lsi search complete")

	return Result{
		Action:     selected.Winner,
		Consumed:   generated + selected.Consumed,
		Stats:      stats,
		Candidates: len(candidates),
		Rounds:     selected.Rounds,
	}, nil
}

// estimateEvaluations extrapolates the generation throughput to the part of a
// timed budget that is left.
func estimateEvaluations(generated int, elapsed, total time.Duration) int {
	left := total - elapsed
	if elapsed <= 0 || left <= 0 {
		return 1
	}
	return max(1, int(float64(generated)*float64(left)/float64(elapsed)))
}
