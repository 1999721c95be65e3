package experiments

import (
	"fmt"

	"cardsearch/experiments/metrics"
	"cardsearch/game"
	"cardsearch/searcher"
	"cardsearch/searcher/agent"
	"cardsearch/searcher/ensemble"
	"cardsearch/searcher/retain"
)

// FlatLimit is the number of turn completions up to which flat agents
// enumerate the turn.
const FlatLimit = 512

// NewAgent builds the agent described by config. The store is only used when
// the config retains statistics.
func NewAgent(config metrics.AgentConfig, store *retain.Store, collector metrics.Collector) (agent.Agent, error) {
	if config.Searcher == "random" {
		seed := config.Seed
		if seed == 0 {
			seed = ensemble.NewSeed()
		}
		return agent.NewRandomAgent(seed), nil
	}

	s, err := NewSearcher(config)
	if err != nil {
		return nil, err
	}
	budget, err := budgetOf(config)
	if err != nil {
		return nil, err
	}
	aggregation, err := ensemble.ParseAggregation(config.Aggregation)
	if err != nil {
		return nil, err
	}

	options := []ensemble.Option{
		ensemble.WithSize(config.Members),
		ensemble.WithWorkers(config.Workers),
		ensemble.WithAggregation(aggregation),
		ensemble.WithPerfectInformation(config.PerfectInformation),
		ensemble.WithSeed(config.Seed),
		ensemble.WithMaxTurnLength(config.MaxTurnLength),
	}
	if config.Retain {
		if store == nil {
			return nil, fmt.Errorf("agent %d retains statistics but no store is configured", config.ID)
		}
		options = append(options, ensemble.WithStore(store))
	}
	if collector != nil {
		options = append(options, ensemble.WithMetrics(collector))
	}

	return agent.NewSearchAgent(ensemble.New(s, options...), budget), nil
}

// NewSearcher builds the per world searcher of config.
func NewSearcher(config metrics.AgentConfig) (searcher.Searcher, error) {
	options := []searcher.Option{}

	if config.Cutoff > 0 {
		options = append(options, searcher.WithCutoff(config.Cutoff))
	}
	if config.GenerationFraction > 0 {
		options = append(options, searcher.WithGenerationFraction(config.GenerationFraction))
	}
	if config.Correction > 0 {
		options = append(options, searcher.WithEvaluationCorrection(config.Correction))
	}
	if config.Exploration > 0 {
		options = append(options, searcher.WithExploration(config.Exploration))
	}
	if config.MaxRetries > 0 {
		options = append(options, searcher.WithMaxRetries(config.MaxRetries))
	}
	if config.MaxTurnLength > 0 {
		options = append(options, searcher.WithMaxTurnLength(config.MaxTurnLength))
	}
	if config.Flat {
		options = append(options, searcher.WithFlatExpansion(FlatLimit))
	}
	if config.Ordering != "" {
		ordering, err := searcher.ParseOrdering(config.Ordering)
		if err != nil {
			return nil, err
		}
		options = append(options, searcher.WithOrdering(ordering))
	}
	if config.Evaluator != "" {
		evaluate, err := game.LookupEvaluator(config.Evaluator)
		if err != nil {
			return nil, err
		}
		options = append(options, searcher.WithEvaluationFn(evaluate))
	}

	switch config.Searcher {
	case "lsi", "":
		return searcher.NewLSI(options...), nil
	case "mcts":
		return searcher.NewMCTS(options...), nil
	default:
		return nil, fmt.Errorf("unknown searcher %q", config.Searcher)
	}
}

func budgetOf(config metrics.AgentConfig) (searcher.Budget, error) {
	var budget searcher.Budget
	if config.Iterations > 0 {
		budget = searcher.Iterations(config.Iterations)
	} else {
		budget = searcher.Duration(config.Duration)
	}
	if err := budget.Validate(); err != nil {
		return budget, fmt.Errorf("agent %d: %w", config.ID, err)
	}
	return budget, nil
}

// withSeed returns config with a seed derived for one game, so that games of
// a match up differ but repeat across runs.
func withSeed(config metrics.AgentConfig, game int) metrics.AgentConfig {
	if config.Seed != 0 {
		config.Seed += uint64(game) * 0x9e3779b97f4a7c15
	}
	return config
}
