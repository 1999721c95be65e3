package main

import (
	"fmt"
	"strconv"
	"strings"

	"cardsearch/engine"
	"cardsearch/experiments"
	"cardsearch/experiments/metrics"
	"cardsearch/game"
	"cardsearch/searcher/agent"
	"cardsearch/searcher/ensemble"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
)

var (
	playAgents      string
	experimentGames int
	positions       int
	depth           int

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play one game between two configured agents",
		RunE:  runPlay,
	}

	experimentCmd = &cobra.Command{
		Use:   "experiment",
		Short: "Play every configured match up and write the records as CSV",
		RunE:  runExperiment,
	}

	throughputCmd = &cobra.Command{
		Use:   "throughput",
		Short: "Measure the playouts per second of every configured agent",
		RunE:  runThroughput,
	}
)

func init() {
	playCmd.Flags().StringVar(&playAgents, "agents", "", "IDs of the two agents, e.g. 1,2 (default: the first two)")
	experimentCmd.Flags().IntVarP(&experimentGames, "games", "n", 0, "games per match up (overrides the config)")
	throughputCmd.Flags().IntVar(&positions, "positions", 10, "number of positions searched per agent")
	throughputCmd.Flags().IntVar(&depth, "depth", 6, "random turns played to reach each position")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	configs, err := selectAgents(playAgents)
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	prometheus := serveMetrics(ctx)

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = ensemble.NewSeed()
	}
	agents := make([]agent.Agent, 2)
	for i, config := range configs {
		collector := metrics.NewCollector()
		if prometheus {
			collector = metrics.NewPrometheusCollector()
		}
		if agents[i], err = experiments.NewAgent(config, store.Store, collector); err != nil {
			return err
		}
	}

	rules := game.NewStandardRules()
	decks := rules.Decks()
	rng := rand.New(rand.NewSource(seed))
	state := game.NewDuel(rules, [2]game.DeckList{decks[rng.Intn(len(decks))], decks[rng.Intn(len(decks))]}, rng)

	e := engine.New(state, agents...)
	e.MaxTurns = cfg.Game.MaxTurns
	result := e.Run(ctx)

	log.Info().
		Uint64("seed", seed).
		Int("winner", result.Winner).
		Int("turns", result.Game.TotalTurns).
		Dur("duration", result.Game.Duration).
		Msg("game over")
	return store.Save()
}

func runExperiment(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	games := cfg.Experiment.Games
	if experimentGames > 0 {
		games = experimentGames
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	options := []experiments.Option{
		experiments.WithRoot(cfg.Experiment.Root),
		experiments.WithMaxTurns(cfg.Game.MaxTurns),
		experiments.WithStore(store.Store),
	}
	if cfg.Game.Seed != 0 {
		options = append(options, experiments.WithSeed(cfg.Game.Seed))
	}
	if serveMetrics(ctx) {
		options = append(options, experiments.WithPrometheus())
	}

	dir, err := experiments.Run(ctx, cfg.Experiment.Name, cfg.Agents, cfg.MatchUps(), games, options...)
	if err != nil {
		return err
	}
	log.Info().Msgf("experiment written to %s", dir)
	return store.Save()
}

func runThroughput(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var searchers []metrics.AgentConfig
	for _, config := range cfg.Agents {
		if config.Searcher != "random" {
			searchers = append(searchers, config)
		}
	}
	options := []experiments.Option{experiments.WithRoot(cfg.Experiment.Root), experiments.WithStore(store.Store)}
	if serveMetrics(ctx) {
		options = append(options, experiments.WithPrometheus())
	}

	dir, err := experiments.Throughput(ctx, searchers, positions, depth, options...)
	if err != nil {
		return err
	}
	log.Info().Msgf("throughput written to %s", dir)
	return store.Save()
}

// selectAgents parses "1,2" into the configs of the two agents.
func selectAgents(ids string) ([]metrics.AgentConfig, error) {
	if ids == "" {
		if len(cfg.Agents) < 2 {
			return nil, fmt.Errorf("need two agents, %d configured", len(cfg.Agents))
		}
		return cfg.Agents[:2], nil
	}
	parts := strings.Split(ids, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("need two agent IDs, got %q", ids)
	}
	configs := make([]metrics.AgentConfig, 2)
	for i, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid agent ID %q: %w", part, err)
		}
		config, ok := cfg.Agent(id)
		if !ok {
			return nil, fmt.Errorf("unknown agent %d", id)
		}
		configs[i] = config
	}
	return configs, nil
}
