package experiments

import (
	"context"
	"fmt"

	"cardsearch/engine"
	"cardsearch/experiments/metrics"
	"cardsearch/game"
	"cardsearch/meta"
	"cardsearch/searcher/agent"
	"cardsearch/searcher/retain"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(r *runner)

type runner struct {
	root       string
	seed       uint64
	maxTurns   int
	store      *retain.Store
	prometheus bool
}

// WithRoot sets the directory experiment runs are written to.
func WithRoot(root string) Option {
	return func(r *runner) {
		if root != "" {
			r.root = root
		}
	}
}

// WithSeed fixes the deals of the games.
func WithSeed(seed uint64) Option {
	return func(r *runner) {
		r.seed = seed
	}
}

func WithMaxTurns(turns int) Option {
	return func(r *runner) {
		if turns > 0 {
			r.maxTurns = turns
		}
	}
}

// WithStore shares retained statistics between the agents that retain them.
func WithStore(store *retain.Store) Option {
	return func(r *runner) {
		r.store = store
	}
}

// WithPrometheus mirrors search metrics to the process wide prometheus metrics.
func WithPrometheus() Option {
	return func(r *runner) {
		r.prometheus = true
	}
}

func newRunner(options []Option) *runner {
	r := &runner{ // Default values
		root:     "experiments",
		seed:     1,
		maxTurns: meta.MAX_TURNS,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *runner) collector() metrics.Collector {
	if r.prometheus {
		return metrics.NewPrometheusCollector()
	}
	return metrics.NewCollector()
}

// deal starts game number i. Deck lists rotate so that every match up sees
// every pairing.
func (r *runner) deal(i int) *game.Duel {
	rules := game.NewStandardRules()
	decks := rules.Decks()
	pairing := [2]game.DeckList{decks[i%len(decks)], decks[(i/len(decks)+i+1)%len(decks)]}
	return game.NewDuel(rules, pairing, rand.New(rand.NewSource(r.seed+uint64(i))))
}

// Run plays games games for each match up and writes agent configs, game
// records and move records to a new run directory, which it returns. Agents
// swap seats every game.
func Run(ctx context.Context, name string, configs []metrics.AgentConfig, matchUps [][]metrics.AgentConfig, games int, options ...Option) (string, error) {
	r := newRunner(options)

	writer, err := metrics.NewWriter(r.root, name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteAgentConfigs(configs); err != nil {
		return "", fmt.Errorf("failed to store agent configs: %w", err)
	}
	log.Info().Msg("stored agent configs")

	// Run a number of games for each matchup
	count := 0
	gameRecords := []metrics.GameRecord{}
	moveRecords := []metrics.MoveRecord{}

	log.Info().Msgf("starting %s experiment...", name)

	for mi, matchUp := range matchUps {
		if len(matchUp) != 2 {
			return "", fmt.Errorf("match up %d has %d agents, need 2", mi+1, len(matchUp))
		}
		log.Info().Msgf("starting matchup %d of %d between agent%d and agent%d...", mi+1, len(matchUps), matchUp[0].ID, matchUp[1].ID)

		for i := 0; i < games; i++ {
			if ctx.Err() != nil {
				log.Info().Msg("experiment interrupted, storing finished games")
				break
			}
			config1, config2 := withSeed(matchUp[0], count), withSeed(matchUp[1], count)
			if i%2 == 1 {
				config1, config2 = config2, config1
			}

			result, err := r.runGame(ctx, count, config1, config2)
			if err != nil {
				return "", fmt.Errorf("failed to run game %d: %w", count+1, err)
			}
			count++
			gameRecords = append(gameRecords, metrics.GameRecord{
				ID:         count,
				Agent1:     config1.ID,
				Agent2:     config2.ID,
				GameMetric: result.Game,
			})
			for _, mm := range result.Moves {
				moveRecords = append(moveRecords, metrics.MoveRecord{
					Game:       count,
					MoveMetric: mm,
				})
			}

			log.Info().Msgf("completed matchup %d of %d game %d with winner: player %d", mi+1, len(matchUps), i+1, result.Winner)
		}
		log.Info().Msgf("completed matchup %d of %d", mi+1, len(matchUps))
	}

	log.Info().Msgf("completed %s experiment", name)

	if err := writer.WriteGameRecords(gameRecords); err != nil {
		return "", err
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteMoveRecords(moveRecords); err != nil {
		return "", err
	}
	log.Info().Msg("stored move records")

	return writer.Dir(), nil
}

// runGame executes a single game between two agents
func (r *runner) runGame(ctx context.Context, i int, config1, config2 metrics.AgentConfig) (engine.Result, error) {
	agents := make([]agent.Agent, 2)
	for p, config := range []metrics.AgentConfig{config1, config2} {
		a, err := NewAgent(config, r.store, r.collector())
		if err != nil {
			return engine.Result{}, err
		}
		agents[p] = a
	}

	e := engine.New(r.deal(i), agents...)
	e.MaxTurns = r.maxTurns
	return e.Run(ctx), nil
}
