// Package config loads the settings of the command line tool.
//
// Settings are layered: defaults, then a YAML (or JSON) file, then
// environment variables prefixed with CARDSEARCH_.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"cardsearch/experiments/metrics"
	"cardsearch/game"
	"cardsearch/meta"
	"cardsearch/searcher"
	"cardsearch/searcher/ensemble"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log        LogConfig             `json:"log" yaml:"log"`
	Game       GameConfig            `json:"game" yaml:"game"`
	Experiment ExperimentConfig      `json:"experiment" yaml:"experiment"`
	Store      StoreConfig           `json:"store" yaml:"store"`
	Metrics    MetricsConfig         `json:"metrics" yaml:"metrics"`
	Agents     []metrics.AgentConfig `json:"agents" yaml:"agents"`
}

type LogConfig struct {
	Level   string `json:"level" yaml:"level"`
	Console bool   `json:"console" yaml:"console"` // Human readable output instead of JSON
}

type GameConfig struct {
	MaxTurns int    `json:"max_turns" yaml:"max_turns"`
	Seed     uint64 `json:"seed" yaml:"seed"`
}

type ExperimentConfig struct {
	Name  string `json:"name" yaml:"name"`
	Root  string `json:"root" yaml:"root"`
	Games int    `json:"games" yaml:"games"`
	// MatchUps pairs agent IDs; empty pairs every agent with every other
	MatchUps [][2]int `json:"match_ups" yaml:"match_ups"`
}

type StoreConfig struct {
	// Dir holds the badger database; empty keeps retained statistics in memory
	Dir   string  `json:"dir" yaml:"dir"`
	Decay float64 `json:"decay" yaml:"decay"`
}

type MetricsConfig struct {
	// Addr serves prometheus metrics when set, e.g. ":2112"
	Addr string `json:"addr" yaml:"addr"`
}

// DefaultAgent is an LSI ensemble with default search settings.
func DefaultAgent(id int) metrics.AgentConfig {
	return metrics.AgentConfig{
		ID:                 id,
		Searcher:           "lsi",
		Members:            meta.MEMBERS,
		Workers:            meta.WORKERS,
		Iterations:         meta.ITERATIONS,
		Cutoff:             searcher.DefaultCutoff,
		GenerationFraction: searcher.DefaultGenerationFraction,
		Correction:         searcher.DefaultEvaluationCorrection,
		Exploration:        searcher.DefaultExploration,
		MaxRetries:         searcher.DefaultMaxRetries,
		MaxTurnLength:      searcher.DefaultMaxTurnLength,
		Ordering:           searcher.OrderNone.String(),
		Aggregation:        ensemble.AggregateVote.String(),
		Evaluator:          "board",
	}
}

// withDefaults fills the search settings a config file left out.
func withDefaults(agent metrics.AgentConfig) metrics.AgentConfig {
	if agent.Searcher == "" {
		agent.Searcher = "lsi"
	}
	if agent.Searcher == "random" {
		return agent
	}
	defaults := DefaultAgent(agent.ID)
	if agent.Members == 0 {
		agent.Members = defaults.Members
	}
	if agent.Workers == 0 {
		agent.Workers = defaults.Workers
	}
	if agent.Iterations == 0 && agent.Duration == 0 {
		agent.Iterations = defaults.Iterations
	}
	if agent.Cutoff == 0 {
		agent.Cutoff = defaults.Cutoff
	}
	if agent.GenerationFraction == 0 {
		agent.GenerationFraction = defaults.GenerationFraction
	}
	if agent.Correction == 0 {
		agent.Correction = defaults.Correction
	}
	if agent.Exploration == 0 {
		agent.Exploration = defaults.Exploration
	}
	if agent.MaxRetries == 0 {
		agent.MaxRetries = defaults.MaxRetries
	}
	if agent.MaxTurnLength == 0 {
		agent.MaxTurnLength = defaults.MaxTurnLength
	}
	if agent.Ordering == "" {
		agent.Ordering = defaults.Ordering
	}
	if agent.Aggregation == "" {
		agent.Aggregation = defaults.Aggregation
	}
	if agent.Evaluator == "" {
		agent.Evaluator = defaults.Evaluator
	}
	return agent
}

func Default() Config {
	random := metrics.AgentConfig{ID: 2, Searcher: "random"}
	return Config{
		Log:        LogConfig{Level: "info", Console: true},
		Game:       GameConfig{MaxTurns: meta.MAX_TURNS},
		Experiment: ExperimentConfig{Name: "strength", Root: "experiments", Games: meta.GAMES},
		Store:      StoreConfig{Decay: meta.DECAY},
		Agents:     []metrics.AgentConfig{DefaultAgent(1), random},
	}
}

// Load merges the file at path (optional) and the environment into the
// defaults and validates the result.
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		if err := loadFile(path, &config); err != nil {
			return config, fmt.Errorf("load config file: %w", err)
		}
	}

	for i := range config.Agents {
		config.Agents[i] = withDefaults(config.Agents[i])
	}
	if err := loadEnv(&config); err != nil {
		return config, fmt.Errorf("load config environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func loadFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if jsonErr := json.Unmarshal(data, config); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadEnv(config *Config) error {
	if v := os.Getenv("CARDSEARCH_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if err := envBool("CARDSEARCH_LOG_CONSOLE", &config.Log.Console); err != nil {
		return err
	}
	if err := envInt("CARDSEARCH_MAX_TURNS", &config.Game.MaxTurns); err != nil {
		return err
	}
	if v := os.Getenv("CARDSEARCH_SEED"); v != "" {
		u, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("CARDSEARCH_SEED: %w", err)
		}
		config.Game.Seed = u
	}
	if err := envInt("CARDSEARCH_GAMES", &config.Experiment.Games); err != nil {
		return err
	}
	if v := os.Getenv("CARDSEARCH_STORE_DIR"); v != "" {
		config.Store.Dir = v
	}
	if v := os.Getenv("CARDSEARCH_METRICS_ADDR"); v != "" {
		config.Metrics.Addr = v
	}

	// Search settings apply to every agent
	for i := range config.Agents {
		agent := &config.Agents[i]
		if err := envInt("CARDSEARCH_MEMBERS", &agent.Members); err != nil {
			return err
		}
		if err := envInt("CARDSEARCH_WORKERS", &agent.Workers); err != nil {
			return err
		}
		if err := envInt("CARDSEARCH_ITERATIONS", &agent.Iterations); err != nil {
			return err
		}
		if v := os.Getenv("CARDSEARCH_DURATION"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("CARDSEARCH_DURATION: %w", err)
			}
			agent.Duration = d
			agent.Iterations = 0
		}
	}
	return nil
}

func envInt(name string, target *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*target = n
	return nil
}

func envBool(name string, target *bool) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*target = b
	return nil
}

func (c Config) Validate() error {
	if c.Game.MaxTurns < 1 {
		return errors.New("max_turns must be >= 1")
	}
	if c.Experiment.Games < 1 {
		return errors.New("games must be >= 1")
	}
	if c.Store.Decay <= 0 || c.Store.Decay > 1 {
		return errors.New("decay must be in (0, 1]")
	}
	if len(c.Agents) < 1 {
		return errors.New("at least one agent is required")
	}

	ids := make(map[int]bool, len(c.Agents))
	for _, agent := range c.Agents {
		if ids[agent.ID] {
			return fmt.Errorf("duplicate agent id %d", agent.ID)
		}
		ids[agent.ID] = true
		if err := validateAgent(agent); err != nil {
			return fmt.Errorf("agent %d: %w", agent.ID, err)
		}
	}
	for _, pair := range c.Experiment.MatchUps {
		for _, id := range pair {
			if !ids[id] {
				return fmt.Errorf("match up references unknown agent %d", id)
			}
		}
	}
	return nil
}

func validateAgent(agent metrics.AgentConfig) error {
	switch agent.Searcher {
	case "random":
		return nil
	case "lsi", "mcts":
	default:
		return fmt.Errorf("unknown searcher %q", agent.Searcher)
	}
	if agent.Members < 1 {
		return errors.New("members must be >= 1")
	}
	if agent.Workers < 1 {
		return errors.New("workers must be >= 1")
	}
	if agent.Iterations < 1 && agent.Duration <= 0 {
		return errors.New("iterations or duration must be set")
	}
	if agent.Iterations > 0 && agent.Iterations < agent.Members {
		return errors.New("iterations must be >= members")
	}
	if agent.Cutoff < 0 {
		return errors.New("cutoff must be >= 0")
	}
	if agent.GenerationFraction <= 0 || agent.GenerationFraction >= 1 {
		return errors.New("generation_fraction must be in (0, 1)")
	}
	if agent.Correction <= 0 {
		return errors.New("evaluation_correction must be > 0")
	}
	if _, err := searcher.ParseOrdering(agent.Ordering); err != nil {
		return err
	}
	if _, err := ensemble.ParseAggregation(agent.Aggregation); err != nil {
		return err
	}
	if _, err := game.LookupEvaluator(agent.Evaluator); err != nil {
		return err
	}
	return nil
}

// Agent returns the agent with the given ID.
func (c Config) Agent(id int) (metrics.AgentConfig, bool) {
	for _, agent := range c.Agents {
		if agent.ID == id {
			return agent, true
		}
	}
	return metrics.AgentConfig{}, false
}

// MatchUps resolves the configured match ups.
func (c Config) MatchUps() [][]metrics.AgentConfig {
	var matchUps [][]metrics.AgentConfig
	if len(c.Experiment.MatchUps) == 0 {
		for i := range c.Agents {
			for j := i + 1; j < len(c.Agents); j++ {
				matchUps = append(matchUps, []metrics.AgentConfig{c.Agents[i], c.Agents[j]})
			}
		}
		return matchUps
	}
	for _, pair := range c.Experiment.MatchUps {
		a, _ := c.Agent(pair[0])
		b, _ := c.Agent(pair[1])
		matchUps = append(matchUps, []metrics.AgentConfig{a, b})
	}
	return matchUps
}
