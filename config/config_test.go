package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("using defaults without a file", func(t *testing.T) {
		got, err := Load("")

		require.NoError(t, err)
		require.Equal(t, Default(), got)
	})

	t.Run("reading a yaml file", func(t *testing.T) {
		path := writeFile(t, "config.yaml", `
game:
  max_turns: 50
  seed: 12
experiment:
  name: ordering
  games: 4
  match_ups: [[1, 2]]
agents:
  - id: 1
    ordering: entropy-desc
    members: 8
    duration: 50ms
  - id: 2
    searcher: mcts
    aggregation: merge
    retain: true
store:
  dir: /tmp/stats
  decay: 0.5
`)

		got, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, 50, got.Game.MaxTurns)
		require.Equal(t, uint64(12), got.Game.Seed)
		require.Equal(t, "ordering", got.Experiment.Name)
		require.Equal(t, "info", got.Log.Level, "Missing sections should keep their defaults")
		require.Len(t, got.Agents, 2)

		lsi := got.Agents[0]
		require.Equal(t, "lsi", lsi.Searcher, "Searcher should default to lsi")
		require.Equal(t, "entropy-desc", lsi.Ordering)
		require.Equal(t, 8, lsi.Members)
		require.Equal(t, 50*time.Millisecond, lsi.Duration)
		require.Zero(t, lsi.Iterations, "A duration should not get a default iteration budget")

		mcts := got.Agents[1]
		require.Equal(t, DefaultAgent(2).Iterations, mcts.Iterations)
		require.Equal(t, "merge", mcts.Aggregation)
		require.True(t, mcts.Retain)

		matchUps := got.MatchUps()
		require.Len(t, matchUps, 1)
		require.Equal(t, 1, matchUps[0][0].ID)
		require.Equal(t, 2, matchUps[0][1].ID)
	})

	t.Run("reading a json file", func(t *testing.T) {
		path := writeFile(t, "config.json", `{"game": {"max_turns": 20}, "experiment": {"games": 2}}`)

		got, err := Load(path)

		require.NoError(t, err)
		require.Equal(t, 20, got.Game.MaxTurns)
		require.Equal(t, 2, got.Experiment.Games)
	})

	t.Run("overriding from the environment", func(t *testing.T) {
		t.Setenv("CARDSEARCH_GAMES", "3")
		t.Setenv("CARDSEARCH_MEMBERS", "2")
		t.Setenv("CARDSEARCH_DURATION", "20ms")
		t.Setenv("CARDSEARCH_LOG_LEVEL", "debug")

		got, err := Load("")

		require.NoError(t, err)
		require.Equal(t, 3, got.Experiment.Games)
		require.Equal(t, "debug", got.Log.Level)
		require.Equal(t, 2, got.Agents[0].Members)
		require.Equal(t, 20*time.Millisecond, got.Agents[0].Duration)
		require.Zero(t, got.Agents[0].Iterations)
	})

	t.Run("failing on a missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.Error(t, err)
	})

	t.Run("failing on an unparsable file", func(t *testing.T) {
		path := writeFile(t, "broken.yaml", "game: [unclosed")

		_, err := Load(path)

		require.Error(t, err)
	})

	t.Run("failing on malformed environment values", func(t *testing.T) {
		for name, value := range map[string]string{
			"CARDSEARCH_ITERATIONS":  "abc",
			"CARDSEARCH_SEED":        "-1",
			"CARDSEARCH_LOG_CONSOLE": "maybe",
			"CARDSEARCH_DURATION":    "soon",
		} {
			t.Run(name, func(t *testing.T) {
				t.Setenv(name, value)

				_, err := Load("")

				require.Error(t, err, "%s=%s should be rejected", name, value)
				require.ErrorContains(t, err, name)
			})
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"no turns", func(c *Config) { c.Game.MaxTurns = 0 }},
		{"no games", func(c *Config) { c.Experiment.Games = 0 }},
		{"decay above one", func(c *Config) { c.Store.Decay = 1.5 }},
		{"no agents", func(c *Config) { c.Agents = nil }},
		{"duplicate ids", func(c *Config) { c.Agents[1].ID = 1 }},
		{"unknown searcher", func(c *Config) { c.Agents[0].Searcher = "minimax" }},
		{"no members", func(c *Config) { c.Agents[0].Members = 0 }},
		{"no budget", func(c *Config) { c.Agents[0].Iterations = 0 }},
		{"budget below members", func(c *Config) { c.Agents[0].Iterations = 2 }},
		{"generation fraction of one", func(c *Config) { c.Agents[0].GenerationFraction = 1 }},
		{"unknown ordering", func(c *Config) { c.Agents[0].Ordering = "alphabetical" }},
		{"unknown aggregation", func(c *Config) { c.Agents[0].Aggregation = "sum" }},
		{"unknown evaluator", func(c *Config) { c.Agents[0].Evaluator = "vibes" }},
		{"unknown match up agent", func(c *Config) { c.Experiment.MatchUps = [][2]int{{1, 9}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)

			require.Error(t, c.Validate())
		})
	}

	t.Run("accepting the defaults", func(t *testing.T) {
		require.NoError(t, Default().Validate())
	})
}

func TestMatchUps(t *testing.T) {
	c := Default()
	c.Agents = append(c.Agents, DefaultAgent(3))

	got := c.MatchUps()

	require.Len(t, got, 3, "Every agent should meet every other agent once")
}
