package engine

import (
	"cardsearch/experiments/metrics"
	"cardsearch/game"
	"cardsearch/meta"
	"cardsearch/searcher/agent"
)

// Engine plays one game between two agents. Agents only ever see copies of
// the real state.
type Engine struct {
	State    game.State
	Agents   [2]agent.Agent // Indexed by player ID - 1
	MaxTurns int
}

// New returns an engine for state. The first agent plays as player 1.
func New(state game.State, agents ...agent.Agent) *Engine {
	if len(agents) != 2 {
		panic("need exactly two agents")
	}
	if state == nil {
		panic("need a game state")
	}
	return &Engine{
		State:    state,
		Agents:   [2]agent.Agent{agents[0], agents[1]},
		MaxTurns: meta.MAX_TURNS,
	}
}

// Result is the outcome of a finished game.
type Result struct {
	Winner int // Player ID, 0 for a draw
	Game   metrics.GameMetric
	Moves  []metrics.MoveMetric
}
