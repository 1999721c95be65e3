package engine

import (
	"context"
	"time"

	"cardsearch/experiments/metrics"
	"cardsearch/game"

	"github.com/rs/zerolog/log"
)

// Run executes the entire game loop until a winner is found, MaxTurns turns
// have been played or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) Result {
	gameMetric := metrics.GameMetric{
		StartingPlayer: e.State.Player(),
		StartTime:      time.Now(),
	}
	var moveMetrics []metrics.MoveMetric

	log.Info().Msgf("player %d is starting", e.State.Player())

	start := e.State.Turn()
	for !e.State.IsTerminal() && e.State.Turn()-start < e.MaxTurns {
		if ctx.Err() != nil {
			log.Info().Msg("game interrupted")
			break
		}
		player := e.State.Player()
		turn := e.State.Turn()

		action, searchMetric := e.Agents[player-1].Decide(ctx, e.State.Copy())
		applied, illegal := e.play(action)
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Turn:         turn,
			Player:       player,
			Decisions:    applied,
			Illegal:      illegal,
			SearchMetric: searchMetric,
		})

		log.Debug().Int("turn", turn).Int("player", player).Stringer("action", action).Msg("played turn")
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.TotalTurns = e.State.Turn() - start
	gameMetric.Winner = e.State.Winner()

	if gameMetric.Winner != 0 {
		log.Info().Msgf("game ended with winner: player %d", gameMetric.Winner)
	} else {
		log.Info().Msgf("stopped after %d turns without a winner", gameMetric.TotalTurns)
	}

	return Result{Winner: gameMetric.Winner, Game: gameMetric, Moves: moveMetrics}
}

// play applies action to the real state decision by decision. An illegal
// decision ends the turn in its place. The turn is ended even when the action
// is not.
func (e *Engine) play(action game.CombinedAction) (applied, illegal int) {
	player, turn := e.State.Player(), e.State.Turn()
	ended := func() bool {
		return e.State.IsTerminal() || e.State.Player() != player || e.State.Turn() != turn
	}

	for _, decision := range action {
		if ended() {
			return applied, illegal
		}
		if !decision.IsTerminator() {
			legal, ok := game.FindLegal(e.State.LegalOptions(), decision.Signature())
			if ok {
				decision = legal
			} else {
				log.Warn().Int("player", player).Stringer("decision", decision).Msg("agent chose an illegal decision, ending the turn")
				illegal++
				decision = e.State.Terminator()
			}
		}
		e.State.Apply(decision)
		applied++
		if decision.IsTerminator() {
			return applied, illegal
		}
	}
	if !ended() {
		log.Warn().Int("player", player).Msg("agent did not end its turn")
		e.State.Apply(e.State.Terminator())
		applied++
	}
	return applied, illegal
}
