package game

import "fmt"

// Evaluators by name, for configuration.
var Evaluators = map[string]Evaluate{
	"health": EvaluateHealth,
	"board":  EvaluateBoard,
	"tempo":  EvaluateTempo,
}

// LookupEvaluator returns the named evaluator.
func LookupEvaluator(name string) (Evaluate, error) {
	evaluate, ok := Evaluators[name]
	if !ok {
		return nil, fmt.Errorf("unknown evaluator %q", name)
	}
	return evaluate, nil
}

// EvaluateHealth only compares hero health.
func EvaluateHealth(s State, player int) float64 {
	d := asDuel(s)
	if score, over := d.outcome(player); over {
		return score
	}
	me, enemy := d.Side(player), d.Side(opponent(player))
	return toUnit(normalize(float64(max(me.Health, 0)), float64(max(enemy.Health, 0))))
}

// EvaluateBoard considers the boards in addition to hero health.
func EvaluateBoard(s State, player int) float64 {
	d := asDuel(s)
	if score, over := d.outcome(player); over {
		return score
	}
	me, enemy := d.Side(player), d.Side(opponent(player))
	healthScore := normalize(float64(max(me.Health, 0)), float64(max(enemy.Health, 0)))
	boardScore := normalize(boardPower(me.Board), boardPower(enemy.Board))

	return toUnit((healthScore + boardScore) / 2)
}

// EvaluateTempo considers card advantage and mana development in addition to
// health and boards.
func EvaluateTempo(s State, player int) float64 {
	d := asDuel(s)
	if score, over := d.outcome(player); over {
		return score
	}
	me, enemy := d.Side(player), d.Side(opponent(player))
	healthScore := normalize(float64(max(me.Health, 0)), float64(max(enemy.Health, 0)))
	boardScore := normalize(boardPower(me.Board), boardPower(enemy.Board))
	cardScore := normalize(float64(len(me.Hand)+len(me.Deck)), float64(len(enemy.Hand)+len(enemy.Deck)))
	manaScore := normalize(float64(me.MaxMana), float64(enemy.MaxMana))

	return toUnit((2*healthScore + 2*boardScore + cardScore + manaScore) / 6)
}

func asDuel(s State) *Duel {
	d, ok := s.(*Duel)
	if !ok {
		panic("unexpected state type")
	}
	return d
}

func (d *Duel) outcome(player int) (float64, bool) {
	switch d.Won {
	case 0:
		return 0, false
	case player:
		return 1, true
	default:
		return 0, true
	}
}

func boardPower(board []Minion) float64 {
	power := 0.0
	for _, minion := range board {
		power += float64(minion.Attack + minion.Health)
	}
	return power
}

// normalize normalizes value relative to otherValue to a score between -1 and 1
func normalize(value float64, otherValue float64) float64 {
	total := value + otherValue
	if total == 0 {
		return 0
	}
	return (value - otherValue) / total
}

// toUnit maps a score between -1 and 1 to a score between 0 and 1
func toUnit(score float64) float64 {
	return (score + 1) / 2
}
