package game

import (
	"fmt"

	"golang.org/x/exp/rand"
)

type Minion struct {
	Card   CardID
	Attack int
	Health int
	Ready  bool // Can attack this turn
}

// Side holds everything one player owns. Hand and Deck are hidden from the
// opponent except for hand cards flagged in Known.
type Side struct {
	Health  int
	Mana    int
	MaxMana int
	Deck    []CardID // Top of deck first
	Hand    []CardID
	Known   []bool   // Parallel to Hand: identity revealed to the opponent
	Board   []Minion // Left to right
	Played  []CardID // Public history of played and burnt cards
	Fatigue int
}

// Duel is a two-player card game. Players are identified as 1 and 2.
type Duel struct {
	Rules         Rules
	Sides         [2]Side
	CurrentPlayer int
	TurnCount     int
	Won           int // The winner of the game, 0 if no winner yet
}

// NewDuel shuffles both decks, deals opening hands and starts player 1's first turn.
func NewDuel(rules Rules, decks [2]DeckList, rng *rand.Rand) *Duel {
	d := &Duel{
		Rules:         rules,
		CurrentPlayer: 1,
		TurnCount:     0,
	}
	for i := range d.Sides {
		deck := make([]CardID, len(decks[i].Cards))
		copy(deck, decks[i].Cards)
		rng.Shuffle(len(deck), func(a, b int) {
			deck[a], deck[b] = deck[b], deck[a]
		})
		d.Sides[i] = Side{
			Health: rules.StartingHealth(),
			Deck:   deck,
		}
		for j := 0; j < rules.OpeningHand(i+1); j++ {
			d.draw(&d.Sides[i])
		}
	}
	d.startTurn()
	return d
}

func (d *Duel) Copy() State {
	return d.copy()
}

func (d *Duel) copy() *Duel {
	c := &Duel{
		Rules:         d.Rules, // Rules are immutable
		CurrentPlayer: d.CurrentPlayer,
		TurnCount:     d.TurnCount,
		Won:           d.Won,
	}
	for i, side := range d.Sides {
		c.Sides[i] = Side{
			Health:  side.Health,
			Mana:    side.Mana,
			MaxMana: side.MaxMana,
			Deck:    append([]CardID(nil), side.Deck...),
			Hand:    append([]CardID(nil), side.Hand...),
			Known:   append([]bool(nil), side.Known...),
			Board:   append([]Minion(nil), side.Board...),
			Played:  append([]CardID(nil), side.Played...),
			Fatigue: side.Fatigue,
		}
	}
	return c
}

func (d *Duel) Player() int {
	return d.CurrentPlayer
}

func (d *Duel) Turn() int {
	return d.TurnCount
}

func (d *Duel) Winner() int {
	return d.Won
}

func (d *Duel) IsTerminal() bool {
	return d.Won != 0
}

func (d *Duel) Terminator() Decision {
	return EndTurn{}
}

// Side returns the side of the given player (1 or 2).
func (d *Duel) Side(player int) *Side {
	return &d.Sides[player-1]
}

func opponent(player int) int {
	return 3 - player
}

// LegalOptions returns all legal decisions for the current player. Duplicate
// cards in hand or on board produce a single option each.
func (d *Duel) LegalOptions() []Decision {
	if d.Won != 0 {
		return nil
	}
	me := d.Side(d.CurrentPlayer)
	enemy := d.Side(opponent(d.CurrentPlayer))

	var options []Decision
	seen := make(map[CardID]bool)
	for _, id := range me.Hand {
		if id == Unknown || seen[id] {
			continue
		}
		seen[id] = true
		card := Lookup(id)
		if card.Cost > me.Mana {
			continue
		}
		switch card.Kind {
		case MinionCard:
			if len(me.Board) >= d.Rules.MaxBoard() {
				continue
			}
			for pos := 0; pos <= len(me.Board); pos++ {
				options = append(options, Play{Card: id, Position: pos})
			}
		case SpellCard:
			options = append(options, Play{Card: id})
		}
	}

	// Copies of a card with the same health are interchangeable
	attackers := make(map[Minion]bool)
	for _, minion := range me.Board {
		if !minion.Ready || attackers[minion] {
			continue
		}
		attackers[minion] = true
		options = append(options, Attack{Attacker: minion.Card, AttackerHealth: minion.Health, Target: Hero})
		targets := make(map[Minion]bool)
		for _, defender := range enemy.Board {
			defender.Ready = false
			if targets[defender] {
				continue
			}
			targets[defender] = true
			options = append(options, Attack{
				Attacker:       minion.Card,
				AttackerHealth: minion.Health,
				Target:         defender.Card,
				TargetHealth:   defender.Health,
			})
		}
	}

	return append(options, EndTurn{})
}

func (d *Duel) Apply(decision Decision) {
	switch decision := decision.(type) {
	case EndTurn:
		if d.Won != 0 {
			return
		}
		d.endTurn()
	case Play:
		if err := d.play(decision); err != nil {
			panic(err)
		}
	case Attack:
		if err := d.attack(decision); err != nil {
			panic(err)
		}
	default:
		panic(fmt.Sprintf("unexpected decision type %T", decision))
	}
}

func (d *Duel) play(p Play) error {
	if d.Won != 0 {
		return fmt.Errorf("cannot play %s: game is over", p.Card)
	}
	me := d.Side(d.CurrentPlayer)
	enemy := d.Side(opponent(d.CurrentPlayer))

	index := -1
	for i, id := range me.Hand {
		if id == p.Card {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("cannot play %s: card is not in hand", p.Card)
	}
	card := Lookup(p.Card)
	if card.Cost > me.Mana {
		return fmt.Errorf("cannot play %s: not enough mana", p.Card)
	}
	if card.Kind == MinionCard && len(me.Board) >= d.Rules.MaxBoard() {
		return fmt.Errorf("cannot play %s: board is full", p.Card)
	}

	me.Hand = append(me.Hand[:index], me.Hand[index+1:]...)
	me.Known = append(me.Known[:index], me.Known[index+1:]...)
	me.Mana -= card.Cost
	me.Played = append(me.Played, p.Card)

	switch card.Kind {
	case MinionCard:
		pos := max(0, min(p.Position, len(me.Board)))
		minion := Minion{Card: card.ID, Attack: card.Attack, Health: card.Health}
		me.Board = append(me.Board, Minion{})
		copy(me.Board[pos+1:], me.Board[pos:])
		me.Board[pos] = minion
	case SpellCard:
		switch card.Effect {
		case DamageHero:
			enemy.Health -= card.Amount
		case HealHero:
			me.Health = min(d.Rules.StartingHealth(), me.Health+card.Amount)
		case DrawCards:
			for i := 0; i < card.Amount; i++ {
				d.draw(me)
			}
		case RevealCard:
			for i := 0; i < card.Amount; i++ {
				for j := range enemy.Known {
					if !enemy.Known[j] {
						enemy.Known[j] = true
						break
					}
				}
			}
		}
	}

	d.checkWinner()
	return nil
}

func (d *Duel) attack(a Attack) error {
	if d.Won != 0 {
		return fmt.Errorf("cannot attack: game is over")
	}
	me := d.Side(d.CurrentPlayer)
	enemy := d.Side(opponent(d.CurrentPlayer))

	attacker := -1
	for i, minion := range me.Board {
		if minion.Card == a.Attacker && minion.Health == a.AttackerHealth && minion.Ready {
			attacker = i
			break
		}
	}
	if attacker < 0 {
		return fmt.Errorf("cannot attack: no ready %s with %d health on board", a.Attacker, a.AttackerHealth)
	}

	if a.Target == Hero {
		enemy.Health -= me.Board[attacker].Attack
	} else {
		defender := -1
		for i, minion := range enemy.Board {
			if minion.Card == a.Target && minion.Health == a.TargetHealth {
				defender = i
				break
			}
		}
		if defender < 0 {
			return fmt.Errorf("cannot attack: no %s with %d health on enemy board", a.Target, a.TargetHealth)
		}
		enemy.Board[defender].Health -= me.Board[attacker].Attack
		me.Board[attacker].Health -= enemy.Board[defender].Attack
	}
	me.Board[attacker].Ready = false

	me.Board = removeDead(me.Board)
	enemy.Board = removeDead(enemy.Board)
	d.checkWinner()
	return nil
}

func removeDead(board []Minion) []Minion {
	alive := board[:0]
	for _, minion := range board {
		if minion.Health > 0 {
			alive = append(alive, minion)
		}
	}
	return alive
}

func (d *Duel) endTurn() {
	d.CurrentPlayer = opponent(d.CurrentPlayer)
	d.startTurn()
}

func (d *Duel) startTurn() {
	d.TurnCount++
	me := d.Side(d.CurrentPlayer)
	me.MaxMana = min(me.MaxMana+1, d.Rules.MaxMana())
	me.Mana = me.MaxMana
	for i := range me.Board {
		me.Board[i].Ready = true
	}
	d.draw(me)
	d.checkWinner()
}

// draw takes the top card of the deck. An empty deck deals growing fatigue
// damage; drawing into a full hand burns the card publicly.
func (d *Duel) draw(s *Side) {
	if len(s.Deck) == 0 {
		s.Fatigue++
		s.Health -= s.Fatigue
		return
	}
	card := s.Deck[0]
	s.Deck = s.Deck[1:]
	if len(s.Hand) >= d.Rules.MaxHand() {
		s.Played = append(s.Played, card)
		return
	}
	s.Hand = append(s.Hand, card)
	s.Known = append(s.Known, false)
}

func (d *Duel) checkWinner() {
	if d.Won != 0 {
		return
	}
	dead1 := d.Sides[0].Health <= 0
	dead2 := d.Sides[1].Health <= 0
	switch {
	case dead1 && dead2:
		// The player who caused the double knockout wins
		d.Won = d.CurrentPlayer
	case dead1:
		d.Won = 2
	case dead2:
		d.Won = 1
	}
}
