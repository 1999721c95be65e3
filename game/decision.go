package game

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

type decisionKind int64

const (
	playKind decisionKind = iota + 1
	attackKind
	endTurnKind
)

// Hero is the attack target meaning the enemy hero rather than a minion.
const Hero = Unknown

// Play casts a card from hand. Position only matters for board placement.
type Play struct {
	Card     CardID
	Position int
}

func (p Play) Signature() Signature {
	return signature(playKind, int64(p.Card), int64(p.Position))
}

func (p Play) Canonical() Signature {
	return signature(playKind, int64(p.Card))
}

func (p Play) Category() Category {
	return CategoryPlay
}

func (p Play) Cost() int {
	return Lookup(p.Card).Cost
}

func (p Play) IsTerminator() bool {
	return false
}

func (p Play) String() string {
	if Lookup(p.Card).Kind == MinionCard {
		return fmt.Sprintf("play(%s@%d)", p.Card, p.Position)
	}
	return fmt.Sprintf("play(%s)", p.Card)
}

// Attack orders a ready minion to attack an enemy minion or the enemy Hero.
// Minions of one card only differ in remaining health, so the card and its
// health identify which copy attacks or is attacked.
type Attack struct {
	Attacker       CardID
	AttackerHealth int
	Target         CardID
	TargetHealth   int // 0 when attacking the Hero
}

func (a Attack) Signature() Signature {
	return signature(attackKind, int64(a.Attacker), int64(a.AttackerHealth), int64(a.Target), int64(a.TargetHealth))
}

func (a Attack) Canonical() Signature {
	return a.Signature()
}

func (a Attack) Category() Category {
	return CategoryAttack
}

func (a Attack) Cost() int {
	return 0
}

func (a Attack) IsTerminator() bool {
	return false
}

func (a Attack) String() string {
	if a.Target == Hero {
		return fmt.Sprintf("attack(%s/%d->hero)", a.Attacker, a.AttackerHealth)
	}
	return fmt.Sprintf("attack(%s/%d->%s/%d)", a.Attacker, a.AttackerHealth, a.Target, a.TargetHealth)
}

type EndTurn struct{}

func (EndTurn) Signature() Signature {
	return signature(endTurnKind)
}

func (e EndTurn) Canonical() Signature {
	return e.Signature()
}

func (EndTurn) Category() Category {
	return CategoryEndTurn
}

func (EndTurn) Cost() int {
	return 0
}

func (EndTurn) IsTerminator() bool {
	return true
}

func (EndTurn) String() string {
	return "end_turn"
}

func signature(kind decisionKind, fields ...int64) Signature {
	hasher := fnv.New64a()
	binary.Write(hasher, binary.LittleEndian, int64(kind))
	for _, field := range fields {
		binary.Write(hasher, binary.LittleEndian, field)
	}
	return Signature(hasher.Sum64())
}
