package game

import "fmt"

// CardID is a catalog identifier. Unknown stands in for a card whose identity
// is hidden from the observer.
type CardID int

const Unknown CardID = 0

type CardKind int

const (
	MinionCard CardKind = iota // 0
	SpellCard                  // 1
)

type Effect int

const (
	NoEffect     Effect = iota
	DamageHero          // Damage the enemy hero
	HealHero            // Restore health to the own hero
	DrawCards           // Draw cards
	RevealCard          // Reveal a card in the enemy hand
)

type Card struct {
	ID     CardID
	Name   string
	Kind   CardKind
	Cost   int
	Attack int
	Health int
	Effect Effect
	Amount int
}

func (c Card) String() string {
	return c.Name
}

const (
	Recruit CardID = iota + 1
	Archer
	Squire
	Knight
	Ogre
	Giant
	Firebolt
	Fireball
	Bandage
	Insight
	Spyglass
)

var catalog = map[CardID]Card{
	Recruit:  {ID: Recruit, Name: "Recruit", Kind: MinionCard, Cost: 1, Attack: 1, Health: 2},
	Archer:   {ID: Archer, Name: "Archer", Kind: MinionCard, Cost: 2, Attack: 3, Health: 1},
	Squire:   {ID: Squire, Name: "Squire", Kind: MinionCard, Cost: 2, Attack: 2, Health: 3},
	Knight:   {ID: Knight, Name: "Knight", Kind: MinionCard, Cost: 3, Attack: 3, Health: 4},
	Ogre:     {ID: Ogre, Name: "Ogre", Kind: MinionCard, Cost: 4, Attack: 5, Health: 4},
	Giant:    {ID: Giant, Name: "Giant", Kind: MinionCard, Cost: 6, Attack: 7, Health: 7},
	Firebolt: {ID: Firebolt, Name: "Firebolt", Kind: SpellCard, Cost: 1, Effect: DamageHero, Amount: 2},
	Fireball: {ID: Fireball, Name: "Fireball", Kind: SpellCard, Cost: 4, Effect: DamageHero, Amount: 6},
	Bandage:  {ID: Bandage, Name: "Bandage", Kind: SpellCard, Cost: 2, Effect: HealHero, Amount: 5},
	Insight:  {ID: Insight, Name: "Insight", Kind: SpellCard, Cost: 3, Effect: DrawCards, Amount: 2},
	Spyglass: {ID: Spyglass, Name: "Spyglass", Kind: SpellCard, Cost: 1, Effect: RevealCard, Amount: 1},
}

// Lookup panics on ids outside the catalog, including Unknown.
func Lookup(id CardID) Card {
	card, ok := catalog[id]
	if !ok {
		panic(fmt.Sprintf("unknown card id %d", id))
	}
	return card
}

func (id CardID) String() string {
	if id == Unknown {
		return "?"
	}
	if card, ok := catalog[id]; ok {
		return card.Name
	}
	return fmt.Sprintf("card(%d)", int(id))
}

// DeckList is a declared deck: the multiset of cards a player may have brought.
type DeckList struct {
	Name  string
	Cards []CardID
}

// Contains reports whether every card of cards fits in the deck list as a multiset.
func (d DeckList) Contains(cards []CardID) bool {
	remaining := d.counts()
	for _, card := range cards {
		if remaining[card] == 0 {
			return false
		}
		remaining[card]--
	}
	return true
}

// Without returns the deck list minus the given multiset. Cards missing from the
// list are ignored.
func (d DeckList) Without(cards []CardID) []CardID {
	remove := make(map[CardID]int)
	for _, card := range cards {
		remove[card]++
	}
	var rest []CardID
	for _, card := range d.Cards {
		if remove[card] > 0 {
			remove[card]--
			continue
		}
		rest = append(rest, card)
	}
	return rest
}

func (d DeckList) counts() map[CardID]int {
	counts := make(map[CardID]int)
	for _, card := range d.Cards {
		counts[card]++
	}
	return counts
}
