package game

type StandardRules struct {
	Health    int
	Mana      int
	HandLimit int
	BoardSize int
	DeckLists []DeckList
}

func NewStandardRules() *StandardRules {
	return &StandardRules{
		Health:    20,
		Mana:      10,
		HandLimit: 8,
		BoardSize: 5,
		DeckLists: []DeckList{AggroDeck, ControlDeck, MidrangeDeck},
	}
}

func (sr *StandardRules) StartingHealth() int {
	return sr.Health
}

func (sr *StandardRules) MaxMana() int {
	return sr.Mana
}

func (sr *StandardRules) MaxHand() int {
	return sr.HandLimit
}

func (sr *StandardRules) MaxBoard() int {
	return sr.BoardSize
}

func (sr *StandardRules) OpeningHand(player int) int {
	// Second player draws one extra card
	if player == 2 {
		return 4
	}
	return 3
}

func (sr *StandardRules) Decks() []DeckList {
	return sr.DeckLists
}

var AggroDeck = DeckList{
	Name: "aggro",
	Cards: []CardID{
		Recruit, Recruit, Recruit, Archer, Archer, Archer, Squire, Squire,
		Knight, Knight, Firebolt, Firebolt, Firebolt, Fireball, Spyglass,
	},
}

var ControlDeck = DeckList{
	Name: "control",
	Cards: []CardID{
		Squire, Squire, Knight, Knight, Ogre, Ogre, Giant, Giant,
		Bandage, Bandage, Insight, Insight, Fireball, Fireball, Spyglass,
	},
}

var MidrangeDeck = DeckList{
	Name: "midrange",
	Cards: []CardID{
		Recruit, Recruit, Archer, Squire, Squire, Knight, Knight, Knight,
		Ogre, Ogre, Firebolt, Fireball, Bandage, Insight, Spyglass,
	},
}
