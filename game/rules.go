package game

type Rules interface {
	StartingHealth() int
	MaxMana() int
	MaxHand() int
	MaxBoard() int
	OpeningHand(player int) int
	// Decks are the deck lists either player may bring, used to infer hidden cards
	Decks() []DeckList
}
