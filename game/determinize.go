package game

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Mask returns the state as the observer sees it: opponent hand cards that were
// never revealed and the opponent deck become Unknown. Zone sizes are preserved.
func (d *Duel) Mask(observer int) Imperfect {
	masked := d.copy()
	enemy := masked.Side(opponent(observer))
	for i := range enemy.Hand {
		if !enemy.Known[i] {
			enemy.Hand[i] = Unknown
		}
	}
	for i := range enemy.Deck {
		enemy.Deck[i] = Unknown
	}
	return masked
}

// PublicCards returns the cards of player that the opponent has observed: the
// played history and revealed hand cards.
func (d *Duel) PublicCards(player int) []CardID {
	side := d.Side(player)
	public := append([]CardID(nil), side.Played...)
	for i, card := range side.Hand {
		if side.Known[i] && card != Unknown {
			public = append(public, card)
		}
	}
	return public
}

// ConsistentDecks returns the deck lists that could have produced everything
// the opponent of observer has shown so far.
func (d *Duel) ConsistentDecks(observer int) []DeckList {
	public := d.PublicCards(opponent(observer))
	var consistent []DeckList
	for _, deck := range d.Rules.Decks() {
		if deck.Contains(public) {
			consistent = append(consistent, deck)
		}
	}
	return consistent
}

// Determinize fills every Unknown card of the opponent from one consistent deck
// list, drawn without replacement, and reshuffles the observer's own deck whose
// order the observer cannot know. Known and played cards are never touched.
func (d *Duel) Determinize(observer int, rng *rand.Rand) State {
	world := d.copy()

	own := world.Side(observer)
	rng.Shuffle(len(own.Deck), func(i, j int) {
		own.Deck[i], own.Deck[j] = own.Deck[j], own.Deck[i]
	})

	enemy := world.Side(opponent(observer))
	candidates := world.ConsistentDecks(observer)
	var source DeckList
	var pool []CardID
	if len(candidates) > 0 {
		source = candidates[rng.Intn(len(candidates))]
		pool = source.Without(world.PublicCards(opponent(observer)))
	} else {
		log.Warn().Int("observer", observer).Msg("no deck list is consistent with public cards, sampling from all lists")
		for _, deck := range d.Rules.Decks() {
			source.Cards = append(source.Cards, deck.Cards...)
		}
		pool = append(pool, source.Cards...)
	}
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	next := func() CardID {
		if len(pool) == 0 {
			// More hidden cards than the list can explain, draw with replacement
			return source.Cards[rng.Intn(len(source.Cards))]
		}
		card := pool[0]
		pool = pool[1:]
		return card
	}
	for i, card := range enemy.Hand {
		if card == Unknown {
			enemy.Hand[i] = next()
		}
	}
	for i, card := range enemy.Deck {
		if card == Unknown {
			enemy.Deck[i] = next()
		}
	}
	return world
}
