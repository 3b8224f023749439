package deck

import rand "math/rand/v2"

// Deck is an ordered pile of cards. Randomness is injected so games can
// be replayed deterministically in tests.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a shuffled 52-card deck.
func NewDeck(rng *rand.Rand) *Deck {
	return NewDeckWithJokers(rng, 0)
}

// NewDeckWithJokers creates a shuffled deck with the given number of
// jokers added (poker's "jokers" wild option uses two).
func NewDeckWithJokers(rng *rand.Rand, jokers int) *Deck {
	d := &Deck{
		cards: make([]Card, 0, 52+jokers),
		rng:   rng,
	}
	for _, suit := range Suits {
		for _, value := range Values {
			d.cards = append(d.cards, New(suit, value))
		}
	}
	for i := 0; i < jokers; i++ {
		d.cards = append(d.cards, Joker())
	}
	d.Shuffle()
	return d
}

// NewStacked creates an unshuffled deck dealing the given cards in
// order. Used by tests that need known deals.
func NewStacked(cards ...Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...)}
}

// Shuffle randomizes the order of the remaining cards.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes and returns the top card.
func (d *Deck) Deal() (Card, bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// MustDeal deals a card and panics if the deck is exhausted. Engines
// size their decks so exhaustion is a programmer error.
func (d *Deck) MustDeal() Card {
	card, ok := d.Deal()
	if !ok {
		panic("deck: dealt from an empty deck")
	}
	return card
}

// DealN deals up to n cards.
func (d *Deck) DealN(n int) []Card {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	cards := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		card, _ := d.Deal()
		cards = append(cards, card)
	}
	return cards
}

// Burn discards the top card, as before community deals in hold'em.
func (d *Deck) Burn() {
	_, _ = d.Deal()
}

// Remaining returns the number of cards left.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
