package deck

import (
	rand "math/rand/v2"

	"github.com/google/uuid"
)

// Deck represents a shoe of playing cards, consumed from the tail.
// The shuffle uses a plain PRNG; this is a game engine, not a casino, and
// the ordering carries no fairness guarantee.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a new shuffled 52-card deck using the provided random source
func New(rng *rand.Rand) *Deck {
	d := &Deck{rng: rng}
	d.fill()
	d.Shuffle()
	return d
}

func (d *Deck) fill() {
	d.cards = d.cards[:0]
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Ace; rank <= King; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
}

// NewStacked creates a deck with a known card order instead of a shuffle.
// Cards are drawn from the tail, so the last card listed is drawn first.
func NewStacked(rng *rand.Rand, cards ...Card) *Deck {
	return &Deck{cards: append([]Card(nil), cards...), rng: rng}
}

// Shuffle randomizes the order of cards in the deck (Fisher-Yates)
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card with its FaceUp flag overridden and
// its ID refreshed. An exhausted deck is transparently rebuilt and reshuffled
// before drawing, so Draw never fails.
func (d *Deck) Draw(faceUp bool) Card {
	if len(d.cards) == 0 {
		d.fill()
		d.Shuffle()
	}

	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]

	card.FaceUp = faceUp
	card.ID = uuid.NewString()
	return card
}

// CardsRemaining returns the number of cards left in the deck
func (d *Deck) CardsRemaining() int {
	return len(d.cards)
}
