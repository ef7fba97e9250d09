package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjackforbots/internal/deck"
	"github.com/lox/blackjackforbots/internal/randutil"
)

func TestDealerPlayRevealsAndStandsOn17(t *testing.T) {
	dealer := Dealer{Name: "Dealer", Hand: []deck.Card{upCard(deck.Ten), downCard(deck.Seven)}}
	d := deck.NewStacked(randutil.New(1), upCard(deck.Five))

	out := DealerPlay(dealer, d)

	require.Len(t, out.Hand, 2, "17 takes no cards")
	assert.True(t, out.Hand[1].FaceUp, "hole card is revealed")
	assert.Equal(t, 17, out.Score)
	assert.False(t, out.HasBusted)
	assert.Equal(t, 1, d.CardsRemaining())
}

func TestDealerPlayHitsBelow17(t *testing.T) {
	dealer := Dealer{Name: "Dealer", Hand: []deck.Card{upCard(deck.Ten), downCard(deck.Six)}}
	// Drawn from the tail: first draw is the Two (16 -> 18).
	d := deck.NewStacked(randutil.New(2), upCard(deck.King), upCard(deck.Two))

	out := DealerPlay(dealer, d)

	require.Len(t, out.Hand, 3)
	assert.Equal(t, 18, out.Score)
	assert.False(t, out.HasBusted)
}

func TestDealerPlayBusts(t *testing.T) {
	dealer := Dealer{Name: "Dealer", Hand: []deck.Card{upCard(deck.Ten), downCard(deck.Six)}}
	d := deck.NewStacked(randutil.New(3), upCard(deck.King))

	out := DealerPlay(dealer, d)

	assert.Equal(t, 26, out.Score)
	assert.True(t, out.HasBusted)
}

func TestDealerPlaySoft17(t *testing.T) {
	// A+6 is a soft 17: the house policy stands on it.
	dealer := Dealer{Name: "Dealer", Hand: []deck.Card{upCard(deck.Ace), downCard(deck.Six)}}
	d := deck.NewStacked(randutil.New(4), upCard(deck.Five))

	out := DealerPlay(dealer, d)

	require.Len(t, out.Hand, 2)
	assert.Equal(t, 17, out.Score)
}

func TestDealerPlayDoesNotMutateInput(t *testing.T) {
	dealer := Dealer{Name: "Dealer", Hand: []deck.Card{upCard(deck.Ten), downCard(deck.Six)}}
	d := deck.NewStacked(randutil.New(5), upCard(deck.Two))

	DealerPlay(dealer, d)

	assert.False(t, dealer.Hand[1].FaceUp, "caller's dealer hand stays untouched")
	assert.Len(t, dealer.Hand, 2)
}
