package game

import "github.com/lox/blackjackforbots/internal/deck"

// DealerPlay reveals the dealer's hand and applies the fixed house policy:
// hit while the score is below 17, then stop. Deterministic given the deck
// order. The deck is consumed in place; the returned Dealer carries the
// final hand and flags.
func DealerPlay(dealer Dealer, d *deck.Deck) Dealer {
	out := cloneDealer(dealer)
	for i := range out.Hand {
		out.Hand[i].FaceUp = true
	}
	out.Score = deck.Score(out.Hand)

	for out.Score < 17 {
		out.Hand = append(out.Hand, d.Draw(true))
		out.Score = deck.Score(out.Hand)
	}

	out.HasBusted = deck.IsBust(out.Hand)
	out.HasBlackjack = deck.IsBlackjack(out.Hand)
	return out
}
