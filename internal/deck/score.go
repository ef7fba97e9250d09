package deck

// Score returns the best blackjack total for a hand. Only face-up cards
// contribute; a face-down card counts 0 until revealed. Non-aces score at
// face value, then each ace takes 11 if that keeps the running total at or
// below 21, otherwise 1.
func Score(hand []Card) int {
	score := 0
	aces := 0

	for _, card := range hand {
		if !card.FaceUp {
			continue
		}
		if card.IsAce() {
			aces++
			continue
		}
		score += card.Value()
	}

	for i := 0; i < aces; i++ {
		if score+11 <= 21 {
			score += 11
		} else {
			score++
		}
	}

	return score
}

// FullScore scores a hand as if every card were face up. Used for the
// dealer's blackjack check while the hole card is still hidden.
func FullScore(hand []Card) int {
	revealed := make([]Card, len(hand))
	for i, card := range hand {
		card.FaceUp = true
		revealed[i] = card
	}
	return Score(revealed)
}

// IsBlackjack returns true for a two-card 21, counting hidden cards
func IsBlackjack(hand []Card) bool {
	return len(hand) == 2 && FullScore(hand) == 21
}

// IsBust returns true if the visible score exceeds 21
func IsBust(hand []Card) bool {
	return Score(hand) > 21
}
