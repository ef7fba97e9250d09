package ai

import (
	"fmt"
	"strings"

	"github.com/lox/blackjackforbots/internal/deck"
	"github.com/lox/blackjackforbots/internal/game"
)

// formatHand renders the face-up cards of a hand for a prompt, e.g. "A♠, 10♥"
func formatHand(hand []deck.Card) string {
	parts := make([]string, 0, len(hand))
	for _, card := range hand {
		if card.FaceUp {
			parts = append(parts, card.String())
		}
	}
	return strings.Join(parts, ", ")
}

// betPrompt asks for a bet amount. Betting prompts deliberately omit table
// context; only the bankroll matters.
func betPrompt(chips int) string {
	limit := chips
	if limit > 500 {
		limit = 500
	}
	return fmt.Sprintf(`You're playing blackjack and have %d chips.
What's a reasonable bet amount? Consider standard betting strategies.
Respond with ONLY a number between 10 and %d, with no explanation.`, chips, limit)
}

// decisionPrompt describes the visible table state and asks for HIT or STAND
func decisionPrompt(hand []deck.Card, score int, dealerUp *deck.Card, others []game.Player) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are playing blackjack. Your hand: %s (score: %d).\n", formatHand(hand), score)
	if dealerUp != nil {
		fmt.Fprintf(&b, "Dealer shows: %s.\n", dealerUp)
	} else {
		b.WriteString("Dealer has no cards yet.\n")
	}

	if len(others) > 0 {
		b.WriteString("Other players at the table:\n")
		for _, p := range others {
			if visible := formatHand(p.Hand); visible != "" {
				fmt.Fprintf(&b, "- %s: %s (visible score: %d)\n", p.Name, visible, deck.Score(p.Hand))
			}
		}
	}

	b.WriteString(`Based on this situation, would you hit or stand? Explain your reasoning briefly, then answer with just "HIT" or "STAND".`)
	return b.String()
}
