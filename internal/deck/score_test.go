package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func up(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank, FaceUp: true, ID: "test"}
}

func down(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank, FaceUp: false, ID: "test"}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		hand []Card
		want int
	}{
		{"empty hand", nil, 0},
		{"face cards count ten", []Card{up(Hearts, King), up(Spades, Queen)}, 20},
		{"ace counts eleven when safe", []Card{up(Hearts, Ace), up(Clubs, Six)}, 17},
		{"ace drops to one past 21", []Card{up(Hearts, Ace), up(Clubs, Nine), up(Spades, Five)}, 15},
		{"two aces are twelve", []Card{up(Hearts, Ace), up(Spades, Ace)}, 12},
		{"soft blackjack", []Card{up(Hearts, Ace), up(Spades, King)}, 21},
		{"face-down card contributes zero", []Card{up(Hearts, King), down(Spades, Nine)}, 10},
		{"bust hand", []Card{up(Hearts, King), up(Spades, Queen), up(Clubs, Five)}, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.hand))
		})
	}
}

func TestIsBlackjack(t *testing.T) {
	assert.True(t, IsBlackjack([]Card{up(Hearts, Ace), up(Spades, King)}))
	assert.False(t, IsBlackjack([]Card{up(Hearts, Ace), up(Spades, Nine)}))
	// Three cards totalling 21 is not a blackjack.
	assert.False(t, IsBlackjack([]Card{up(Hearts, Seven), up(Spades, Seven), up(Clubs, Seven)}))
	// The dealer's hole card participates in the blackjack check even while hidden.
	assert.True(t, IsBlackjack([]Card{up(Hearts, Ace), down(Spades, King)}))
}

func TestIsBust(t *testing.T) {
	assert.False(t, IsBust([]Card{up(Hearts, King), up(Spades, Queen)}))
	assert.True(t, IsBust([]Card{up(Hearts, King), up(Spades, Queen), up(Clubs, Two)}))
	// A hidden card cannot bust a hand.
	assert.False(t, IsBust([]Card{up(Hearts, King), up(Spades, Queen), down(Clubs, Two)}))
}
