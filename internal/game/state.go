package game

import (
	"github.com/google/uuid"

	"github.com/lox/blackjackforbots/internal/deck"
)

// Phase tracks which part of a round the table is in. The phase alone
// determines which actions the reducer accepts.
type Phase string

const (
	Betting     Phase = "betting"
	PlayerTurns Phase = "player_turns"
	DealerTurn  Phase = "dealer_turn"
	GameOver    Phase = "game_over"
)

// PlayerType distinguishes seats driven by a person from seats driven by the
// AI adapter.
type PlayerType string

const (
	Human PlayerType = "human"
	AI    PlayerType = "ai"
)

// Model identifies which LLM an AI seat queries for decisions
type Model string

const (
	ModelGeminiFlash Model = "gemini-1.5-flash-latest"
	ModelLlama70B    Model = "llama3-70b-8192"
	ModelLlama8B     Model = "llama3-8b-8192"

	DefaultModel = ModelLlama8B
)

// Activity is what an AI seat is currently deciding
type Activity string

const (
	ActivityBetting Activity = "betting"
	ActivityPlaying Activity = "playing"
)

// Thinking marks the single AI request that may be outstanding. A zero
// PlayerID means no request is in flight.
type Thinking struct {
	PlayerID string   `json:"playerId,omitempty"`
	Activity Activity `json:"activity,omitempty"`
}

// Player is one seat at the table
type Player struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Hand          []deck.Card `json:"hand"`
	Score         int         `json:"score"`
	HasBusted     bool        `json:"hasBusted"`
	HasBlackjack  bool        `json:"hasBlackjack"`
	HasStood      bool        `json:"hasStood"`
	Chips         int         `json:"chips"`
	Bet           int         `json:"bet"`
	IsActive      bool        `json:"isActive"`
	Type          PlayerType  `json:"playerType"`
	Model         Model       `json:"aiModel,omitempty"`
	ResultMessage string      `json:"resultMessage,omitempty"`
}

// Dealer is the house hand. Its second card is dealt face down and revealed
// when the dealer plays.
type Dealer struct {
	Name         string      `json:"name"`
	Hand         []deck.Card `json:"hand"`
	Score        int         `json:"score"`
	HasBusted    bool        `json:"hasBusted"`
	HasBlackjack bool        `json:"hasBlackjack"`
}

// UpCard returns the dealer's visible card, if any
func (d Dealer) UpCard() (deck.Card, bool) {
	for _, card := range d.Hand {
		if card.FaceUp {
			return card, true
		}
	}
	return deck.Card{}, false
}

// State is the authoritative table state. It is mutated exclusively through
// Reducer.Reduce; everything else receives copies.
type State struct {
	Deck               *deck.Deck `json:"-"`
	Players            []Player   `json:"players"`
	Dealer             Dealer     `json:"dealer"`
	CurrentPlayerIndex int        `json:"currentPlayerIndex"`
	Phase              Phase      `json:"gamePhase"`
	IsPlayerTurn       bool       `json:"isPlayerTurn"`
	Message            string     `json:"message"`
	Round              int        `json:"round"`
	AIThinking         Thinking   `json:"aiIsThinking"`
}

// CurrentPlayer returns the player at CurrentPlayerIndex, or nil when the
// index is out of range.
func (s *State) CurrentPlayer() *Player {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return &s.Players[s.CurrentPlayerIndex]
}

// PlayerByID returns the player with the given id, or nil
func (s *State) PlayerByID(id string) *Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// NewPlayer creates a fresh human seat with the configured starting stake
func NewPlayer(name string, chips int) Player {
	return Player{
		ID:    uuid.NewString(),
		Name:  name,
		Chips: chips,
		Type:  Human,
	}
}

// NewAIPlayer creates a fresh AI seat bound to a model
func NewAIPlayer(name string, chips int, model Model) Player {
	p := NewPlayer(name, chips)
	p.Type = AI
	if model == "" {
		model = DefaultModel
	}
	p.Model = model
	return p
}

func newDealer() Dealer {
	return Dealer{Name: "Dealer"}
}

// clonePlayers copies the roster and every hand so a reduced state never
// aliases the hands of its predecessor.
func clonePlayers(players []Player) []Player {
	out := make([]Player, len(players))
	copy(out, players)
	for i := range out {
		out[i].Hand = append([]deck.Card(nil), out[i].Hand...)
	}
	return out
}

func cloneDealer(d Dealer) Dealer {
	d.Hand = append([]deck.Card(nil), d.Hand...)
	return d
}
