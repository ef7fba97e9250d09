package game

import "github.com/lox/blackjackforbots/internal/deck"

// Action is the closed set of transitions the reducer accepts. Each kind is
// its own struct so the reducer can switch exhaustively on the payload type.
type Action interface {
	isAction()
}

// PlaceBet escrows a bet for a player during the betting phase
type PlaceBet struct {
	PlayerID string
	Amount   int
}

// Deal starts a round: fresh deck, two cards per player, two for the dealer
type Deal struct{}

// Hit draws one face-up card for the current player
type Hit struct{}

// Stand ends the current player's turn
type Stand struct{}

// Reset restores every seat to the starting stake, preserving identity
type Reset struct{}

// AddPlayer seats a new human player
type AddPlayer struct {
	Name string
}

// RemovePlayer unseats a player by id
type RemovePlayer struct {
	ID string
}

// AddAIPlayer seats a new AI player bound to a model
type AddAIPlayer struct {
	Model Model
}

// TogglePlayerType switches a seat between human and AI control
type TogglePlayerType struct {
	PlayerID string
	Type     PlayerType
	Model    Model
}

// StartBettingPhase clears hands and bets and returns to betting
type StartBettingPhase struct{}

// ProcessDealerTurn applies the dealer's resolved hand and the payouts.
// Dispatched only by the table driver once the dealer delay elapses.
type ProcessDealerTurn struct {
	Players []Player
	Dealer  Dealer
	Deck    *deck.Deck
}

// SetAIThinking asserts the thinking indicator for one AI request
type SetAIThinking struct {
	PlayerID string
	Activity Activity
}

// ClearAIThinking clears the thinking indicator
type ClearAIThinking struct{}

// UpdateMessage replaces the advisory table message; no game-rule effect
type UpdateMessage struct {
	Message string
}

func (PlaceBet) isAction()          {}
func (Deal) isAction()              {}
func (Hit) isAction()               {}
func (Stand) isAction()             {}
func (Reset) isAction()             {}
func (AddPlayer) isAction()         {}
func (RemovePlayer) isAction()      {}
func (AddAIPlayer) isAction()       {}
func (TogglePlayerType) isAction()  {}
func (StartBettingPhase) isAction() {}
func (ProcessDealerTurn) isAction() {}
func (SetAIThinking) isAction()     {}
func (ClearAIThinking) isAction()   {}
func (UpdateMessage) isAction()     {}
