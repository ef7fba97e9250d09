package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/blackjackforbots/internal/game"
)

// MessageType identifies a WebSocket message
type MessageType string

// Client → Server
const (
	MsgPlaceBet         MessageType = "place_bet"
	MsgDeal             MessageType = "deal"
	MsgHit              MessageType = "hit"
	MsgStand            MessageType = "stand"
	MsgReset            MessageType = "reset"
	MsgNewRound         MessageType = "new_round"
	MsgAddPlayer        MessageType = "add_player"
	MsgRemovePlayer     MessageType = "remove_player"
	MsgAddAIPlayer      MessageType = "add_ai_player"
	MsgTogglePlayerType MessageType = "toggle_player_type"
)

// Server → Client
const (
	MsgState   MessageType = "state"
	MsgError   MessageType = "error"
	MsgWelcome MessageType = "welcome"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server message payloads

type PlaceBetData struct {
	PlayerID string `json:"playerId"`
	Amount   int    `json:"amount"`
}

type AddPlayerData struct {
	Name string `json:"name"`
}

type RemovePlayerData struct {
	PlayerID string `json:"playerId"`
}

type AddAIPlayerData struct {
	Model string `json:"model,omitempty"`
}

type TogglePlayerTypeData struct {
	PlayerID string `json:"playerId"`
	Type     string `json:"type"`
	Model    string `json:"model,omitempty"`
}

// Server → Client message payloads

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type WelcomeData struct {
	Message string `json:"message"`
}

// rosterMessage reports whether a message mutates the roster. Roster
// changes are only accepted between rounds, while bets are open.
func rosterMessage(t MessageType) bool {
	switch t {
	case MsgAddPlayer, MsgRemovePlayer, MsgAddAIPlayer, MsgTogglePlayerType:
		return true
	}
	return false
}

// decodeAction maps an inbound message onto a game action. It returns an
// error for unknown types and malformed payloads; phase gating happens in
// the server before dispatch.
func decodeAction(msg *Message, defaultModel game.Model) (game.Action, error) {
	switch msg.Type {
	case MsgPlaceBet:
		var data PlaceBetData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil, fmt.Errorf("invalid place_bet payload: %w", err)
		}
		return game.PlaceBet{PlayerID: data.PlayerID, Amount: data.Amount}, nil

	case MsgDeal:
		return game.Deal{}, nil

	case MsgHit:
		return game.Hit{}, nil

	case MsgStand:
		return game.Stand{}, nil

	case MsgReset:
		return game.Reset{}, nil

	case MsgNewRound:
		return game.StartBettingPhase{}, nil

	case MsgAddPlayer:
		var data AddPlayerData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil, fmt.Errorf("invalid add_player payload: %w", err)
		}
		if data.Name == "" {
			return nil, fmt.Errorf("add_player requires a name")
		}
		return game.AddPlayer{Name: data.Name}, nil

	case MsgRemovePlayer:
		var data RemovePlayerData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil, fmt.Errorf("invalid remove_player payload: %w", err)
		}
		return game.RemovePlayer{ID: data.PlayerID}, nil

	case MsgAddAIPlayer:
		var data AddAIPlayerData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				return nil, fmt.Errorf("invalid add_ai_player payload: %w", err)
			}
		}
		model := game.Model(data.Model)
		if model == "" {
			model = defaultModel
		}
		return game.AddAIPlayer{Model: model}, nil

	case MsgTogglePlayerType:
		var data TogglePlayerTypeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return nil, fmt.Errorf("invalid toggle_player_type payload: %w", err)
		}
		return game.TogglePlayerType{
			PlayerID: data.PlayerID,
			Type:     game.PlayerType(data.Type),
			Model:    game.Model(data.Model),
		}, nil
	}

	return nil, fmt.Errorf("unknown message type %q", msg.Type)
}
