package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjackforbots/internal/game"
)

func inbound(t *testing.T, msgType MessageType, data interface{}) *Message {
	t.Helper()
	msg, err := NewMessage(msgType, data)
	require.NoError(t, err)
	return msg
}

func TestDecodeAction(t *testing.T) {
	t.Run("place_bet", func(t *testing.T) {
		msg := inbound(t, MsgPlaceBet, PlaceBetData{PlayerID: "p1", Amount: 50})
		action, err := decodeAction(msg, game.DefaultModel)
		require.NoError(t, err)
		assert.Equal(t, game.PlaceBet{PlayerID: "p1", Amount: 50}, action)
	})

	t.Run("payload-free types", func(t *testing.T) {
		cases := map[MessageType]game.Action{
			MsgDeal:     game.Deal{},
			MsgHit:      game.Hit{},
			MsgStand:    game.Stand{},
			MsgReset:    game.Reset{},
			MsgNewRound: game.StartBettingPhase{},
		}
		for msgType, want := range cases {
			action, err := decodeAction(&Message{Type: msgType}, game.DefaultModel)
			require.NoError(t, err, "type %s", msgType)
			assert.Equal(t, want, action)
		}
	})

	t.Run("add_ai_player defaults the model", func(t *testing.T) {
		action, err := decodeAction(&Message{Type: MsgAddAIPlayer}, game.ModelLlama70B)
		require.NoError(t, err)
		assert.Equal(t, game.AddAIPlayer{Model: game.ModelLlama70B}, action)
	})

	t.Run("add_ai_player with explicit model", func(t *testing.T) {
		msg := inbound(t, MsgAddAIPlayer, AddAIPlayerData{Model: string(game.ModelGeminiFlash)})
		action, err := decodeAction(msg, game.DefaultModel)
		require.NoError(t, err)
		assert.Equal(t, game.AddAIPlayer{Model: game.ModelGeminiFlash}, action)
	})

	t.Run("toggle_player_type", func(t *testing.T) {
		msg := inbound(t, MsgTogglePlayerType, TogglePlayerTypeData{PlayerID: "p2", Type: "ai"})
		action, err := decodeAction(msg, game.DefaultModel)
		require.NoError(t, err)
		assert.Equal(t, game.TogglePlayerType{PlayerID: "p2", Type: game.AI}, action)
	})

	t.Run("add_player requires a name", func(t *testing.T) {
		msg := inbound(t, MsgAddPlayer, AddPlayerData{})
		_, err := decodeAction(msg, game.DefaultModel)
		require.Error(t, err)
	})

	t.Run("malformed payload", func(t *testing.T) {
		msg := &Message{Type: MsgPlaceBet, Data: json.RawMessage(`"not an object"`)}
		_, err := decodeAction(msg, game.DefaultModel)
		require.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := decodeAction(&Message{Type: "split"}, game.DefaultModel)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown message type")
	})
}

func TestRosterMessage(t *testing.T) {
	assert.True(t, rosterMessage(MsgAddPlayer))
	assert.True(t, rosterMessage(MsgRemovePlayer))
	assert.True(t, rosterMessage(MsgAddAIPlayer))
	assert.True(t, rosterMessage(MsgTogglePlayerType))
	assert.False(t, rosterMessage(MsgPlaceBet))
	assert.False(t, rosterMessage(MsgHit))
}
