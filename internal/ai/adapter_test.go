package ai

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjackforbots/internal/deck"
	"github.com/lox/blackjackforbots/internal/game"
)

// stubCompleter returns a canned reply or error, tracking concurrency
type stubCompleter struct {
	reply string
	err   error
	delay time.Duration

	calls       atomic.Int32
	inflight    atomic.Int32
	maxInflight atomic.Int32
}

func (s *stubCompleter) Complete(ctx context.Context, req Request) (string, error) {
	s.calls.Add(1)
	cur := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		max := s.maxInflight.Load()
		if cur <= max || s.maxInflight.CompareAndSwap(max, cur) {
			break
		}
	}

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

func newTestAdapter(completer Completer, timeout time.Duration) *Adapter {
	logger := log.New(io.Discard)
	return NewAdapter(completer, quartz.NewReal(), timeout, logger)
}

func TestDecideBetParsesReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		chips int
		want  int
	}{
		{"plain number", "50", 1000, 50},
		{"number with prose", "I would bet $75.", 1000, 75},
		{"clamped to minimum", "3", 1000, 10},
		{"clamped to 500", "9999", 1000, 500},
		{"capped at chips", "400", 120, 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(&stubCompleter{reply: tt.reply}, 0)
			bet, fallback := a.DecideBet(context.Background(), tt.chips, game.ModelLlama8B)
			assert.Equal(t, tt.want, bet)
			assert.False(t, fallback)
		})
	}
}

func TestDecideBetFallbacks(t *testing.T) {
	t.Run("error reply uses 5 percent fallback", func(t *testing.T) {
		a := newTestAdapter(&stubCompleter{err: errors.New("boom")}, 0)
		bet, fallback := a.DecideBet(context.Background(), 1000, game.ModelLlama8B)
		assert.Equal(t, 50, bet)
		assert.True(t, fallback)
	})

	t.Run("fallback clamps to 100", func(t *testing.T) {
		a := newTestAdapter(&stubCompleter{err: errors.New("boom")}, 0)
		bet, _ := a.DecideBet(context.Background(), 5000, game.ModelLlama8B)
		assert.Equal(t, 100, bet)
	})

	t.Run("fallback clamps to 10 and caps at chips", func(t *testing.T) {
		a := newTestAdapter(&stubCompleter{err: errors.New("boom")}, 0)
		bet, _ := a.DecideBet(context.Background(), 40, game.ModelLlama8B)
		assert.Equal(t, 10, bet)
		bet, _ = a.DecideBet(context.Background(), 7, game.ModelLlama8B)
		assert.Equal(t, 7, bet)
	})

	t.Run("garbage reply falls back", func(t *testing.T) {
		a := newTestAdapter(&stubCompleter{reply: "all in, obviously"}, 0)
		bet, fallback := a.DecideBet(context.Background(), 1000, game.ModelLlama8B)
		assert.Equal(t, 50, bet)
		assert.True(t, fallback)
	})

	t.Run("timeout falls back", func(t *testing.T) {
		a := newTestAdapter(&stubCompleter{reply: "50", delay: time.Second}, 5*time.Millisecond)
		bet, fallback := a.DecideBet(context.Background(), 1000, game.ModelLlama8B)
		assert.Equal(t, 50, bet)
		assert.True(t, fallback)
	})
}

func TestDecideHitOrStandParsesReply(t *testing.T) {
	hand := []deck.Card{
		{Suit: deck.Hearts, Rank: deck.Ten, FaceUp: true, ID: "t"},
		{Suit: deck.Spades, Rank: deck.Six, FaceUp: true, ID: "t"},
	}

	tests := []struct {
		name  string
		reply string
		want  Decision
	}{
		{"plain hit", "HIT", DecisionHit},
		{"plain stand", "STAND", DecisionStand},
		{"lowercase", "i would stand here", DecisionStand},
		{"hit wins when both appear", "I could stand, but HIT is better", DecisionHit},
		{"hit inside prose", "Hitting seems right", DecisionHit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(&stubCompleter{reply: tt.reply}, 0)
			got, fallback := a.DecideHitOrStand(context.Background(), hand, 16, nil, nil, game.ModelLlama8B)
			assert.Equal(t, tt.want, got)
			assert.False(t, fallback)
		})
	}
}

func TestDecideHitOrStandFallback(t *testing.T) {
	hand := []deck.Card{
		{Suit: deck.Hearts, Rank: deck.Ten, FaceUp: true, ID: "t"},
		{Suit: deck.Spades, Rank: deck.Six, FaceUp: true, ID: "t"},
	}

	decide := func(a *Adapter, score int) (Decision, bool) {
		return a.DecideHitOrStand(context.Background(), hand, score, nil, nil, game.ModelLlama8B)
	}

	t.Run("error uses score rule", func(t *testing.T) {
		a := newTestAdapter(&stubCompleter{err: errors.New("boom")}, 0)
		got, fallback := decide(a, 16)
		assert.Equal(t, DecisionHit, got)
		assert.True(t, fallback)
		got, _ = decide(a, 17)
		assert.Equal(t, DecisionStand, got)
	})

	t.Run("ambiguous reply uses score rule", func(t *testing.T) {
		a := newTestAdapter(&stubCompleter{reply: "hmm, tough spot"}, 0)
		got, fallback := decide(a, 12)
		assert.Equal(t, DecisionHit, got)
		assert.True(t, fallback)
		got, _ = decide(a, 20)
		assert.Equal(t, DecisionStand, got)
	})

	t.Run("timeout uses score rule", func(t *testing.T) {
		a := newTestAdapter(&stubCompleter{reply: "HIT", delay: time.Second}, 5*time.Millisecond)
		got, fallback := decide(a, 19)
		assert.Equal(t, DecisionStand, got)
		assert.True(t, fallback)
	})
}

func TestSingleFlight(t *testing.T) {
	stub := &stubCompleter{reply: "50", delay: 10 * time.Millisecond}
	a := newTestAdapter(stub, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.DecideBet(context.Background(), 1000, game.ModelLlama8B)
		}()
	}
	wg.Wait()

	require.Equal(t, int32(4), stub.calls.Load())
	assert.Equal(t, int32(1), stub.maxInflight.Load(), "at most one request in flight")
}

func TestProviderForModel(t *testing.T) {
	assert.Equal(t, ProviderGoogle, ProviderForModel("gemini-1.5-flash-latest"))
	assert.Equal(t, ProviderGroq, ProviderForModel("llama3-8b-8192"))
	assert.Equal(t, ProviderGroq, ProviderForModel(""))
}
