package ai

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/semaphore"

	"github.com/lox/blackjackforbots/internal/deck"
	"github.com/lox/blackjackforbots/internal/game"
)

// Decision is an AI player's hit-or-stand choice
type Decision string

const (
	DecisionHit   Decision = "HIT"
	DecisionStand Decision = "STAND"
)

// DefaultTimeout bounds a single completion request
const DefaultTimeout = 10 * time.Second

// Adapter turns game state into prompts for the completion collaborator and
// parses the replies back into bets and decisions. Every failure mode
// (network error, timeout, garbage reply) resolves to a deterministic
// fallback; the adapter never returns an error to the turn engine.
//
// A weighted semaphore keeps at most one completion request in flight across
// the table, so AI bets are answered one seat at a time and a second
// hit/stand request cannot be issued while one is outstanding.
type Adapter struct {
	completer Completer
	clock     quartz.Clock
	timeout   time.Duration
	inflight  *semaphore.Weighted
	logger    *log.Logger
}

// NewAdapter creates an adapter around a completer
func NewAdapter(completer Completer, clock quartz.Clock, timeout time.Duration, logger *log.Logger) *Adapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Adapter{
		completer: completer,
		clock:     clock,
		timeout:   timeout,
		inflight:  semaphore.NewWeighted(1),
		logger:    logger.WithPrefix("ai"),
	}
}

// DecideBet asks the model for a bet amount given the player's bankroll.
// The reply is clamped to [10, min(chips, 500)]; anything unusable falls
// back to 5% of the bankroll clamped to [10, 100] and capped at chips. The
// second return reports whether the fallback was used.
func (a *Adapter) DecideBet(ctx context.Context, chips int, model game.Model) (int, bool) {
	reply, err := a.complete(ctx, betPrompt(chips), model)
	if err != nil {
		a.logger.Warn("bet request failed, using fallback", "model", model, "error", err)
		return fallbackBet(chips), true
	}

	bet, ok := parseBet(reply)
	if !ok {
		a.logger.Warn("unparseable bet reply, using fallback", "model", model, "reply", truncate(reply))
		return fallbackBet(chips), true
	}

	return clampBet(bet, chips), false
}

// DecideHitOrStand asks the model whether to hit or stand. Ambiguous
// replies, errors and timeouts all fall back to the fixed rule: hit below
// 17, stand otherwise. The second return reports whether the fallback was
// used.
func (a *Adapter) DecideHitOrStand(ctx context.Context, hand []deck.Card, score int, dealerUp *deck.Card, others []game.Player, model game.Model) (Decision, bool) {
	prompt := decisionPrompt(hand, score, dealerUp, others)

	reply, err := a.complete(ctx, prompt, model)
	if err != nil {
		a.logger.Warn("decision request failed, using fallback", "model", model, "score", score, "error", err)
		return fallbackDecision(score), true
	}

	if decision, ok := parseDecision(reply); ok {
		a.logger.Debug("model decision", "model", model, "decision", decision, "reply", truncate(reply))
		return decision, false
	}

	a.logger.Warn("ambiguous decision reply, using fallback", "model", model, "reply", truncate(reply))
	return fallbackDecision(score), true
}

// complete performs one single-flight completion call bounded by the
// adapter's timeout.
func (a *Adapter) complete(ctx context.Context, prompt string, model game.Model) (string, error) {
	if err := a.inflight.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer a.inflight.Release(1)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	timedOut := make(chan struct{})
	timer := a.clock.AfterFunc(a.timeout, func() {
		close(timedOut)
		cancel()
	})
	defer timer.Stop()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := a.completer.Complete(ctx, Request{
			Prompt:   prompt,
			Provider: ProviderForModel(string(model)),
			Model:    string(model),
		})
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-timedOut:
		// The collaborator call is cancelled but may still complete; its
		// result is discarded.
		return "", context.DeadlineExceeded
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// parseBet strips everything but digits from a reply and parses the rest
func parseBet(reply string) (int, bool) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, reply)

	bet, err := strconv.Atoi(digits)
	if err != nil || bet <= 0 {
		return 0, false
	}
	return bet, true
}

// parseDecision searches the reply for HIT or STAND, case-insensitively.
// HIT takes precedence when both appear.
func parseDecision(reply string) (Decision, bool) {
	upper := strings.ToUpper(reply)
	if strings.Contains(upper, "HIT") {
		return DecisionHit, true
	}
	if strings.Contains(upper, "STAND") {
		return DecisionStand, true
	}
	return "", false
}

// fallbackBet is 5% of the bankroll clamped to [10, 100], capped at chips
func fallbackBet(chips int) int {
	bet := chips / 20
	if bet > 100 {
		bet = 100
	}
	if bet < 10 {
		bet = 10
	}
	if bet > chips {
		bet = chips
	}
	return bet
}

// clampBet bounds a parsed bet to [10, min(chips, 500)]
func clampBet(bet, chips int) int {
	if bet < 10 {
		bet = 10
	}
	if bet > 500 {
		bet = 500
	}
	if bet > chips {
		bet = chips
	}
	return bet
}

// fallbackDecision is the fixed basic strategy: hit below 17
func fallbackDecision(score int) Decision {
	if score < 17 {
		return DecisionHit
	}
	return DecisionStand
}

func truncate(s string) string {
	if len(s) > 100 {
		return s[:100] + "..."
	}
	return s
}
