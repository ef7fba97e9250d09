// Package table drives a blackjack game between dispatched actions and
// their side effects. Every state change flows through Dispatch, which
// applies the pure reducer and then schedules whatever follow-up work the
// new state calls for: AI betting, AI hit/stand decisions and the dealer's
// turn after a short presentation pause.
package table

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjackforbots/internal/ai"
	"github.com/lox/blackjackforbots/internal/deck"
	"github.com/lox/blackjackforbots/internal/game"
)

// Default pacing for table side effects. The pauses exist purely so human
// observers can follow what the AI players are doing.
const (
	DefaultDealerDelay = 1500 * time.Millisecond
	DefaultBetDelay    = 800 * time.Millisecond
	DefaultPlayDelay   = 1200 * time.Millisecond
)

// Options controls table pacing.
type Options struct {
	DealerDelay time.Duration // pause before the dealer plays out their hand
	BetDelay    time.Duration // pause before each AI bet request
	PlayDelay   time.Duration // pause before each AI hit/stand request
}

// DefaultOptions returns the standard table pacing.
func DefaultOptions() Options {
	return Options{
		DealerDelay: DefaultDealerDelay,
		BetDelay:    DefaultBetDelay,
		PlayDelay:   DefaultPlayDelay,
	}
}

// Subscriber receives a snapshot after every state change.
type Subscriber func(game.State)

// Table owns the authoritative game state for one blackjack table.
type Table struct {
	mu      sync.Mutex
	state   game.State
	reducer *game.Reducer

	adapter *ai.Adapter
	clock   quartz.Clock
	opts    Options
	logger  *log.Logger

	// Effect bookkeeping, guarded by mu. bettingActive is true while the
	// AI betting loop goroutine is running; decisionFor holds the ID of the
	// AI player with an outstanding hit/stand request; dealerPending is true
	// while the dealer presentation timer is armed.
	bettingActive bool
	decisionFor   string
	dealerPending bool

	subMu sync.Mutex
	subs  []Subscriber

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a table with a fresh single-player game.
func New(reducer *game.Reducer, adapter *ai.Adapter, clock quartz.Clock, opts Options, logger *log.Logger) *Table {
	ctx, cancel := context.WithCancel(context.Background())
	return &Table{
		state:   reducer.NewState(),
		reducer: reducer,
		adapter: adapter,
		clock:   clock,
		opts:    opts,
		logger:  logger.WithPrefix("table"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Close cancels any in-flight AI requests and pending timers. The table
// must not be dispatched to after Close.
func (t *Table) Close() {
	t.cancel()
}

// State returns a snapshot of the current game state.
func (t *Table) State() game.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Subscribe registers a callback invoked after every state change. The
// callback runs on the dispatching goroutine and must not call Dispatch.
func (t *Table) Subscribe(fn Subscriber) {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	t.subs = append(t.subs, fn)
}

// Dispatch applies an action to the table state and schedules any side
// effects the resulting state requires. It returns the new state.
func (t *Table) Dispatch(action game.Action) game.State {
	t.mu.Lock()
	next := t.reducer.Reduce(t.state, action)
	t.state = next
	t.mu.Unlock()

	t.notify(next)
	t.schedule(next)
	return next
}

func (t *Table) notify(s game.State) {
	t.subMu.Lock()
	subs := make([]Subscriber, len(t.subs))
	copy(subs, t.subs)
	t.subMu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}

// schedule inspects the state after a dispatch and kicks off whichever
// side effect it calls for. Each effect re-validates the state before
// dispatching its result, so a stale effect simply evaporates.
func (t *Table) schedule(s game.State) {
	switch s.Phase {
	case game.Betting:
		t.maybeStartBetting(s)
	case game.PlayerTurns:
		t.maybeRequestDecision(s)
	case game.DealerTurn:
		t.maybeScheduleDealer()
	}
}

// maybeStartBetting launches the AI betting loop if any AI player still
// owes a bet and the loop is not already running.
func (t *Table) maybeStartBetting(s game.State) {
	if t.adapter == nil || nextAIBettor(s) == nil {
		return
	}

	t.mu.Lock()
	if t.bettingActive {
		t.mu.Unlock()
		return
	}
	t.bettingActive = true
	t.mu.Unlock()

	go t.runBettingLoop()
}

// runBettingLoop places bets for AI players one at a time, in roster
// order, pausing before each request. It exits when no AI bets remain or
// the table leaves the betting phase.
func (t *Table) runBettingLoop() {
	defer func() {
		t.mu.Lock()
		t.bettingActive = false
		t.mu.Unlock()
	}()

	for {
		s := t.State()
		if s.Phase != game.Betting {
			return
		}
		p := nextAIBettor(s)
		if p == nil {
			return
		}

		if !t.sleep(t.opts.BetDelay) {
			return
		}

		// Re-check after the pause: a human may have reset the game or
		// removed the player while we waited.
		s = t.State()
		if s.Phase != game.Betting {
			return
		}
		cur := s.PlayerByID(p.ID)
		if cur == nil || cur.Bet > 0 {
			continue
		}

		t.Dispatch(game.SetAIThinking{PlayerID: p.ID, Activity: game.ActivityBetting})
		bet, fallback := t.adapter.DecideBet(t.ctx, cur.Chips, cur.Model)
		t.Dispatch(game.ClearAIThinking{})

		if t.ctx.Err() != nil {
			return
		}

		s = t.State()
		if s.Phase != game.Betting || s.PlayerByID(p.ID) == nil {
			t.logger.Debug("discarding stale bet", "player", p.Name, "bet", bet)
			continue
		}

		t.logger.Info("AI bet placed", "player", p.Name, "bet", bet, "fallback", fallback)
		t.Dispatch(game.PlaceBet{PlayerID: p.ID, Amount: bet})
		if fallback {
			t.Dispatch(game.UpdateMessage{Message: p.Name + " used a fallback bet."})
		}
	}
}

// maybeRequestDecision asks the AI adapter for a hit/stand decision when
// the active player is an AI. At most one request is outstanding at a
// time; it is keyed to the player so a repeat dispatch for the same turn
// is a no-op.
func (t *Table) maybeRequestDecision(s game.State) {
	if t.adapter == nil {
		return
	}
	p := s.CurrentPlayer()
	if p == nil || p.Type != game.AI || !p.IsActive {
		return
	}
	if p.HasStood || p.HasBusted || p.HasBlackjack {
		return
	}

	t.mu.Lock()
	if t.decisionFor == p.ID {
		t.mu.Unlock()
		return
	}
	t.decisionFor = p.ID
	t.mu.Unlock()

	snapshot := *p
	go t.runDecision(snapshot, s)
}

func (t *Table) runDecision(p game.Player, s game.State) {
	defer func() {
		t.mu.Lock()
		if t.decisionFor == p.ID {
			t.decisionFor = ""
		}
		t.mu.Unlock()
	}()

	if !t.sleep(t.opts.PlayDelay) {
		return
	}
	if !t.isCurrentAI(p.ID) {
		return
	}

	t.Dispatch(game.SetAIThinking{PlayerID: p.ID, Activity: game.ActivityPlaying})

	var dealerUp *deck.Card
	if up, ok := s.Dealer.UpCard(); ok {
		dealerUp = &up
	}

	others := otherPlayers(s, p.ID)
	decision, fallback := t.adapter.DecideHitOrStand(t.ctx, p.Hand, p.Score, dealerUp, others, p.Model)

	t.Dispatch(game.ClearAIThinking{})

	if t.ctx.Err() != nil {
		return
	}

	// The turn may have moved on while the model was thinking; a stale
	// decision is discarded rather than applied to the wrong player.
	if !t.isCurrentAI(p.ID) {
		t.logger.Debug("discarding stale decision", "player", p.Name, "decision", decision)
		return
	}

	t.logger.Info("AI decision", "player", p.Name, "decision", decision, "score", p.Score, "fallback", fallback)
	if fallback {
		t.Dispatch(game.UpdateMessage{Message: p.Name + " used a fallback move (" + string(decision) + ")."})
	}

	// Release the request slot first so a hit that leaves this player's
	// turn open can schedule the next decision.
	t.mu.Lock()
	t.decisionFor = ""
	t.mu.Unlock()

	switch decision {
	case ai.DecisionHit:
		t.Dispatch(game.Hit{})
	case ai.DecisionStand:
		t.Dispatch(game.Stand{})
	}
}

// maybeScheduleDealer arms the dealer presentation timer once per dealer
// turn. When it fires, the dealer's play and the payouts are computed
// from the state at that moment.
func (t *Table) maybeScheduleDealer() {
	t.mu.Lock()
	if t.dealerPending {
		t.mu.Unlock()
		return
	}
	t.dealerPending = true
	t.mu.Unlock()

	t.clock.AfterFunc(t.opts.DealerDelay, func() {
		t.mu.Lock()
		t.dealerPending = false
		if t.ctx.Err() != nil || t.state.Phase != game.DealerTurn {
			t.mu.Unlock()
			return
		}
		action := game.ResolveDealerTurn(t.state)
		next := t.reducer.Reduce(t.state, action)
		t.state = next
		t.mu.Unlock()

		t.notify(next)
		t.schedule(next)
	})
}

// sleep pauses for d on the table clock, returning false if the table was
// closed while waiting.
func (t *Table) sleep(d time.Duration) bool {
	if d <= 0 {
		return t.ctx.Err() == nil
	}
	done := make(chan struct{})
	timer := t.clock.AfterFunc(d, func() { close(done) })
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-t.ctx.Done():
		return false
	}
}

// isCurrentAI reports whether the player is still the active AI player
// whose turn it is.
func (t *Table) isCurrentAI(playerID string) bool {
	s := t.State()
	if s.Phase != game.PlayerTurns {
		return false
	}
	p := s.CurrentPlayer()
	return p != nil && p.ID == playerID && p.Type == game.AI && p.IsActive
}

// nextAIBettor returns the first AI player in roster order who still owes
// a bet, or nil.
func nextAIBettor(s game.State) *game.Player {
	for i := range s.Players {
		p := &s.Players[i]
		if p.Type == game.AI && p.Bet == 0 && p.Chips > 0 {
			return p
		}
	}
	return nil
}

// otherPlayers returns every player except the named one, for the
// decision prompt's view of the rest of the table.
func otherPlayers(s game.State, exceptID string) []game.Player {
	others := make([]game.Player, 0, len(s.Players))
	for _, p := range s.Players {
		if p.ID != exceptID {
			others = append(others, p)
		}
	}
	return others
}
