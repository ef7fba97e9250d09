// Command simulate runs headless blackjack rounds with an AI-only roster,
// reporting per-player results and final chip counts. Useful for soaking
// the turn engine and for comparing models against the built-in fallback
// strategy.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjackforbots/internal/ai"
	"github.com/lox/blackjackforbots/internal/game"
	"github.com/lox/blackjackforbots/internal/randutil"
	"github.com/lox/blackjackforbots/internal/table"
)

var CLI struct {
	Rounds   int    `default:"10" help:"Number of rounds to simulate"`
	Players  int    `default:"3" help:"Number of AI players"`
	Endpoint string `help:"Completion endpoint URL (empty uses the built-in fallback strategy)"`
	Model    string `default:"llama3-8b-8192" help:"AI model for all players"`
	Seed     int64  `default:"0" help:"Shuffle seed (0 for random)"`
	Verbose  bool   `short:"v" help:"Verbose logging"`
}

// offlineCompleter fails every request so the adapter plays its fallback
// strategy: 5% bets, hit below 17.
type offlineCompleter struct{}

func (offlineCompleter) Complete(ctx context.Context, req ai.Request) (string, error) {
	return "", errors.New("offline")
}

func main() {
	kctx := kong.Parse(&CLI)

	logger := log.New(os.Stderr)
	if CLI.Verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}

	rng := randutil.NewFromTime()
	if CLI.Seed != 0 {
		rng = randutil.New(CLI.Seed)
	}

	cfg := game.DefaultConfig()
	if CLI.Players > cfg.MaxPlayers {
		cfg.MaxPlayers = CLI.Players
	}
	reducer := game.NewReducer(cfg, rng, logger)

	var completer ai.Completer = offlineCompleter{}
	if CLI.Endpoint != "" {
		completer = ai.NewHTTPCompleter(CLI.Endpoint, logger)
	}
	// Fallback warnings are routine in offline mode, keep them quiet.
	adapterLogger := logger
	if CLI.Endpoint == "" && !CLI.Verbose {
		adapterLogger = log.New(io.Discard)
	}
	adapter := ai.NewAdapter(completer, quartz.NewReal(), ai.DefaultTimeout, adapterLogger)

	// No presentation pauses in a headless run.
	tbl := table.New(reducer, adapter, quartz.NewReal(), table.Options{}, logger)
	defer tbl.Close()

	// Replace the default human seat with an AI-only roster.
	defaultSeat := tbl.State().Players[0]
	for i := 0; i < CLI.Players; i++ {
		tbl.Dispatch(game.AddAIPlayer{Model: game.Model(CLI.Model)})
	}
	tbl.Dispatch(game.RemovePlayer{ID: defaultSeat.ID})

	fmt.Printf("Simulating %d rounds with %d AI players (%s)\n\n", CLI.Rounds, CLI.Players, CLI.Model)

	for round := 1; round <= CLI.Rounds; round++ {
		if err := runRound(tbl); err != nil {
			fmt.Printf("Round %d failed: %v\n", round, err)
			kctx.Exit(1)
		}

		s := tbl.State()
		fmt.Printf("Round %d:\n", round)
		for _, p := range s.Players {
			fmt.Printf("  %-14s %-24s $%d\n", p.Name, p.ResultMessage, p.Chips)
		}

		// A seat with no chips can never bet again, which blocks the
		// deal. Stop the run instead of stalling.
		if anyBroke(tbl.State()) {
			fmt.Println("\nA player is out of chips, stopping.")
			break
		}

		tbl.Dispatch(game.StartBettingPhase{})
	}

	fmt.Println("\nFinal chips:")
	for _, p := range tbl.State().Players {
		fmt.Printf("  %-14s $%d\n", p.Name, p.Chips)
	}
}

// runRound waits for all AI bets, deals, and waits for the round to play
// out to game over.
func runRound(tbl *table.Table) error {
	if err := waitFor(tbl, 30*time.Second, allBetsPlaced); err != nil {
		return fmt.Errorf("waiting for bets: %w", err)
	}

	tbl.Dispatch(game.Deal{})

	if err := waitFor(tbl, 2*time.Minute, func(s game.State) bool {
		return s.Phase == game.GameOver
	}); err != nil {
		return fmt.Errorf("waiting for game over: %w", err)
	}
	return nil
}

func waitFor(tbl *table.Table, timeout time.Duration, cond func(game.State) bool) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond(tbl.State()) {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return errors.New("timed out")
}

func allBetsPlaced(s game.State) bool {
	if s.Phase != game.Betting {
		return false
	}
	for _, p := range s.Players {
		if p.Bet == 0 {
			return false
		}
	}
	return true
}

func anyBroke(s game.State) bool {
	for _, p := range s.Players {
		if p.Chips == 0 {
			return true
		}
	}
	return false
}
