package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjackforbots/internal/ai"
	"github.com/lox/blackjackforbots/internal/game"
	"github.com/lox/blackjackforbots/internal/randutil"
	"github.com/lox/blackjackforbots/internal/server"
	"github.com/lox/blackjackforbots/internal/table"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"blackjack.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Seed     int64  `long:"seed" help:"Shuffle seed (overrides config, 0 for random)"`
}

func main() {
	kctx := kong.Parse(&CLI)

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Addr != "" {
		if host, port, ok := strings.Cut(CLI.Addr, ":"); ok {
			cfg.Server.Address = host
			fmt.Sscanf(port, "%d", &cfg.Server.Port)
		} else {
			cfg.Server.Address = CLI.Addr
		}
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Seed != 0 {
		cfg.Game.Seed = CLI.Seed
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	logger := newLogger(cfg.Server.LogLevel)

	rng := randutil.NewFromTime()
	if cfg.Game.Seed != 0 {
		rng = randutil.New(cfg.Game.Seed)
	}

	reducer := game.NewReducer(game.Config{
		StartingChips: cfg.Game.StartingChips,
		MaxPlayers:    cfg.Game.MaxPlayers,
	}, rng, logger)

	completer := ai.NewHTTPCompleter(cfg.AI.Endpoint, logger)
	adapter := ai.NewAdapter(completer, quartz.NewReal(), cfg.AITimeout(), logger)

	tbl := table.New(reducer, adapter, quartz.NewReal(), table.Options{
		DealerDelay: cfg.DealerDelay(),
		BetDelay:    cfg.BetDelay(),
		PlayDelay:   cfg.PlayDelay(),
	}, logger)
	defer tbl.Close()

	seatConfiguredPlayers(tbl, cfg, logger)

	srv := server.New(cfg, tbl, logger)

	logger.Info("Starting blackjack server",
		"addr", cfg.ListenAddress(),
		"chips", cfg.Game.StartingChips,
		"aiEndpoint", cfg.AI.Endpoint)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("Shutting down server...")
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server failed", "error", err)
		kctx.Exit(1)
	}
}

// seatConfiguredPlayers applies the config's player blocks on top of the
// default single-seat roster. Configured players are added first so the
// default seat is never the last one left and can be removed.
func seatConfiguredPlayers(tbl *table.Table, cfg *server.Config, logger *log.Logger) {
	if len(cfg.Players) == 0 {
		return
	}

	defaultSeat := tbl.State().Players[0]
	for i, p := range cfg.Players {
		state := tbl.Dispatch(game.AddPlayer{Name: p.Name})
		if p.Type == string(game.AI) {
			seated := state.Players[len(state.Players)-1]
			tbl.Dispatch(game.TogglePlayerType{
				PlayerID: seated.ID,
				Type:     game.AI,
				Model:    game.Model(p.Model),
			})
		}
		if i == 0 {
			// Frees the default seat so a full roster still fits.
			tbl.Dispatch(game.RemovePlayer{ID: defaultSeat.ID})
		}
		logger.Info("Seated player", "name", p.Name, "type", p.Type)
	}
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}
