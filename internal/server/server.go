// Package server exposes a blackjack table over WebSocket and HTTP. Every
// accepted client message becomes a dispatched game action, and every
// state change is broadcast to all connected clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/lox/blackjackforbots/internal/game"
	"github.com/lox/blackjackforbots/internal/table"
)

// Server routes client messages to a table and broadcasts its state.
type Server struct {
	cfg    *Config
	table  *table.Table
	hub    *Hub
	http   *http.Server
	logger *log.Logger
}

// New creates a server for the given table.
func New(cfg *Config, tbl *table.Table, logger *log.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		table:  tbl,
		logger: logger.WithPrefix("server"),
	}
	s.hub = NewHub(s.handleClientMessage, s.handleConnect, logger)

	tbl.Subscribe(func(state game.State) {
		msg, err := NewMessage(MsgState, state)
		if err != nil {
			s.logger.Error("failed to encode state broadcast", "error", err)
			return
		}
		data, _ := json.Marshal(msg)
		s.hub.Broadcast(data)
	})

	router := mux.NewRouter()
	router.HandleFunc("/ws", s.hub.ServeWS)
	router.HandleFunc("/api/state", s.handleState).Methods("GET")
	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	s.http = &http.Server{
		Addr:         cfg.ListenAddress(),
		Handler:      c.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Run starts the hub and HTTP listener, blocking until the context is
// cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

// handleClientMessage decodes an inbound message, applies boundary
// checks and dispatches the resulting action. Errors go back to the
// sending client only; state broadcasts reach everyone via the table
// subscription.
func (s *Server) handleClientMessage(c *Client, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(c, "bad_message", "malformed message")
		return
	}

	action, err := decodeAction(&msg, game.Model(s.cfg.AI.DefaultModel))
	if err != nil {
		s.sendError(c, "bad_message", err.Error())
		return
	}

	// Seats can only change while bets are open. The engine itself
	// tolerates mid-round roster edits; the boundary does not.
	if rosterMessage(msg.Type) && s.table.State().Phase != game.Betting {
		s.sendError(c, "wrong_phase", "players can only be changed during betting")
		return
	}

	s.logger.Debug("dispatching client action", "type", msg.Type)
	s.table.Dispatch(action)
}

// handleConnect greets a new client and sends them the current state so
// they can render the table without waiting for the next dispatch.
func (s *Server) handleConnect(c *Client) {
	if msg, err := NewMessage(MsgWelcome, WelcomeData{Message: "Connected to blackjack server"}); err == nil {
		data, _ := json.Marshal(msg)
		c.Send(data)
	}
	if msg, err := NewMessage(MsgState, s.table.State()); err == nil {
		data, _ := json.Marshal(msg)
		c.Send(data)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.table.State()); err != nil {
		s.logger.Error("failed to encode state", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) sendError(c *Client, code, message string) {
	msg, err := NewMessage(MsgError, ErrorData{Code: code, Message: message})
	if err != nil {
		return
	}
	data, _ := json.Marshal(msg)
	c.Send(data)
}
