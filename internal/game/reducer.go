package game

import (
	"fmt"
	rand "math/rand/v2"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjackforbots/internal/deck"
)

// Config carries the table rules that are not part of the state itself
type Config struct {
	StartingChips int
	MaxPlayers    int
}

// DefaultConfig returns the standard table rules
func DefaultConfig() Config {
	return Config{
		StartingChips: 1000,
		MaxPlayers:    4,
	}
}

// Reducer owns the transition function. Reduce is pure with respect to the
// incoming state: it returns a new State and never mutates its argument.
// The rng is only consulted when a Deal builds a fresh deck.
type Reducer struct {
	cfg    Config
	rng    *rand.Rand
	logger *log.Logger
}

// NewReducer creates a reducer with the given rules and shuffle source
func NewReducer(cfg Config, rng *rand.Rand, logger *log.Logger) *Reducer {
	if cfg.MaxPlayers == 0 {
		cfg = DefaultConfig()
	}
	return &Reducer{
		cfg:    cfg,
		rng:    rng,
		logger: logger.WithPrefix("game"),
	}
}

// NewState returns the initial table state with a single human seat
func (r *Reducer) NewState() State {
	return State{
		Players:      []Player{NewPlayer("Player 1", r.cfg.StartingChips)},
		Dealer:       newDealer(),
		Phase:        Betting,
		IsPlayerTurn: true,
		Message:      "Place your bets to start the game",
	}
}

// Reduce applies one action and returns the next state. Actions that are not
// applicable in the current phase leave the state unchanged apart from an
// advisory message; there is no error path.
func (r *Reducer) Reduce(s State, action Action) State {
	switch a := action.(type) {
	case PlaceBet:
		return r.placeBet(s, a)
	case Deal:
		return r.deal(s)
	case Hit:
		return r.hit(s)
	case Stand:
		return r.stand(s)
	case Reset:
		return r.reset(s)
	case AddPlayer:
		return r.addPlayer(s, a)
	case RemovePlayer:
		return r.removePlayer(s, a)
	case AddAIPlayer:
		return r.addAIPlayer(s, a)
	case TogglePlayerType:
		return r.togglePlayerType(s, a)
	case StartBettingPhase:
		return r.startBettingPhase(s)
	case ProcessDealerTurn:
		return r.processDealerTurn(s, a)
	case SetAIThinking:
		s.AIThinking = Thinking{PlayerID: a.PlayerID, Activity: a.Activity}
		if p := s.PlayerByID(a.PlayerID); p != nil {
			s.Message = fmt.Sprintf("%s is thinking...", p.Name)
		}
		return s
	case ClearAIThinking:
		s.AIThinking = Thinking{}
		return s
	case UpdateMessage:
		s.Message = a.Message
		return s
	default:
		return s
	}
}

func (r *Reducer) placeBet(s State, a PlaceBet) State {
	if s.Phase != Betting {
		return s
	}

	player := s.PlayerByID(a.PlayerID)
	if player == nil {
		s.Message = "Invalid bet: Unknown player"
		return s
	}
	if a.Amount <= 0 {
		s.Message = "Invalid bet: Bet must be positive"
		return s
	}
	// A player re-betting gets their previous escrow back first.
	if a.Amount > player.Chips+player.Bet {
		s.Message = "Invalid bet: Not enough chips"
		return s
	}

	players := clonePlayers(s.Players)
	for i := range players {
		if players[i].ID == a.PlayerID {
			players[i].Chips += players[i].Bet
			players[i].Bet = a.Amount
			players[i].Chips -= a.Amount
		}
	}
	s.Players = players

	if allPlayersHaveBets(players) {
		s.Message = `All bets placed! Click "Deal Cards" to begin.`
	} else {
		s.Message = fmt.Sprintf("%s placed a bet of $%d. Waiting for other players...", player.Name, a.Amount)
	}
	return s
}

func (r *Reducer) deal(s State) State {
	if s.Phase != Betting {
		return s
	}
	if !allPlayersHaveBets(s.Players) {
		s.Message = "All players must place a bet before dealing"
		return s
	}

	d := deck.New(r.rng)

	// Single deck shared across all draws in deal order: each player in
	// roster order gets two face-up cards, then the dealer gets one up and
	// one down.
	players := clonePlayers(s.Players)
	for i := range players {
		hand := []deck.Card{d.Draw(true), d.Draw(true)}
		players[i].Hand = hand
		players[i].Score = deck.Score(hand)
		players[i].HasBusted = false
		players[i].HasBlackjack = deck.IsBlackjack(hand)
		players[i].HasStood = players[i].HasBlackjack // blackjack auto-stands
		players[i].IsActive = false
		players[i].ResultMessage = ""
	}

	dealer := newDealer()
	dealer.Hand = []deck.Card{d.Draw(true), d.Draw(false)}
	dealer.Score = deck.Score(dealer.Hand) // hole card hidden, counts 0
	dealer.HasBlackjack = deck.IsBlackjack(dealer.Hand)

	firstActive := findNextEligible(players, -1)

	phase := PlayerTurns
	message := ""
	currentIndex := 0
	if firstActive >= 0 {
		currentIndex = firstActive
		players[firstActive].IsActive = true
		message = fmt.Sprintf("%s's turn", players[firstActive].Name)
	} else {
		phase = DealerTurn
		message = "All players have Blackjack! Checking dealer..."
	}
	if dealer.HasBlackjack {
		phase = DealerTurn
		message = "Dealer has Blackjack!"
	}

	r.logger.Debug("dealt new round",
		"round", s.Round+1,
		"players", len(players),
		"dealerUp", dealer.Hand[0].String(),
		"phase", phase)

	s.Deck = d
	s.Players = players
	s.Dealer = dealer
	s.CurrentPlayerIndex = currentIndex
	s.Phase = phase
	s.IsPlayerTurn = phase == PlayerTurns
	s.Message = message
	s.Round++
	return s
}

func (r *Reducer) hit(s State) State {
	if s.Phase != PlayerTurns || !s.IsPlayerTurn {
		return s
	}
	current := s.CurrentPlayer()
	if current == nil {
		return s
	}

	card := s.Deck.Draw(true)
	players := clonePlayers(s.Players)
	p := &players[s.CurrentPlayerIndex]
	p.Hand = append(p.Hand, card)
	p.Score = deck.Score(p.Hand)
	busted := deck.IsBust(p.Hand)
	p.HasBusted = busted
	if busted {
		p.HasStood = true
	}

	r.logger.Debug("player hits",
		"player", p.Name,
		"card", card.String(),
		"score", p.Score,
		"busted", busted)

	if !busted {
		s.Players = players
		s.Message = fmt.Sprintf("%s hits and gets %s", p.Name, card)
		return s
	}

	return r.advanceTurn(s, players, fmt.Sprintf("%s busted!", p.Name))
}

func (r *Reducer) stand(s State) State {
	if s.Phase != PlayerTurns || !s.IsPlayerTurn {
		return s
	}
	current := s.CurrentPlayer()
	if current == nil {
		return s
	}

	players := clonePlayers(s.Players)
	p := &players[s.CurrentPlayerIndex]
	p.HasStood = true
	p.IsActive = false

	r.logger.Debug("player stands", "player", p.Name, "score", p.Score)

	return r.advanceTurn(s, players, fmt.Sprintf("%s stands.", p.Name))
}

// advanceTurn hands control to the next eligible player, scanning strictly
// forward from the current index, or moves to the dealer when none remain.
func (r *Reducer) advanceTurn(s State, players []Player, prefix string) State {
	next := findNextEligible(players, s.CurrentPlayerIndex)

	for i := range players {
		players[i].IsActive = i == next
	}
	s.Players = players

	if next == -1 {
		s.Phase = DealerTurn
		s.IsPlayerTurn = false
		s.Message = fmt.Sprintf("%s Dealer's turn.", prefix)
		return s
	}

	s.CurrentPlayerIndex = next
	s.Message = fmt.Sprintf("%s %s's turn", prefix, players[next].Name)
	return s
}

func (r *Reducer) reset(s State) State {
	players := make([]Player, len(s.Players))
	for i, p := range s.Players {
		fresh := NewPlayer(p.Name, r.cfg.StartingChips)
		fresh.ID = p.ID
		fresh.Type = p.Type
		fresh.Model = p.Model
		players[i] = fresh
	}

	state := r.NewState()
	state.Players = players
	return state
}

func (r *Reducer) addPlayer(s State, a AddPlayer) State {
	if len(s.Players) >= r.cfg.MaxPlayers {
		s.Message = fmt.Sprintf("Maximum %d players allowed", r.cfg.MaxPlayers)
		return s
	}

	players := clonePlayers(s.Players)
	players = append(players, NewPlayer(a.Name, r.cfg.StartingChips))
	s.Players = players
	s.Message = fmt.Sprintf("%s joined the game", a.Name)
	return s
}

func (r *Reducer) removePlayer(s State, a RemovePlayer) State {
	if len(s.Players) <= 1 {
		return s
	}

	players := make([]Player, 0, len(s.Players)-1)
	for _, p := range clonePlayers(s.Players) {
		if p.ID != a.ID {
			players = append(players, p)
		}
	}
	if len(players) == len(s.Players) {
		return s
	}

	s.Players = players
	if s.CurrentPlayerIndex >= len(players) {
		s.CurrentPlayerIndex = len(players) - 1
	}
	s.Message = "Player removed from the game"
	return s
}

func (r *Reducer) addAIPlayer(s State, a AddAIPlayer) State {
	if len(s.Players) >= r.cfg.MaxPlayers {
		s.Message = fmt.Sprintf("Maximum %d players allowed", r.cfg.MaxPlayers)
		return s
	}

	count := 0
	for _, p := range s.Players {
		if p.Type == AI {
			count++
		}
	}
	name := fmt.Sprintf("AI Player %d", count+1)

	players := clonePlayers(s.Players)
	players = append(players, NewAIPlayer(name, r.cfg.StartingChips, a.Model))
	s.Players = players
	s.Message = fmt.Sprintf("%s (AI - %s) joined the game", name, players[len(players)-1].Model)
	return s
}

func (r *Reducer) togglePlayerType(s State, a TogglePlayerType) State {
	players := clonePlayers(s.Players)
	var toggled *Player
	for i := range players {
		if players[i].ID != a.PlayerID {
			continue
		}
		p := &players[i]
		baseName := strings.TrimPrefix(p.Name, "AI ")
		if a.Type == AI {
			model := a.Model
			if model == "" {
				model = p.Model
			}
			if model == "" {
				model = DefaultModel
			}
			p.Type = AI
			p.Model = model
			p.Name = "AI " + baseName
		} else {
			p.Type = Human
			p.Model = ""
			p.Name = baseName
		}
		toggled = p
	}
	if toggled == nil {
		return s
	}

	s.Players = players
	s.Message = fmt.Sprintf("Player type changed for %s", toggled.Name)
	return s
}

func (r *Reducer) startBettingPhase(s State) State {
	if s.Phase != GameOver {
		return s
	}

	players := clonePlayers(s.Players)
	for i := range players {
		players[i].Bet = 0
		players[i].Hand = nil
		players[i].Score = 0
		players[i].HasBusted = false
		players[i].HasBlackjack = false
		players[i].HasStood = false
		players[i].IsActive = false
		players[i].ResultMessage = ""
	}

	s.Players = players
	s.Dealer = newDealer()
	s.Phase = Betting
	s.Message = "Place your bets to start the game"
	s.CurrentPlayerIndex = 0
	return s
}

func (r *Reducer) processDealerTurn(s State, a ProcessDealerTurn) State {
	if s.Phase != DealerTurn {
		return s
	}

	s.Players = a.Players
	s.Dealer = a.Dealer
	s.Deck = a.Deck
	s.Phase = GameOver
	s.IsPlayerTurn = false
	s.Message = "Game over! Start a new round to play again."
	return s
}

func allPlayersHaveBets(players []Player) bool {
	for _, p := range players {
		if p.Bet <= 0 {
			return false
		}
	}
	return true
}

// findNextEligible returns the index of the first player after from that has
// neither stood nor busted, or -1. No wraparound: players act in roster
// order exactly once.
func findNextEligible(players []Player, from int) int {
	for i := from + 1; i < len(players); i++ {
		if !players[i].HasStood && !players[i].HasBusted {
			return i
		}
	}
	return -1
}
