package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/blackjackforbots/internal/game"
)

// Config represents the complete server configuration
type Config struct {
	Server  ServerSettings `hcl:"server,block"`
	Game    GameSettings   `hcl:"game,block"`
	AI      AISettings     `hcl:"ai,block"`
	Players []PlayerConfig `hcl:"player,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address        string   `hcl:"address,optional"`
	Port           int      `hcl:"port,optional"`
	LogLevel       string   `hcl:"log_level,optional"`
	AllowedOrigins []string `hcl:"allowed_origins,optional"`
}

// GameSettings contains table rules and pacing
type GameSettings struct {
	StartingChips int   `hcl:"starting_chips,optional"`
	MaxPlayers    int   `hcl:"max_players,optional"`
	DealerDelayMS int   `hcl:"dealer_delay_ms,optional"`
	BetDelayMS    int   `hcl:"bet_delay_ms,optional"`
	PlayDelayMS   int   `hcl:"play_delay_ms,optional"`
	Seed          int64 `hcl:"seed,optional"`
}

// AISettings configures the completion endpoint used for AI players
type AISettings struct {
	Endpoint       string `hcl:"endpoint,optional"`
	TimeoutSeconds int    `hcl:"timeout_seconds,optional"`
	DefaultModel   string `hcl:"default_model,optional"`
}

// PlayerConfig pre-seats a player at startup
type PlayerConfig struct {
	Name  string `hcl:"name,label"`
	Type  string `hcl:"type,optional"`
	Model string `hcl:"model,optional"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:        "localhost",
			Port:           8080,
			LogLevel:       "info",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Game: GameSettings{
			StartingChips: 1000,
			MaxPlayers:    4,
			DealerDelayMS: 1500,
			BetDelayMS:    800,
			PlayDelayMS:   1200,
		},
		AI: AISettings{
			Endpoint:       "http://localhost:3001/api/generate",
			TimeoutSeconds: 10,
			DefaultModel:   string(game.DefaultModel),
		},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to
// defaults when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	def := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = def.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = def.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = def.Server.LogLevel
	}
	if len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = def.Server.AllowedOrigins
	}
	if config.Game.StartingChips == 0 {
		config.Game.StartingChips = def.Game.StartingChips
	}
	if config.Game.MaxPlayers == 0 {
		config.Game.MaxPlayers = def.Game.MaxPlayers
	}
	if config.Game.DealerDelayMS == 0 {
		config.Game.DealerDelayMS = def.Game.DealerDelayMS
	}
	if config.Game.BetDelayMS == 0 {
		config.Game.BetDelayMS = def.Game.BetDelayMS
	}
	if config.Game.PlayDelayMS == 0 {
		config.Game.PlayDelayMS = def.Game.PlayDelayMS
	}
	if config.AI.Endpoint == "" {
		config.AI.Endpoint = def.AI.Endpoint
	}
	if config.AI.TimeoutSeconds == 0 {
		config.AI.TimeoutSeconds = def.AI.TimeoutSeconds
	}
	if config.AI.DefaultModel == "" {
		config.AI.DefaultModel = def.AI.DefaultModel
	}

	// Apply defaults to pre-seated players
	for i := range config.Players {
		if config.Players[i].Type == "" {
			config.Players[i].Type = string(game.Human)
		}
		if config.Players[i].Type == string(game.AI) && config.Players[i].Model == "" {
			config.Players[i].Model = config.AI.DefaultModel
		}
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Game.StartingChips <= 0 {
		return fmt.Errorf("starting chips must be positive")
	}
	if c.Game.MaxPlayers < 1 || c.Game.MaxPlayers > 8 {
		return fmt.Errorf("max players must be between 1 and 8")
	}

	if c.AI.TimeoutSeconds <= 0 {
		return fmt.Errorf("ai timeout must be positive")
	}

	if len(c.Players) > c.Game.MaxPlayers {
		return fmt.Errorf("%d players configured but max_players is %d", len(c.Players), c.Game.MaxPlayers)
	}
	for _, p := range c.Players {
		if p.Type != string(game.Human) && p.Type != string(game.AI) {
			return fmt.Errorf("player %s: invalid type %q", p.Name, p.Type)
		}
	}

	return nil
}

// ListenAddress returns the full listen address
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// AITimeout returns the AI request timeout as a duration
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// DealerDelay returns the dealer presentation delay as a duration
func (c *Config) DealerDelay() time.Duration {
	return time.Duration(c.Game.DealerDelayMS) * time.Millisecond
}

// BetDelay returns the AI bet pause as a duration
func (c *Config) BetDelay() time.Duration {
	return time.Duration(c.Game.BetDelayMS) * time.Millisecond
}

// PlayDelay returns the AI hit/stand pause as a duration
func (c *Config) PlayDelay() time.Duration {
	return time.Duration(c.Game.PlayDelayMS) * time.Millisecond
}
