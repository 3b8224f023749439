package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete server configuration.
type Config struct {
	Server Settings     `hcl:"server,block"`
	Games  []GameConfig `hcl:"game,block"`
}

// Settings contains server-level configuration.
type Settings struct {
	Address             string `hcl:"address,optional"`
	Port                int    `hcl:"port,optional"`
	LogLevel            string `hcl:"log_level,optional"`
	ChallengeTTLSeconds int    `hcl:"challenge_ttl_seconds,optional"`
	AIDelayMinMillis    int    `hcl:"ai_delay_min_ms,optional"`
	AIDelayMaxMillis    int    `hcl:"ai_delay_max_ms,optional"`
}

// GameConfig overrides per-game defaults from the catalog.
type GameConfig struct {
	Type       string `hcl:"type,label"`
	MaxPlayers int    `hcl:"max_players,optional"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: Settings{
			Address:             "0.0.0.0",
			Port:                8080,
			LogLevel:            "info",
			ChallengeTTLSeconds: 30,
			AIDelayMinMillis:    800,
			AIDelayMaxMillis:    2000,
		},
	}
}

// LoadConfig loads configuration from an HCL file, filling defaults for
// anything missing. A missing file yields the defaults. The PORT
// environment variable overrides the configured port either way.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(filename); err == nil {
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCLFile(filename)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
		}

		var parsed Config
		if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
		}
		applyDefaults(&parsed)
		config = &parsed
	}

	if port := os.Getenv("PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		config.Server.Port = n
	}

	return config, nil
}

func applyDefaults(c *Config) {
	def := DefaultConfig().Server
	if c.Server.Address == "" {
		c.Server.Address = def.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.LogLevel
	}
	if c.Server.ChallengeTTLSeconds == 0 {
		c.Server.ChallengeTTLSeconds = def.ChallengeTTLSeconds
	}
	if c.Server.AIDelayMinMillis == 0 {
		c.Server.AIDelayMinMillis = def.AIDelayMinMillis
	}
	if c.Server.AIDelayMaxMillis == 0 {
		c.Server.AIDelayMaxMillis = def.AIDelayMaxMillis
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.ChallengeTTLSeconds < 1 {
		return fmt.Errorf("challenge TTL must be positive, got %d", c.Server.ChallengeTTLSeconds)
	}
	if c.Server.AIDelayMinMillis < 0 || c.Server.AIDelayMaxMillis < c.Server.AIDelayMinMillis {
		return fmt.Errorf("invalid AI delay bounds [%d, %d]",
			c.Server.AIDelayMinMillis, c.Server.AIDelayMaxMillis)
	}
	for _, g := range c.Games {
		if g.MaxPlayers < 2 {
			return fmt.Errorf("game %s: max players must be at least 2, got %d", g.Type, g.MaxPlayers)
		}
	}
	return nil
}

// ListenAddress returns the host:port the server binds.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// ChallengeTTL returns the pending-challenge lifetime.
func (c *Config) ChallengeTTL() time.Duration {
	return time.Duration(c.Server.ChallengeTTLSeconds) * time.Second
}

// AIDelayBounds returns the jitter window for bot moves.
func (c *Config) AIDelayBounds() (min, max time.Duration) {
	return time.Duration(c.Server.AIDelayMinMillis) * time.Millisecond,
		time.Duration(c.Server.AIDelayMaxMillis) * time.Millisecond
}

// MaxPlayersFor returns the configured capacity for a game type, or the
// fallback when the file does not override it.
func (c *Config) MaxPlayersFor(gameType string, fallback int) int {
	for _, g := range c.Games {
		if g.Type == gameType && g.MaxPlayers > 0 {
			return g.MaxPlayers
		}
	}
	return fallback
}
