package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"sketchparty/internal/domain"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Game    GameConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host string
	Port int
	Env  string // "development" or "production"
}

// GameConfig holds game-related configuration. Every timer the engine arms
// comes from here.
type GameConfig struct {
	MinPlayers       int
	DefaultMaxRounds int
	MaxRoundsLimit   int
	TurnDuration     time.Duration
	InterTurnDelay   time.Duration
	GuessEndDelay    time.Duration
	BotChooseDelay   time.Duration
	BotOfferDelay    time.Duration
	GracePeriod      time.Duration
	WordOptionCount  int
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Default returns the configuration defaults
func Default() *Config {
	settings := domain.DefaultGameSettings()

	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Env:  "development",
		},
		Game: GameConfig{
			MinPlayers:       settings.MinPlayers,
			DefaultMaxRounds: settings.DefaultMaxRounds,
			MaxRoundsLimit:   settings.MaxRoundsLimit,
			TurnDuration:     settings.TurnDuration,
			InterTurnDelay:   settings.InterTurnDelay,
			GuessEndDelay:    settings.GuessEndDelay,
			BotChooseDelay:   settings.BotChooseDelay,
			BotOfferDelay:    settings.BotOfferDelay,
			GracePeriod:      settings.GracePeriod,
			WordOptionCount:  settings.WordOptionCount,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// RegisterFlags declares the command-line flags that populate this config
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.Server.Host, "host", "H", c.Server.Host, "address to bind to (env: SKETCHPARTY_HOST)")
	fs.IntVarP(&c.Server.Port, "port", "p", c.Server.Port, "port to listen on (env: SKETCHPARTY_PORT)")
	fs.StringVar(&c.Server.Env, "env", c.Server.Env, "deployment environment (env: SKETCHPARTY_ENV)")

	fs.DurationVar(&c.Game.TurnDuration, "turn-duration", c.Game.TurnDuration, "drawing time per turn (env: SKETCHPARTY_TURN_DURATION)")
	fs.DurationVar(&c.Game.GracePeriod, "grace-period", c.Game.GracePeriod, "time a fully disconnected room survives before deletion (env: SKETCHPARTY_GRACE_PERIOD)")
	fs.IntVar(&c.Game.DefaultMaxRounds, "default-max-rounds", c.Game.DefaultMaxRounds, "rounds played when the creator doesn't pick (env: SKETCHPARTY_DEFAULT_MAX_ROUNDS)")

	fs.StringVar(&c.Logging.Level, "log-level", c.Logging.Level, "log level: debug, info, warn, error (env: SKETCHPARTY_LOG_LEVEL)")
	fs.StringVar(&c.Logging.Format, "log-format", c.Logging.Format, "log format: text or json (env: SKETCHPARTY_LOG_FORMAT)")
}

// BindEnv overlays SKETCHPARTY_* environment variables onto any flags the
// user didn't set explicitly
func BindEnv(fs *pflag.FlagSet) {
	v := viper.New()
	v.SetEnvPrefix("SKETCHPARTY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}

// Validate checks the configuration for nonsense values
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Server.Port)
	}
	if c.Game.TurnDuration < time.Second {
		return errors.New("turn duration must be at least one second")
	}
	if c.Game.DefaultMaxRounds < 1 || c.Game.DefaultMaxRounds > c.Game.MaxRoundsLimit {
		return fmt.Errorf("default max rounds must be between 1 and %d", c.Game.MaxRoundsLimit)
	}
	return nil
}

// GameSettings converts the game section into engine settings
func (c *Config) GameSettings() domain.GameSettings {
	return domain.GameSettings{
		MinPlayers:       c.Game.MinPlayers,
		DefaultMaxRounds: c.Game.DefaultMaxRounds,
		MaxRoundsLimit:   c.Game.MaxRoundsLimit,
		TurnDuration:     c.Game.TurnDuration,
		InterTurnDelay:   c.Game.InterTurnDelay,
		GuessEndDelay:    c.Game.GuessEndDelay,
		BotChooseDelay:   c.Game.BotChooseDelay,
		BotOfferDelay:    c.Game.BotOfferDelay,
		GracePeriod:      c.Game.GracePeriod,
		WordOptionCount:  c.Game.WordOptionCount,
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// GetAddr returns the server address in host:port format
func (c *Config) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
