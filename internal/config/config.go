// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"dictionary-game-bot/internal/game"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Game      GameConfig      `mapstructure:"game"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	Migrate         bool          `mapstructure:"migrate"`
}

// StorageConfig selects where games are kept.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// GameConfig holds the round rules.
type GameConfig struct {
	MinPlayers      int           `mapstructure:"min_players"`
	MaxPlayers      int           `mapstructure:"max_players"`
	DevMode         bool          `mapstructure:"dev_mode"`
	DeveloperUserID int64         `mapstructure:"developer_user_id"`
	NextRoundWait   time.Duration `mapstructure:"next_round_wait"`
	MaxButtonsInRow int           `mapstructure:"max_buttons_in_row"`
	NativePoll      bool          `mapstructure:"native_poll"`
}

// ScoringConfig holds the point values of a round.
type ScoringConfig struct {
	VotePoints                     int64 `mapstructure:"vote_points"`
	GuessPoints                    int64 `mapstructure:"guess_points"`
	EveryoneGuessedPoints          int64 `mapstructure:"everyone_guessed_points"`
	NotEveryoneGuessedLeaderPoints int64 `mapstructure:"not_everyone_guessed_leader_points"`
	EveryoneGuessedLeaderPoints    int64 `mapstructure:"everyone_guessed_leader_points"`
}

// RateLimitConfig bounds how fast one user can hit the bot.
type RateLimitConfig struct {
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. BOT_TOKEN, GAME_MIN_PLAYERS, SCORING_VOTE_POINTS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.token", "")
	v.SetDefault("bot.poll_timeout", "10s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dictionary")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "dictionary")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")
	v.SetDefault("database.migrate", true)

	v.SetDefault("storage.driver", StoragePostgres)

	v.SetDefault("game.min_players", 4)
	v.SetDefault("game.max_players", 10)
	v.SetDefault("game.dev_mode", false)
	v.SetDefault("game.developer_user_id", 0)
	v.SetDefault("game.next_round_wait", "3s")
	v.SetDefault("game.max_buttons_in_row", 5)
	v.SetDefault("game.native_poll", false)

	v.SetDefault("scoring.vote_points", 1)
	v.SetDefault("scoring.guess_points", 3)
	v.SetDefault("scoring.everyone_guessed_points", 2)
	v.SetDefault("scoring.not_everyone_guessed_leader_points", 3)
	v.SetDefault("scoring.everyone_guessed_leader_points", 0)

	v.SetDefault("rate_limit.per_second", 2)
	v.SetDefault("rate_limit.burst", 5)

	v.SetDefault("log.level", "info")
}

// Validate rejects configurations the bot cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Game.MinPlayers < 1 {
		errs = append(errs, fmt.Errorf("game.min_players must be at least 1, got %d", c.Game.MinPlayers))
	}
	if c.Game.MaxPlayers < c.Game.MinPlayers {
		errs = append(errs, fmt.Errorf("game.max_players (%d) is below game.min_players (%d)", c.Game.MaxPlayers, c.Game.MinPlayers))
	}
	if c.Game.MaxButtonsInRow < 1 {
		errs = append(errs, fmt.Errorf("game.max_buttons_in_row must be positive"))
	}
	if c.Game.NextRoundWait < 0 {
		errs = append(errs, fmt.Errorf("game.next_round_wait must not be negative"))
	}
	switch c.Storage.Driver {
	case StoragePostgres, StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	if c.RateLimit.PerSecond <= 0 || c.RateLimit.Burst < 1 {
		errs = append(errs, fmt.Errorf("rate_limit.per_second and rate_limit.burst must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// EngineConfig converts the game and scoring sections for the game engine.
func (c *Config) EngineConfig() game.Config {
	return game.Config{
		MinPlayers:      c.Game.MinPlayers,
		MaxPlayers:      c.Game.MaxPlayers,
		DevMode:         c.Game.DevMode,
		DeveloperUserID: c.Game.DeveloperUserID,
		NextRoundWait:   c.Game.NextRoundWait,
		Points: game.Points{
			Vote:                     c.Scoring.VotePoints,
			Guess:                    c.Scoring.GuessPoints,
			EveryoneGuessed:          c.Scoring.EveryoneGuessedPoints,
			NotEveryoneGuessedLeader: c.Scoring.NotEveryoneGuessedLeaderPoints,
			EveryoneGuessedLeader:    c.Scoring.EveryoneGuessedLeaderPoints,
		},
	}
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
