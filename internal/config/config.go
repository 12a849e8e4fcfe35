// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"devils-dice/internal/game/agent"
	"devils-dice/internal/game/table"
)

// ErrInvalidSimulation is returned when the simulation section cannot run.
var ErrInvalidSimulation = errors.New("invalid simulation config")

// Config holds all application configuration.
type Config struct {
	Game       GameConfig       `mapstructure:"game"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Log        LogConfig        `mapstructure:"log"`
	Service    ServiceConfig    `mapstructure:"service"`
}

// GameConfig holds the rule amounts of a table.
type GameConfig struct {
	MinPlayers      int `mapstructure:"min_players"`
	MaxPlayers      int `mapstructure:"max_players"`
	MaxHand         int `mapstructure:"max_hand"`
	StartingTokens  int `mapstructure:"starting_tokens"`
	StartingDice    int `mapstructure:"starting_dice"`
	RaiseHellTokens int `mapstructure:"raise_hell_tokens"`
	HarvestTokens   int `mapstructure:"harvest_tokens"`
	ExtortTokens    int `mapstructure:"extort_tokens"`
	ReapSoulCost    int `mapstructure:"reap_soul_cost"`
	SatansStealCost int `mapstructure:"satans_steal_cost"`
}

// DatabaseConfig holds PostgreSQL connection configuration for the match
// archive.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// SimulationConfig drives the random-agent games run by the CLI.
type SimulationConfig struct {
	Games         int     `mapstructure:"games"`
	Players       int     `mapstructure:"players"`
	Seed          int64   `mapstructure:"seed"`
	Concurrency   int     `mapstructure:"concurrency"`
	MaxSteps      int     `mapstructure:"max_steps"`
	ChallengeRate float64 `mapstructure:"challenge_rate"`
	BlockRate     float64 `mapstructure:"block_rate"`
	BluffRate     float64 `mapstructure:"bluff_rate"`
}

// Validate checks the simulation against the rules it will be played under.
func (s *SimulationConfig) Validate(rules table.Rules) error {
	switch {
	case s.Players < rules.MinPlayers || s.Players > rules.MaxPlayers:
		return fmt.Errorf("%w: players %d outside %d..%d", ErrInvalidSimulation, s.Players, rules.MinPlayers, rules.MaxPlayers)
	case s.Games < 0:
		return fmt.Errorf("%w: games %d", ErrInvalidSimulation, s.Games)
	case s.MaxSteps <= 0:
		return fmt.Errorf("%w: max steps %d", ErrInvalidSimulation, s.MaxSteps)
	case s.Concurrency < 0:
		return fmt.Errorf("%w: concurrency %d", ErrInvalidSimulation, s.Concurrency)
	}
	rates := []struct {
		name string
		v    float64
	}{
		{"challenge rate", s.ChallengeRate},
		{"block rate", s.BlockRate},
		{"bluff rate", s.BluffRate},
	}
	for _, r := range rates {
		if r.v < 0 || r.v > 1 {
			return fmt.Errorf("%w: %s %v outside 0..1", ErrInvalidSimulation, r.name, r.v)
		}
	}
	return nil
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// ServiceConfig holds table service configuration.
type ServiceConfig struct {
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Rules converts the game section into table rules.
func (g *GameConfig) Rules() table.Rules {
	return table.Rules{
		MinPlayers:      g.MinPlayers,
		MaxPlayers:      g.MaxPlayers,
		MaxHand:         g.MaxHand,
		StartingTokens:  g.StartingTokens,
		StartingDice:    g.StartingDice,
		RaiseHellTokens: g.RaiseHellTokens,
		HarvestTokens:   g.HarvestTokens,
		ExtortTokens:    g.ExtortTokens,
		ReapSoulCost:    g.ReapSoulCost,
		SatansStealCost: g.SatansStealCost,
	}
}

// Agent returns the random-agent rates.
func (s *SimulationConfig) Agent() agent.Config {
	return agent.Config{
		ChallengeRate: s.ChallengeRate,
		BlockRate:     s.BlockRate,
		BluffRate:     s.BluffRate,
	}
}

// ZerologLevel parses the configured level, falling back to info.
func (l *LogConfig) ZerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in configPath, the working directory and ./config.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. GAME_MAX_HAND, DATABASE_HOST, SIMULATION_GAMES
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

	rules := cfg.Game.Rules()
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	if err := cfg.Simulation.Validate(rules); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	rules := table.DefaultRules()
	v.SetDefault("game.min_players", rules.MinPlayers)
	v.SetDefault("game.max_players", rules.MaxPlayers)
	v.SetDefault("game.max_hand", rules.MaxHand)
	v.SetDefault("game.starting_tokens", rules.StartingTokens)
	v.SetDefault("game.starting_dice", rules.StartingDice)
	v.SetDefault("game.raise_hell_tokens", rules.RaiseHellTokens)
	v.SetDefault("game.harvest_tokens", rules.HarvestTokens)
	v.SetDefault("game.extort_tokens", rules.ExtortTokens)
	v.SetDefault("game.reap_soul_cost", rules.ReapSoulCost)
	v.SetDefault("game.satans_steal_cost", rules.SatansStealCost)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "devilsdice")
	v.SetDefault("database.name", "devilsdice")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("simulation.games", 10)
	v.SetDefault("simulation.players", 4)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.concurrency", 4)
	v.SetDefault("simulation.max_steps", 5000)
	v.SetDefault("simulation.challenge_rate", 0.2)
	v.SetDefault("simulation.block_rate", 0.5)
	v.SetDefault("simulation.bluff_rate", 0.3)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)

	v.SetDefault("service.lock_timeout", "5s")
}
