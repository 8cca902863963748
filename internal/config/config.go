// Package config provides Viper-based configuration loading for the agent.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// APIConfig holds remote game API settings.
type APIConfig struct {
	// BaseURL is the game API endpoint. Empty selects the built-in
	// simulator, which is the dry-run mode.
	BaseURL string `mapstructure:"base_url"`
	// Token is the bearer token for the game API.
	Token string `mapstructure:"token"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

// CharacterConfig binds one character to the goal it works toward.
type CharacterConfig struct {
	// Name is the character name as known to the game API.
	Name string `mapstructure:"name"`
	// Goal is the goal expression for this character; empty falls back to
	// agent.goal.
	Goal string `mapstructure:"goal"`
}

// AgentConfig holds planning and execution settings.
type AgentConfig struct {
	// Goal is the default goal expression for characters without their own.
	Goal string `mapstructure:"goal"`
	// Characters lists the characters this process drives.
	Characters []CharacterConfig `mapstructure:"characters"`
	// TickInterval paces goal cycles.
	TickInterval time.Duration `mapstructure:"tick_interval"`
	// MaxDepth bounds sub-goal recursion.
	MaxDepth int `mapstructure:"max_depth"`
	// MaxRetries bounds per-action retries after recovery.
	MaxRetries int `mapstructure:"max_retries"`
	// NodeBudget bounds search nodes expanded per planning call.
	NodeBudget int `mapstructure:"node_budget"`
	// GoalsDir is the directory of YAML goal templates; empty skips loading.
	GoalsDir string `mapstructure:"goals_dir"`
	// WorldData is the YAML file holding the bulk world data fetch (tiles,
	// monsters, resources, items).
	WorldData string `mapstructure:"world_data"`
}

// DatabaseConfig holds PostgreSQL connection settings for the optional
// run-history store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// HistoryConfig controls run-history persistence.
type HistoryConfig struct {
	// Enabled turns on PostgreSQL run recording. Disabled runs use a
	// no-op recorder and never touch the database.
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Database DatabaseConfig `mapstructure:"database"`
	History  HistoryConfig  `mapstructure:"history"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateAPI(c.API); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAgent(c.Agent); err != nil {
		errs = append(errs, err.Error())
	}
	if c.History.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAPI(a APIConfig) error {
	var errs []string
	if a.BaseURL != "" && a.Token == "" {
		errs = append(errs, "api.token must not be empty when api.base_url is set")
	}
	if a.Timeout < 0 {
		errs = append(errs, "api.timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAgent(a AgentConfig) error {
	var errs []string
	if len(a.Characters) == 0 {
		errs = append(errs, "agent.characters must list at least one character")
	}
	for i, ch := range a.Characters {
		if ch.Name == "" {
			errs = append(errs, fmt.Sprintf("agent.characters[%d].name must not be empty", i))
		}
		if ch.Goal == "" && a.Goal == "" {
			errs = append(errs, fmt.Sprintf("agent.characters[%d].goal must be set when agent.goal is empty", i))
		}
	}
	if a.TickInterval < 0 {
		errs = append(errs, "agent.tick_interval must not be negative")
	}
	if a.MaxDepth < 1 {
		errs = append(errs, fmt.Sprintf("agent.max_depth must be >= 1, got %d", a.MaxDepth))
	}
	if a.MaxRetries < 1 {
		errs = append(errs, fmt.Sprintf("agent.max_retries must be >= 1, got %d", a.MaxRetries))
	}
	if a.NodeBudget < 1 {
		errs = append(errs, fmt.Sprintf("agent.node_budget must be >= 1, got %d", a.NodeBudget))
	}
	if a.WorldData == "" {
		errs = append(errs, "agent.world_data must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// GoalFor returns the effective goal expression for a character entry.
func (c Config) GoalFor(ch CharacterConfig) string {
	if ch.Goal != "" {
		return ch.Goal
	}
	return c.Agent.Goal
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ARTIFACTS_ prefix
	v.SetEnvPrefix("ARTIFACTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	if v == nil {
		return Config{}, errors.New("config.LoadFromViper: viper instance is nil")
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.timeout", "30s")

	v.SetDefault("agent.tick_interval", "3s")
	v.SetDefault("agent.max_depth", 5)
	v.SetDefault("agent.max_retries", 3)
	v.SetDefault("agent.node_budget", 10000)
	v.SetDefault("agent.world_data", "content/world.yaml")
	v.SetDefault("agent.goals_dir", "content/goals")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "artifacts")
	v.SetDefault("database.password", "artifacts")
	v.SetDefault("database.name", "artifacts")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("history.enabled", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
