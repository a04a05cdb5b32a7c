// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"

	"github.com/jonathan/hiring-bias-game/internal/store"
)

// Config is read from the environment and optionally overlaid by a JSON file.
// CLI flags win over both.
type Config struct {
	// Server
	Port int `json:"port,omitempty" env:"PORT" envDefault:"8080"`

	// Storage
	StoreBackend string `json:"store_backend,omitempty" env:"STORE_BACKEND" envDefault:"memory"` // memory, postgres or sqlite
	DatabaseURL  string `json:"database_url,omitempty" env:"DATABASE_URL"`                        // PostgreSQL connection URL
	SQLitePath   string `json:"sqlite_path,omitempty" env:"SQLITE_PATH" envDefault:"data/biasgame.db"`

	// Provider
	APIKey     string        `json:"api_key,omitempty" env:"GEMINI_API_KEY"` // Gemini API key; empty means local fallbacks only
	LLMTimeout time.Duration `json:"-" env:"LLM_TIMEOUT" envDefault:"30s"`

	// Model overrides per tier; empty keeps the built-in model
	LiteModel     string `json:"lite_model,omitempty" env:"GEMINI_MODEL_LITE"`
	StandardModel string `json:"standard_model,omitempty" env:"GEMINI_MODEL_STANDARD"`

	// Game
	MaxRounds          int `json:"max_rounds,omitempty" env:"MAX_ROUNDS" envDefault:"5"`
	CandidatesPerRound int `json:"candidates_per_round,omitempty" env:"CANDIDATES_PER_ROUND" envDefault:"3"`

	// Observability
	LogLevel     string `json:"log_level,omitempty" env:"LOG_LEVEL" envDefault:"info"`
	OTelEndpoint string `json:"otel_endpoint,omitempty" env:"OTEL_EXPORTER_ENDPOINT"` // OTLP/HTTP endpoint URL; empty disables tracing
	ServiceName  string `json:"service_name,omitempty" env:"OTEL_SERVICE_NAME" envDefault:"biasgame"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	switch c.StoreBackend {
	case store.KindMemory:
	case store.KindPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres store")
		}
	case store.KindSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("config error: 'sqlite_path' is required for the sqlite store")
		}
	default:
		return fmt.Errorf("config error: unknown store backend %q (want memory, postgres or sqlite)", c.StoreBackend)
	}

	if c.MaxRounds < 1 {
		return fmt.Errorf("config error: 'max_rounds' must be at least 1")
	}
	if c.CandidatesPerRound < 1 {
		return fmt.Errorf("config error: 'candidates_per_round' must be at least 1")
	}
	if c.LLMTimeout < 0 {
		return fmt.Errorf("config error: 'llm_timeout' must be non-negative")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to overlay a config file on top of the environment.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.StoreBackend == "" {
		result.StoreBackend = defaults.StoreBackend
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SQLitePath == "" {
		result.SQLitePath = defaults.SQLitePath
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.OTelEndpoint == "" {
		result.OTelEndpoint = defaults.OTelEndpoint
	}
	if result.ServiceName == "" {
		result.ServiceName = defaults.ServiceName
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxRounds == 0 {
		result.MaxRounds = defaults.MaxRounds
	}
	if result.CandidatesPerRound == 0 {
		result.CandidatesPerRound = defaults.CandidatesPerRound
	}
	if result.LLMTimeout == 0 {
		result.LLMTimeout = defaults.LLMTimeout
	}

	return result
}

// StoreOptions returns the options for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Kind:        c.StoreBackend,
		DatabaseURL: c.DatabaseURL,
		SQLitePath:  c.SQLitePath,
	}
}
