package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-bias-game/internal/store"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_BACKEND", "DATABASE_URL", "SQLITE_PATH", "GEMINI_API_KEY", "LLM_TIMEOUT", "MAX_ROUNDS", "LOG_LEVEL", "OTEL_EXPORTER_ENDPOINT", "GEMINI_MODEL_LITE", "GEMINI_MODEL_STANDARD"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, store.KindMemory, cfg.StoreBackend)
	assert.Equal(t, "data/biasgame.db", cfg.SQLitePath)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 5, cfg.MaxRounds)
	assert.Equal(t, 3, cfg.CandidatesPerRound)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.OTelEndpoint)
	assert.Empty(t, cfg.LiteModel)
	assert.Empty(t, cfg.StandardModel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/biasgame")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("MAX_ROUNDS", "3")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("GEMINI_MODEL_STANDARD", "gemini-2.5-pro")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, store.KindPostgres, cfg.StoreBackend)
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 3, cfg.MaxRounds)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.StandardModel)
	assert.Equal(t, store.Options{Kind: "postgres", DatabaseURL: "postgres://localhost/biasgame", SQLitePath: "data/biasgame.db"}, cfg.StoreOptions())
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("MAX_ROUNDS", "many")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env")
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"port": 7000,
		"store_backend": "sqlite",
		"sqlite_path": "/tmp/game.db",
		"max_rounds": 4
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, store.KindSQLite, cfg.StoreBackend)
	assert.Equal(t, "/tmp/game.db", cfg.SQLitePath)
	assert.Equal(t, 4, cfg.MaxRounds)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func validConfig() Config {
	return Config{
		Port:               8080,
		StoreBackend:       store.KindMemory,
		SQLitePath:         "data/biasgame.db",
		LLMTimeout:         30 * time.Second,
		MaxRounds:          5,
		CandidatesPerRound: 3,
		LogLevel:           "info",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"postgres without url", func(c *Config) { c.StoreBackend = store.KindPostgres }, "database_url"},
		{"postgres with url", func(c *Config) { c.StoreBackend = store.KindPostgres; c.DatabaseURL = "postgres://db" }, ""},
		{"sqlite without path", func(c *Config) { c.StoreBackend = store.KindSQLite; c.SQLitePath = "" }, "sqlite_path"},
		{"unknown backend", func(c *Config) { c.StoreBackend = "redis" }, "unknown store backend"},
		{"port out of range", func(c *Config) { c.Port = 70000 }, "port"},
		{"zero rounds", func(c *Config) { c.MaxRounds = 0 }, "max_rounds"},
		{"zero candidates", func(c *Config) { c.CandidatesPerRound = 0 }, "candidates_per_round"},
		{"negative timeout", func(c *Config) { c.LLMTimeout = -time.Second }, "llm_timeout"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "config error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	file := Config{Port: 7000, StoreBackend: store.KindSQLite}
	defaults := validConfig()
	defaults.APIKey = "from-env"

	merged := file.MergeWithDefaults(defaults)

	assert.Equal(t, 7000, merged.Port)
	assert.Equal(t, store.KindSQLite, merged.StoreBackend)
	assert.Equal(t, "from-env", merged.APIKey)
	assert.Equal(t, 5, merged.MaxRounds)
	assert.Equal(t, 30*time.Second, merged.LLMTimeout)
	assert.Equal(t, "info", merged.LogLevel)
}
