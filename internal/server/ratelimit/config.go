package ratelimit

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EndpointConfig limits one endpoint or, when Path ends in "/", every path under it.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int           // requests per Window
	Window time.Duration
	Burst  int           // defaults to Limit when 0
}

// envConfig is the environment surface of the limiter.
type envConfig struct {
	Enabled         bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	DefaultLimit    int           `env:"RATE_LIMIT_DEFAULT_LIMIT" envDefault:"1000"`
	DefaultWindow   time.Duration `env:"RATE_LIMIT_DEFAULT_WINDOW" envDefault:"1m"`
	CleanupInterval time.Duration `env:"RATE_LIMIT_CLEANUP_INTERVAL" envDefault:"5m"`
	IdleTTL         time.Duration `env:"RATE_LIMIT_IDLE_TTL" envDefault:"1h"`
	LLMLimit        int           `env:"RATE_LIMIT_LLM_LIMIT" envDefault:"60"`
	LLMWindow       time.Duration `env:"RATE_LIMIT_LLM_WINDOW" envDefault:"1h"`
	LLMBurst        int           `env:"RATE_LIMIT_LLM_BURST" envDefault:"10"`
	Whitelist       []string      `env:"RATE_LIMIT_WHITELIST" envSeparator:","`
	Blacklist       []string      `env:"RATE_LIMIT_BLACKLIST" envSeparator:","`
}

// LoadConfig reads RATE_LIMIT_* variables from the environment.
func LoadConfig() (*Config, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if !ec.Enabled {
		return &Config{Enabled: false}, nil
	}
	if ec.LLMWindow <= 0 || ec.DefaultWindow <= 0 {
		return nil, fmt.Errorf("rate limit windows must be positive")
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    ec.DefaultLimit,
		DefaultWindow:   ec.DefaultWindow,
		CleanupInterval: ec.CleanupInterval,
		IdleTTL:         ec.IdleTTL,
		Whitelist:       ipSet(ec.Whitelist),
		Blacklist:       ipSet(ec.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(ec.LLMLimit, ec.LLMWindow, ec.LLMBurst),
	}, nil
}

// DefaultEndpointConfigs returns the endpoint tiers. Every /api/openai/ call shares
// the LLM budget; writes get a moderate limit; reads fall through to the default.
func DefaultEndpointConfigs(llmLimit int, llmWindow time.Duration, llmBurst int) []EndpointConfig {
	return []EndpointConfig{
		// Tier 1: provider-backed generation
		{Path: "/api/openai/", Method: "POST", Limit: llmLimit, Window: llmWindow, Burst: llmBurst},

		// Tier 2: game writes, including round generation
		{Path: "/api/game/", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/api/candidates", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
	}
}

func ipSet(ips []string) map[string]bool {
	out := make(map[string]bool, len(ips))
	for _, ip := range ips {
		if ip = strings.TrimSpace(ip); ip != "" {
			out[ip] = true
		}
	}
	return out
}
