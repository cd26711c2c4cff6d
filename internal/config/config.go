// Package config provides configuration loading and validation for the talentscope services.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/talentscope/talentscope/internal/types"
)

// Config represents service configuration loaded from a JSON file and/or
// environment variables. All fields are optional; missing values use defaults.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"`

	// External profile-lookup service
	EnrichBaseURL string `json:"enrich_base_url,omitempty" validate:"omitempty,url"`
	EnrichAPIKey  string `json:"enrich_api_key,omitempty"`

	// Scheduler
	MaxConcurrentRequests int `json:"max_concurrent_requests,omitempty" validate:"min=0"`
	PacingDelayMs         int `json:"pacing_delay_ms,omitempty" validate:"min=0"`
	CacheTTLSeconds       int `json:"cache_ttl_seconds,omitempty" validate:"min=0"`

	// Scoring
	Weights *types.ScoringWeights `json:"weights,omitempty"`

	// Logging
	LogLevel string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogJSON  bool   `json:"log_json,omitempty"`
}

// Defaults mirrors the behavior of the original service.
const (
	DefaultPort                  = 8080
	DefaultMaxConcurrentRequests = 3
	DefaultPacingDelay           = 100 * time.Millisecond
	DefaultCacheTTL              = 5 * time.Minute
)

// DefaultWeights returns the stock component weighting (percentages).
func DefaultWeights() types.ScoringWeights {
	return types.ScoringWeights{
		OpenToWork:         40,
		SkillMatch:         30,
		JobStability:       15,
		PlatformEngagement: 15,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from a JSON file. An empty path returns a zero
// config so callers can rely on env vars and defaults alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
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
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills unset fields from environment variables.
func (c *Config) applyEnv() {
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.EnrichBaseURL == "" {
		c.EnrichBaseURL = os.Getenv("ENRICH_BASE_URL")
	}
	if c.EnrichAPIKey == "" {
		c.EnrichAPIKey = os.Getenv("ENRICH_API_KEY")
	}
	if c.Port == 0 {
		if v, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
			c.Port = v
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = os.Getenv("LOG_LEVEL")
	}
}

// applyDefaults fills remaining zero values with service defaults.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.MaxConcurrentRequests == 0 {
		c.MaxConcurrentRequests = DefaultMaxConcurrentRequests
	}
	if c.PacingDelayMs == 0 {
		c.PacingDelayMs = int(DefaultPacingDelay / time.Millisecond)
	}
	if c.CacheTTLSeconds == 0 {
		c.CacheTTLSeconds = int(DefaultCacheTTL / time.Second)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Weights == nil {
		w := DefaultWeights()
		c.Weights = &w
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Weights != nil && c.Weights.Sum() <= 0 {
		return fmt.Errorf("config error: scoring weights must have a positive sum")
	}
	return nil
}

// PacingDelay returns the scheduler pacing delay as a duration.
func (c *Config) PacingDelay() time.Duration {
	return time.Duration(c.PacingDelayMs) * time.Millisecond
}

// CacheTTL returns the scheduler cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
