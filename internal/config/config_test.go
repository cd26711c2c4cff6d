package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "ENRICH_BASE_URL", "ENRICH_API_KEY", "PORT", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultMaxConcurrentRequests, cfg.MaxConcurrentRequests)
	assert.Equal(t, DefaultPacingDelay, cfg.PacingDelay())
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL())
	assert.Equal(t, "info", cfg.LogLevel)
	require.NotNil(t, cfg.Weights)
	assert.Equal(t, 100.0, cfg.Weights.Sum())
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"port": 9999,
		"enrich_base_url": "https://profiles.example.com",
		"max_concurrent_requests": 5,
		"pacing_delay_ms": 200,
		"cache_ttl_seconds": 60,
		"weights": {"open_to_work": 25, "skill_match": 25, "job_stability": 25, "platform_engagement": 25}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "https://profiles.example.com", cfg.EnrichBaseURL)
	assert.Equal(t, 5, cfg.MaxConcurrentRequests)
	assert.Equal(t, 200*time.Millisecond, cfg.PacingDelay())
	assert.Equal(t, time.Minute, cfg.CacheTTL())
	assert.Equal(t, 25.0, cfg.Weights.OpenToWork)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/talentscope")
	t.Setenv("ENRICH_BASE_URL", "https://profiles.example.com")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/talentscope", cfg.DatabaseURL)
	assert.Equal(t, "https://profiles.example.com", cfg.EnrichBaseURL)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "loud")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_InvalidURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENRICH_BASE_URL", "not a url")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_NonPositiveWeightSum(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"weights": {"open_to_work": 0, "skill_match": 0, "job_stability": 0, "platform_engagement": 0}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
