package config_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/staffing-engine/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staffing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, uint(8080), cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
port: 9090
databasePath: /var/lib/staffing.db
cacheTTL: 30s
matcher:
  skillWeight: 0.5
  allowEquivalentSeniority: true
`)

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, uint(9090), cfg.Port)
	assert.Equal(t, "/var/lib/staffing.db", cfg.DatabasePath)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 0.5, cfg.Matcher.SkillWeight)
	assert.Equal(t, 0.6, cfg.Matcher.AvailabilityWeight) // untouched default
	assert.True(t, cfg.Matcher.AllowEquivalentSeniority)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, ""))

	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	path := writeConfig(t, "port: 9090\n")
	t.Setenv("STAFFING_PORT", "7070")
	t.Setenv("STAFFING_LOG_LEVEL", "debug")
	t.Setenv("STAFFING_CACHE_TTL", "0s")
	t.Setenv("STAFFING_CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("STAFFING_MATCHER_SENIORITY_WEIGHT", "0.3")

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, uint(7070), cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Zero(t, cfg.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 0.3, cfg.Matcher.SeniorityWeight)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	_, err := config.Load(writeConfig(t, "prot: 9090\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "prot")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"port zero", func(c *config.Config) { c.Port = 0 }},
		{"no database", func(c *config.Config) { c.DatabasePath = "" }},
		{"bad level", func(c *config.Config) { c.LogLevel = "chatty" }},
		{"negative ttl", func(c *config.Config) { c.CacheTTL = -time.Second }},
		{"no shutdown timeout", func(c *config.Config) { c.ShutdownTimeout = 0 }},
		{"zero weights", func(c *config.Config) { c.Matcher = config.MatcherConfig{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel(false))
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel(true))

	cfg.LogLevel = "warn"
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel(false))
}

func TestEngineConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Matcher.AllowEquivalentSeniority = true

	ec := cfg.Engine(nil, nil)

	assert.Equal(t, cfg.CacheTTL, ec.CacheTTL)
	assert.Equal(t, 0.25, ec.Weights.SkillMatch)
	assert.True(t, ec.AllowEquivalentSeniority)
}

func TestContext(t *testing.T) {
	assert.Nil(t, config.FromContext(context.Background()))

	cfg := config.Default()
	ctx := config.WithContext(context.Background(), cfg)

	assert.Same(t, cfg, config.FromContext(ctx))
}
