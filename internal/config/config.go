// Package config loads server settings: built-in defaults, then an
// optional YAML file, then STAFFING_* environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/warp/staffing-engine/staffing"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "STAFFING"

type Config struct {
	Port            uint          `yaml:"port"            envconfig:"PORT"`
	DatabasePath    string        `yaml:"databasePath"                          split_words:"true"`
	LogLevel        string        `yaml:"logLevel"                              split_words:"true"`
	CORSOrigins     []string      `yaml:"corsOrigins"     envconfig:"CORS_ORIGINS"`
	CacheTTL        time.Duration `yaml:"cacheTTL"        envconfig:"CACHE_TTL"`
	SweepInterval   time.Duration `yaml:"sweepInterval"                         split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"                       split_words:"true"`
	Matcher         MatcherConfig `yaml:"matcher"`
}

// MatcherConfig is read from STAFFING_MATCHER_* in the environment.
type MatcherConfig struct {
	AvailabilityWeight       float64 `yaml:"availabilityWeight"       split_words:"true"`
	SkillWeight              float64 `yaml:"skillWeight"              split_words:"true"`
	SeniorityWeight          float64 `yaml:"seniorityWeight"          split_words:"true"`
	AllowEquivalentSeniority bool    `yaml:"allowEquivalentSeniority" split_words:"true"`
}

func Default() *Config {
	w := staffing.DefaultWeights()
	return &Config{
		Port:            8080,
		DatabasePath:    "staffing.db",
		LogLevel:        "info",
		CORSOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		CacheTTL:        5 * time.Minute,
		SweepInterval:   time.Minute,
		ShutdownTimeout: 30 * time.Second,
		Matcher: MatcherConfig{
			AvailabilityWeight: w.Availability,
			SkillWeight:        w.SkillMatch,
			SeniorityWeight:    w.Seniority,
		},
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Port == 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("databasePath is required"))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("cacheTTL must not be negative"))
	}
	if c.SweepInterval < 0 {
		errs = append(errs, errors.New("sweepInterval must not be negative"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdownTimeout must be positive"))
	}
	if err := c.Weights().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Config) Weights() staffing.Weights {
	return staffing.Weights{
		Availability: c.Matcher.AvailabilityWeight,
		SkillMatch:   c.Matcher.SkillWeight,
		Seniority:    c.Matcher.SeniorityWeight,
	}
}

// SlogLevel maps LogLevel; debug forces debug regardless.
func (c *Config) SlogLevel(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// Engine derives the engine settings.
func (c *Config) Engine(logger *slog.Logger, reg prometheus.Registerer) staffing.Config {
	return staffing.Config{
		CacheTTL:                 c.CacheTTL,
		SweepInterval:            c.SweepInterval,
		Weights:                  c.Weights(),
		AllowEquivalentSeniority: c.Matcher.AllowEquivalentSeniority,
		Registerer:               reg,
		Logger:                   logger,
	}
}

type contextKey struct{}

// WithContext stores cfg for subcommands that run after the root loads it.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, contextKey{}, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(contextKey{}).(*Config)
	return cfg
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
