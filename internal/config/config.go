// Package config loads kbo-gamecenter settings.
//
// Values are layered, lowest precedence first: built-in defaults, an
// optional YAML file, then KBO_* environment variables. Keys are flat and
// snake_case in every layer (db_path in YAML, KBO_DB_PATH in the
// environment). Durations accept Go syntax such as "12h" or "500ms".
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/kbo-gamecenter/internal/game"
	"github.com/pfrederiksen/kbo-gamecenter/internal/logger"
	"github.com/pfrederiksen/kbo-gamecenter/internal/observability"
	"github.com/pfrederiksen/kbo-gamecenter/internal/realtime"
	"github.com/pfrederiksen/kbo-gamecenter/internal/schedule"
	"github.com/pfrederiksen/kbo-gamecenter/internal/scraper"
	"github.com/pfrederiksen/kbo-gamecenter/internal/storage"
)

// Sentinel error kinds for this package
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// MaxAttemptsLimit bounds max_attempts
const MaxAttemptsLimit = 10

// Config contains process configuration
type Config struct {
	// DBPath is the SQLite file holding the schedule cache.
	DBPath string `koanf:"db_path"`

	// ScheduleURL is the month schedule page to collect from.
	ScheduleURL string `koanf:"schedule_url"`

	// Series is the season filter for date queries, e.g. "0,9,6".
	Series string `koanf:"series"`

	// ScheduleTTL is how long a collected month is trusted.
	ScheduleTTL time.Duration `koanf:"schedule_ttl"`

	// DetailTTL is how long a game-center payload is served from memory.
	DetailTTL time.Duration `koanf:"detail_ttl"`

	// MinInterval spaces dispatches of one detail kind.
	MinInterval time.Duration `koanf:"min_interval"`

	// MaxAttempts bounds source calls per detail fetch.
	MaxAttempts int `koanf:"max_attempts"`

	// InitialBackoff is the wait before the second attempt; it doubles after.
	InitialBackoff time.Duration `koanf:"initial_backoff"`

	HTTPTimeout time.Duration `koanf:"http_timeout"`
	UserAgent   string        `koanf:"user_agent"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel  string `koanf:"log_level"`
	LogPretty bool   `koanf:"log_pretty"`

	// Addr configures the HTTP listen address of the serve command.
	Addr string `koanf:"addr"`

	// CORSOrigins lists the browser origins allowed to call the HTTP API.
	// Empty allows any origin. Comma-separated in the environment.
	CORSOrigins []string `koanf:"cors_origins"`

	// Tracing exports spans over OTLP/gRPC when OTelEnabled is set.
	OTelEnabled     bool    `koanf:"otel_enabled"`
	OTelEndpoint    string  `koanf:"otel_endpoint"`
	OTelInsecure    bool    `koanf:"otel_insecure"`
	OTelSampleRatio float64 `koanf:"otel_sample_ratio"`
	ServiceName     string  `koanf:"service_name"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DBPath:         storage.DefaultPath,
		ScheduleURL:    scraper.ScheduleURL,
		Series:         game.DefaultSeries,
		ScheduleTTL:    schedule.DefaultTTL,
		DetailTTL:      realtime.DefaultTTL,
		MinInterval:    realtime.DefaultMinInterval,
		MaxAttempts:    realtime.DefaultMaxAttempts,
		InitialBackoff: realtime.DefaultInitialBackoff,
		HTTPTimeout:    scraper.Timeout,
		UserAgent:      scraper.UserAgent,
		LogLevel:       "info",
		Addr:           ":8080",

		OTelEndpoint:    "localhost:4317",
		OTelSampleRatio: 1.0,
		ServiceName:     "kbo-gamecenter",
	}
}

// Validate checks the configuration and reports every problem found
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("db_path must not be empty"))
	}
	if strings.TrimSpace(c.ScheduleURL) == "" {
		errs = append(errs, errors.New("schedule_url must not be empty"))
	}
	if strings.TrimSpace(c.Series) == "" {
		errs = append(errs, errors.New("series must not be empty"))
	}
	if c.ScheduleTTL <= 0 {
		errs = append(errs, errors.New("schedule_ttl must be positive"))
	}
	if c.DetailTTL <= 0 {
		errs = append(errs, errors.New("detail_ttl must be positive"))
	}
	if c.MinInterval < 0 {
		errs = append(errs, errors.New("min_interval must not be negative"))
	}
	if c.MaxAttempts < 1 || c.MaxAttempts > MaxAttemptsLimit {
		errs = append(errs, fmt.Errorf("max_attempts must be between 1 and %d", MaxAttemptsLimit))
	}
	if c.InitialBackoff <= 0 {
		errs = append(errs, errors.New("initial_backoff must be positive"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("http_timeout must be positive"))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.OTelSampleRatio < 0 || c.OTelSampleRatio > 1 {
		errs = append(errs, fmt.Errorf("otel_sample_ratio %v must be within [0, 1]", c.OTelSampleRatio))
	}
	if c.OTelEnabled && strings.TrimSpace(c.OTelEndpoint) == "" {
		errs = append(errs, errors.New("otel_endpoint is required when otel_enabled is set"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// RealtimeOptions returns the detail fetch policy
func (c *Config) RealtimeOptions() realtime.Options {
	return realtime.Options{
		TTL:            c.DetailTTL,
		MinInterval:    c.MinInterval,
		MaxAttempts:    c.MaxAttempts,
		InitialBackoff: c.InitialBackoff,
	}
}

// Tracing returns the OpenTelemetry exporter settings
func (c *Config) Tracing() observability.TracingConfig {
	return observability.TracingConfig{
		Enabled:     c.OTelEnabled,
		Endpoint:    c.OTelEndpoint,
		Insecure:    c.OTelInsecure,
		SampleRatio: c.OTelSampleRatio,
		ServiceName: c.ServiceName,
	}
}
