// Package config loads the HTTP server settings of the preview service.
// Fetch limits live with the fetcher (see fetcher.LoadConfig).
package config

import (
	"fmt"
	"time"

	"link-preview/internal/handler/http/middleware"
	envcfg "link-preview/pkg/config"
)

// Environments recognised by APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// ServerConfig holds everything cmd/api needs besides the fetch limits.
type ServerConfig struct {
	Port        string
	Environment string
	Version     string

	// PreviewConfigFile is an optional YAML file with fetch limits.
	PreviewConfigFile string

	RateLimit        RateLimitConfig
	CORSOrigins      []string
	CSPReportOnly    bool
	MaxBodyBytes     int64
	RequestTimeout   time.Duration
	ShutdownTimeout  time.Duration
	TraceSampleRatio float64
}

// RateLimitConfig configures the per-IP limiter.
type RateLimitConfig struct {
	Enabled         bool
	Limit           int
	Window          time.Duration
	TrustProxy      bool
	CleanupInterval time.Duration
}

// IsDevelopment reports whether internal error details may be exposed.
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// LoadServerConfig reads the server settings from the environment and
// validates them.
//
// The request timeout defaults to the fetch timeout plus five seconds so
// that the fetcher's own timeout fires first and yields a 408.
func LoadServerConfig(fetchTimeout time.Duration) (*ServerConfig, error) {
	env := envcfg.GetEnvString("APP_ENV", envcfg.GetEnvString("NODE_ENV", EnvDevelopment))

	defaultOrigins := []string{}
	if env != EnvProduction {
		defaultOrigins = middleware.DevelopmentOrigins
	}

	cfg := &ServerConfig{
		Port:              envcfg.GetEnvString("PORT", "3001"),
		Environment:       env,
		Version:           envcfg.GetEnvString("VERSION", "dev"),
		PreviewConfigFile: envcfg.GetEnvString("PREVIEW_CONFIG_FILE", ""),
		RateLimit: RateLimitConfig{
			Enabled:         envcfg.GetEnvBool("RATELIMIT_ENABLED", true),
			Limit:           envcfg.GetEnvInt("RATELIMIT_LIMIT", 10),
			Window:          envcfg.GetEnvDuration("RATELIMIT_WINDOW", time.Minute),
			TrustProxy:      envcfg.GetEnvBool("RATELIMIT_TRUST_PROXY", false),
			CleanupInterval: envcfg.GetEnvDuration("RATELIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		},
		CORSOrigins:      envcfg.GetEnvStringList("CORS_ALLOWED_ORIGINS", defaultOrigins),
		CSPReportOnly:    envcfg.GetEnvBool("CSP_REPORT_ONLY", false),
		MaxBodyBytes:     int64(envcfg.GetEnvInt("MAX_BODY_KB", 1024)) * 1024,
		RequestTimeout:   envcfg.GetEnvDuration("REQUEST_TIMEOUT", fetchTimeout+5*time.Second),
		ShutdownTimeout:  envcfg.GetEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		TraceSampleRatio: envcfg.GetEnvFloat("TRACE_SAMPLE_RATIO", 1.0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration correctness.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	switch c.Environment {
	case EnvDevelopment, EnvProduction, EnvTest:
	default:
		return fmt.Errorf("APP_ENV must be one of development, production, test; got %q", c.Environment)
	}

	if c.RateLimit.Limit < 1 || c.RateLimit.Limit > 10000 {
		return fmt.Errorf("RATELIMIT_LIMIT must be between 1 and 10000")
	}
	if err := envcfg.ValidateDurationRange(c.RateLimit.Window, time.Second, time.Hour); err != nil {
		return fmt.Errorf("RATELIMIT_WINDOW: %w", err)
	}
	if err := envcfg.ValidateDurationRange(c.RateLimit.CleanupInterval, time.Second, 24*time.Hour); err != nil {
		return fmt.Errorf("RATELIMIT_CLEANUP_INTERVAL: %w", err)
	}

	if err := middleware.ValidateOrigins(c.CORSOrigins); err != nil {
		return fmt.Errorf("CORS_ALLOWED_ORIGINS: %w", err)
	}

	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_KB must be at least 1")
	}
	if err := envcfg.ValidatePositiveDuration(c.RequestTimeout); err != nil {
		return fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	if err := envcfg.ValidatePositiveDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		return fmt.Errorf("TRACE_SAMPLE_RATIO must be between 0.0 and 1.0")
	}

	return nil
}
