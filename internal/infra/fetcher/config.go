package fetcher

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is a desktop Chrome 120 string. Many storefronts reject
// obvious bot agents, so the fetcher presents itself as a browser.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// SecurityConfig holds the limits applied to every outbound fetch.
//
// Security settings:
//   - MaxRedirects: caps redirect chains
//   - Timeout: bounds the whole transfer, headers and body
//   - MaxHTMLSizeKB: bounds memory used per document
//   - AllowedContentTypes: rejects non-HTML responses before reading them
//   - ValidateRedirects: applies the SSRF guard to each redirect target
type SecurityConfig struct {
	// MaxRedirects is the maximum number of redirects to follow.
	// Default: 3
	MaxRedirects int

	// Timeout is the deadline for a single fetch.
	// Default: 10s
	Timeout time.Duration

	// MaxHTMLSizeKB is the largest accepted document, in KiB. It applies to
	// fetched bodies and to raw HTML submitted by clients.
	// Default: 512
	MaxHTMLSizeKB int

	// UserAgent is sent on every request.
	UserAgent string

	// AllowedContentTypes are matched as case-insensitive substrings of the
	// response Content-Type header.
	// Default: ["text/html"]
	AllowedContentTypes []string

	// ValidateRedirects runs each redirect target through the SSRF guard.
	// Should always be true in production.
	// Default: true
	ValidateRedirects bool
}

// DefaultConfig returns the production defaults.
//
// Example:
//
//	cfg := DefaultConfig()
//	cfg.Timeout = 5 * time.Second
//	f := NewHTTPFetcher(cfg)
func DefaultConfig() SecurityConfig {
	return SecurityConfig{
		MaxRedirects:        3,
		Timeout:             10 * time.Second,
		MaxHTMLSizeKB:       512,
		UserAgent:           DefaultUserAgent,
		AllowedContentTypes: []string{"text/html"},
		ValidateRedirects:   true,
	}
}

// MaxHTMLBytes returns the size cap in bytes.
func (c SecurityConfig) MaxHTMLBytes() int64 {
	return int64(c.MaxHTMLSizeKB) * 1024
}

// Validate checks if the configuration values are valid and safe.
//
// Validation rules:
//   - MaxRedirects: 0-10
//   - Timeout: > 0 and <= 2m
//   - MaxHTMLSizeKB: 1-10240 (1KB-10MB)
//   - UserAgent: non-empty
//   - AllowedContentTypes: at least one non-empty entry
func (c *SecurityConfig) Validate() error {
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	if c.Timeout <= 0 || c.Timeout > 2*time.Minute {
		return fmt.Errorf("timeout must be positive and at most 2m, got %v", c.Timeout)
	}

	if c.MaxHTMLSizeKB < 1 || c.MaxHTMLSizeKB > 10*1024 {
		return fmt.Errorf("max html size must be between 1 and 10240 KB, got %d", c.MaxHTMLSizeKB)
	}

	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("user agent must not be empty")
	}

	if len(c.AllowedContentTypes) == 0 {
		return fmt.Errorf("at least one allowed content type is required")
	}
	for _, ct := range c.AllowedContentTypes {
		if strings.TrimSpace(ct) == "" {
			return fmt.Errorf("allowed content types must not contain empty entries")
		}
	}

	return nil
}

// LoadConfig builds the configuration in three layers: defaults, then the
// YAML file at path (skipped when path is empty), then environment
// variables. The result is validated.
//
// Environment variables:
//   - PREVIEW_MAX_REDIRECTS: integer (default: 3)
//   - PREVIEW_TIMEOUT: duration string, e.g. "10s" (default: 10s)
//   - PREVIEW_MAX_HTML_SIZE_KB: integer (default: 512)
//   - PREVIEW_USER_AGENT: string (default: Chrome 120 desktop)
//   - PREVIEW_ALLOWED_CONTENT_TYPES: comma-separated list (default: text/html)
//   - PREVIEW_VALIDATE_REDIRECTS: "true" or "false" (default: true)
func LoadConfig(path string) (SecurityConfig, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return cfg, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// fileConfig mirrors the YAML layout. Pointer fields distinguish "absent"
// from an explicit zero value.
type fileConfig struct {
	Preview struct {
		MaxRedirects        *int     `yaml:"max_redirects"`
		Timeout             string   `yaml:"timeout"`
		MaxHTMLSizeKB       *int     `yaml:"max_html_size_kb"`
		UserAgent           string   `yaml:"user_agent"`
		AllowedContentTypes []string `yaml:"allowed_content_types"`
		ValidateRedirects   *bool    `yaml:"validate_redirects"`
	} `yaml:"preview"`
}

func applyFile(cfg *SecurityConfig, path string) error {
	// #nosec G304 -- path comes from PREVIEW_CONFIG_FILE set by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	p := fc.Preview
	if p.MaxRedirects != nil {
		cfg.MaxRedirects = *p.MaxRedirects
	}
	if p.Timeout != "" {
		d, err := time.ParseDuration(p.Timeout)
		if err != nil {
			return fmt.Errorf("invalid preview.timeout in %s: %w", path, err)
		}
		cfg.Timeout = d
	}
	if p.MaxHTMLSizeKB != nil {
		cfg.MaxHTMLSizeKB = *p.MaxHTMLSizeKB
	}
	if p.UserAgent != "" {
		cfg.UserAgent = p.UserAgent
	}
	if len(p.AllowedContentTypes) > 0 {
		cfg.AllowedContentTypes = p.AllowedContentTypes
	}
	if p.ValidateRedirects != nil {
		cfg.ValidateRedirects = *p.ValidateRedirects
	}
	return nil
}

func applyEnv(cfg *SecurityConfig) error {
	if val := os.Getenv("PREVIEW_MAX_REDIRECTS"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid PREVIEW_MAX_REDIRECTS: %v", err)
		}
		cfg.MaxRedirects = parsed
	}

	if val := os.Getenv("PREVIEW_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid PREVIEW_TIMEOUT: %v (expected format: '10s', '1m')", err)
		}
		cfg.Timeout = parsed
	}

	if val := os.Getenv("PREVIEW_MAX_HTML_SIZE_KB"); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid PREVIEW_MAX_HTML_SIZE_KB: %v", err)
		}
		cfg.MaxHTMLSizeKB = parsed
	}

	if val := os.Getenv("PREVIEW_USER_AGENT"); val != "" {
		cfg.UserAgent = val
	}

	if val := os.Getenv("PREVIEW_ALLOWED_CONTENT_TYPES"); val != "" {
		var types []string
		for _, t := range strings.Split(val, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
		cfg.AllowedContentTypes = types
	}

	if val := os.Getenv("PREVIEW_VALIDATE_REDIRECTS"); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid PREVIEW_VALIDATE_REDIRECTS: %v", err)
		}
		cfg.ValidateRedirects = parsed
	}

	return nil
}
