package fetcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"link-preview/internal/infra/fetcher"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := fetcher.DefaultConfig()

	assert.Equal(t, 3, cfg.MaxRedirects)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 512, cfg.MaxHTMLSizeKB)
	assert.Equal(t, int64(512*1024), cfg.MaxHTMLBytes())
	assert.Equal(t, []string{"text/html"}, cfg.AllowedContentTypes)
	assert.Contains(t, cfg.UserAgent, "Chrome/120")
	assert.True(t, cfg.ValidateRedirects, "redirect validation must be on by default")
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fetcher.SecurityConfig)
	}{
		{"negative redirects", func(c *fetcher.SecurityConfig) { c.MaxRedirects = -1 }},
		{"too many redirects", func(c *fetcher.SecurityConfig) { c.MaxRedirects = 11 }},
		{"zero timeout", func(c *fetcher.SecurityConfig) { c.Timeout = 0 }},
		{"huge timeout", func(c *fetcher.SecurityConfig) { c.Timeout = time.Hour }},
		{"zero size", func(c *fetcher.SecurityConfig) { c.MaxHTMLSizeKB = 0 }},
		{"huge size", func(c *fetcher.SecurityConfig) { c.MaxHTMLSizeKB = 20 * 1024 }},
		{"blank user agent", func(c *fetcher.SecurityConfig) { c.UserAgent = "  " }},
		{"no content types", func(c *fetcher.SecurityConfig) { c.AllowedContentTypes = nil }},
		{"empty content type", func(c *fetcher.SecurityConfig) { c.AllowedContentTypes = []string{"text/html", ""} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fetcher.DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("PREVIEW_MAX_REDIRECTS", "5")
	t.Setenv("PREVIEW_TIMEOUT", "3s")
	t.Setenv("PREVIEW_MAX_HTML_SIZE_KB", "256")
	t.Setenv("PREVIEW_USER_AGENT", "TestAgent/1.0")
	t.Setenv("PREVIEW_ALLOWED_CONTENT_TYPES", "text/html, application/xhtml+xml")
	t.Setenv("PREVIEW_VALIDATE_REDIRECTS", "false")

	cfg, err := fetcher.LoadConfig("")

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxRedirects)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 256, cfg.MaxHTMLSizeKB)
	assert.Equal(t, "TestAgent/1.0", cfg.UserAgent)
	assert.Equal(t, []string{"text/html", "application/xhtml+xml"}, cfg.AllowedContentTypes)
	assert.False(t, cfg.ValidateRedirects)
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	tests := map[string]string{
		"PREVIEW_MAX_REDIRECTS":      "many",
		"PREVIEW_TIMEOUT":            "10",
		"PREVIEW_MAX_HTML_SIZE_KB":   "big",
		"PREVIEW_VALIDATE_REDIRECTS": "maybe",
	}

	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := fetcher.LoadConfig("")
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.yaml")
	content := `preview:
  max_redirects: 0
  timeout: 4s
  max_html_size_kb: 128
  allowed_content_types:
    - text/html
    - application/xhtml+xml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("PREVIEW_TIMEOUT", "6s")

	cfg, err := fetcher.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxRedirects, "explicit zero in file must be honoured")
	assert.Equal(t, 6*time.Second, cfg.Timeout, "env overrides file")
	assert.Equal(t, 128, cfg.MaxHTMLSizeKB)
	assert.Equal(t, fetcher.DefaultUserAgent, cfg.UserAgent)
	assert.Len(t, cfg.AllowedContentTypes, 2)
}

func TestLoadConfig_FileAllKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.yaml")
	content := `preview:
  max_redirects: 5
  timeout: 7s
  max_html_size_kb: 256
  user_agent: PreviewBot/1.0
  allowed_content_types: [application/xhtml+xml]
  validate_redirects: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := fetcher.LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, fetcher.SecurityConfig{
		MaxRedirects:        5,
		Timeout:             7 * time.Second,
		MaxHTMLSizeKB:       256,
		UserAgent:           "PreviewBot/1.0",
		AllowedContentTypes: []string{"application/xhtml+xml"},
		ValidateRedirects:   false,
	}, cfg)
}

func TestLoadConfig_FileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := fetcher.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("preview: [unclosed"), 0o600))
		_, err := fetcher.LoadConfig(path)
		assert.ErrorContains(t, err, "failed to parse config")
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "invalid.yaml")
		require.NoError(t, os.WriteFile(path, []byte("preview:\n  max_redirects: 50\n"), 0o600))
		_, err := fetcher.LoadConfig(path)
		assert.ErrorContains(t, err, "configuration validation failed")
	})
}
