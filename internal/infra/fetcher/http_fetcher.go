// Package fetcher retrieves HTML documents over HTTP under the limits in
// SecurityConfig.
package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"link-preview/internal/domain/entity"

	"golang.org/x/net/html/charset"
)

const outcomeOK = "ok"

// browserHeaders are sent with every request so that the fetch looks like a
// top-level navigation from a desktop browser. Accept-Encoding is left to
// the transport, which then decompresses transparently.
var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
	"Accept-Language":           "en-US,en;q=0.9",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Cache-Control":             "max-age=0",
	"DNT":                       "1",
}

// HTTPFetcher performs a single bounded GET per call.
//
// Thread safety: HTTPFetcher is safe for concurrent use. It keeps no state
// between calls besides the connection pool.
type HTTPFetcher struct {
	client  *http.Client
	config  SecurityConfig
	metrics *Metrics
	logger  *slog.Logger
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *HTTPFetcher) {
		f.client.Transport = rt
	}
}

// WithMetrics records fetch metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(f *HTTPFetcher) {
		f.metrics = m
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(f *HTTPFetcher) {
		f.logger = l
	}
}

// NewHTTPFetcher creates a fetcher bound to config.
//
// Example:
//
//	f := NewHTTPFetcher(DefaultConfig(), WithMetrics(NewMetrics(prometheus.DefaultRegisterer)))
//	html, err := f.Fetch(ctx, "https://example.com/product/1")
func NewHTTPFetcher(config SecurityConfig, opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		config: config,
		logger: slog.Default(),
	}

	f.client = &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   config.Timeout,
			ResponseHeaderTimeout: config.Timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: f.checkRedirect,
	}

	for _, opt := range opts {
		opt(f)
	}
	return f
}

// checkRedirect enforces the hop limit and, when enabled, the SSRF guard
// on each redirect target.
func (f *HTTPFetcher) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) > f.config.MaxRedirects {
		return entity.WrapFailure(entity.KindTooManyRedirects, "Too many redirects",
			fmt.Errorf("stopped after %d redirects", f.config.MaxRedirects))
	}

	if f.config.ValidateRedirects {
		if _, err := entity.ValidateURL(req.URL.String()); err != nil {
			return err
		}
	}
	return nil
}

// Fetch retrieves the document at rawURL and returns it decoded to UTF-8.
// The URL is expected to have passed entity.ValidateURL already.
//
// Every failure is an *entity.Failure except a cancellation that originates
// with ctx, which is returned wrapped as-is.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	start := time.Now()
	html, err := f.fetch(ctx, rawURL)

	outcome := outcomeOK
	if err != nil {
		outcome = outcomeOf(err)
		f.logger.DebugContext(ctx, "fetch failed",
			slog.String("url", rawURL),
			slog.String("outcome", outcome),
			slog.Any("error", err))
	}
	f.metrics.observe(outcome, time.Since(start).Seconds(), len(html))

	return html, err
}

func (f *HTTPFetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", entity.WrapFailure(entity.KindMalformedURL, "Invalid URL format", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", classifyTransportError(ctx, reqCtx, req.URL.Hostname(), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := statusFailure(resp.StatusCode); err != nil {
		return "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if !f.allowedContentType(contentType) {
		shown := contentType
		if shown == "" {
			shown = "unknown"
		}
		return "", entity.NewFailure(entity.KindUnsupportedContentType, "content-type",
			fmt.Sprintf("Invalid content type: %s. Expected %s", shown, strings.Join(f.config.AllowedContentTypes, ", ")))
	}

	maxBytes := f.config.MaxHTMLBytes()
	if resp.ContentLength > maxBytes {
		return "", entity.CheckHTMLSize(resp.ContentLength, f.config.MaxHTMLSizeKB, "")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return "", classifyTransportError(ctx, reqCtx, req.URL.Hostname(), err)
	}
	if err := entity.CheckHTMLSize(int64(len(body)), f.config.MaxHTMLSizeKB, ""); err != nil {
		return "", err
	}

	return decode(body, contentType), nil
}

func (f *HTTPFetcher) allowedContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	for _, allowed := range f.config.AllowedContentTypes {
		if strings.Contains(ct, strings.ToLower(allowed)) {
			return true
		}
	}
	return false
}

// decode converts body to UTF-8 using the charset from the Content-Type
// header or the document's meta tags. Undecodable input is returned as-is.
func decode(body []byte, contentType string) string {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || enc == nil {
		return string(body)
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(out)
}
