package main

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"link-preview/internal/config"
	hhttp "link-preview/internal/handler/http"
	"link-preview/internal/handler/http/middleware"
	hpreview "link-preview/internal/handler/http/preview"
	"link-preview/internal/handler/http/requestid"
	"link-preview/internal/infra/extractor"
	"link-preview/internal/infra/fetcher"
	"link-preview/internal/observability/tracing"
	previewUC "link-preview/internal/usecase/preview"
	"link-preview/pkg/security/csp"
)

// ServerComponents holds the handler plus what runServer must run
// alongside it.
type ServerComponents struct {
	Handler  http.Handler
	Limiter  *hhttp.RateLimiter
	Registry *prometheus.Registry
}

// setupServer wires the preview pipeline, routes and middleware. Extra
// fetcher options (a test transport, for instance) are appended last.
func setupServer(logger *slog.Logger, cfg *config.ServerConfig, fetchCfg fetcher.SecurityConfig, fetchOpts ...fetcher.Option) *ServerComponents {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := append([]fetcher.Option{
		fetcher.WithMetrics(fetcher.NewMetrics(reg)),
		fetcher.WithLogger(logger),
	}, fetchOpts...)

	svc := &previewUC.Service{
		Fetcher:       fetcher.NewHTTPFetcher(fetchCfg, opts...),
		Extractor:     extractor.New(extractor.WithLogger(logger)),
		MaxHTMLSizeKB: fetchCfg.MaxHTMLSizeKB,
	}

	httpMetrics := hhttp.NewHTTPMetrics(reg)

	var limiter *hhttp.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = hhttp.NewRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window,
			hhttp.WithTrustProxy(cfg.RateLimit.TrustProxy),
			hhttp.WithSkipPaths(hhttp.RouteHealth, hhttp.RouteMetrics),
			hhttp.WithRejectHook(httpMetrics.RecordRateLimited),
		)
		logger.Info("rate limiting initialized",
			slog.Int("limit", cfg.RateLimit.Limit),
			slog.Duration("window", cfg.RateLimit.Window),
			slog.Bool("trust_proxy", cfg.RateLimit.TrustProxy))
	} else {
		logger.Warn("rate limiting is DISABLED - not recommended for production")
	}

	mux := setupRoutes(cfg, svc, reg)
	return &ServerComponents{
		Handler:  applyMiddleware(logger, cfg, mux, httpMetrics, limiter),
		Limiter:  limiter,
		Registry: reg,
	}
}

// setupRoutes registers POST /preview, GET /health and GET /metrics. Any
// other path gets the JSON 404.
func setupRoutes(cfg *config.ServerConfig, svc hpreview.Previewer, reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	hpreview.Register(mux, svc, cfg.IsDevelopment())
	mux.Handle("GET /health", hhttp.NewHealthHandler(cfg.Environment, cfg.Version))
	mux.Handle("GET /metrics", hhttp.MetricsHandler(reg))
	mux.HandleFunc("/", hhttp.NotFound)
	return mux
}

// applyMiddleware wraps the mux. Order, outermost first:
//
//	CORS → security headers → request ID → tracing → logging → recover →
//	metrics → rate limit → timeout → body limit
//
// CORS answers preflights before anything is counted. Metrics sit outside
// the limiter so rejected requests are still recorded.
func applyMiddleware(logger *slog.Logger, cfg *config.ServerConfig, h http.Handler, m *hhttp.HTTPMetrics, limiter *hhttp.RateLimiter) http.Handler {
	corsCfg := middleware.DefaultCORSConfig(cfg.CORSOrigins)
	corsCfg.Logger = logger
	logger.Info("CORS enabled", slog.Any("allowed_origins", cfg.CORSOrigins))

	rateLimit := func(next http.Handler) http.Handler { return next }
	if limiter != nil {
		rateLimit = limiter.Limit
	}

	return hhttp.Chain(h,
		middleware.CORS(corsCfg),
		middleware.SecurityHeaders(csp.APIPolicy().ReportOnly(cfg.CSPReportOnly)),
		requestid.Middleware,
		tracing.Middleware(hhttp.RouteOf),
		hhttp.Logging(logger),
		hhttp.Recover(logger, cfg.IsDevelopment()),
		m.Middleware,
		rateLimit,
		hhttp.Timeout(cfg.RequestTimeout),
		hhttp.LimitRequestBody(cfg.MaxBodyBytes),
	)
}
