package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"

	"link-preview/internal/config"
	hhttp "link-preview/internal/handler/http"
	"link-preview/internal/infra/fetcher"
	"link-preview/internal/observability/logging"
	"link-preview/internal/observability/tracing"
)

// @title           Link Preview API
// @version         1.0
// @description     Builds title, image, price and site name previews for product and article URLs.
// @BasePath        /

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	fetchCfg, err := fetcher.LoadConfig(os.Getenv("PREVIEW_CONFIG_FILE"))
	if err != nil {
		return fmt.Errorf("load preview config: %w", err)
	}
	serverCfg, err := config.LoadServerConfig(fetchCfg.Timeout)
	if err != nil {
		return err
	}

	logger := initLogger(serverCfg)
	logger.Info("configuration loaded",
		slog.String("environment", serverCfg.Environment),
		slog.Int("max_redirects", fetchCfg.MaxRedirects),
		slog.Duration("fetch_timeout", fetchCfg.Timeout),
		slog.Int("max_html_size_kb", fetchCfg.MaxHTMLSizeKB),
		slog.Bool("validate_redirects", fetchCfg.ValidateRedirects))

	tp := tracing.NewProvider(tracing.TracerName, serverCfg.Version, serverCfg.TraceSampleRatio)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Error("tracer provider shutdown failed", slog.Any("error", err))
		}
	}()

	components := setupServer(logger, serverCfg, fetchCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return runServer(ctx, logger, serverCfg, components)
}

// initLogger returns a text logger in development and JSON elsewhere, and
// installs it as the slog default.
func initLogger(cfg *config.ServerConfig) *slog.Logger {
	logger := logging.NewLogger()
	if cfg.IsDevelopment() {
		logger = logging.NewTextLogger()
	}
	logger = logger.With(slog.String("service", tracing.TracerName), slog.String("version", cfg.Version))
	slog.SetDefault(logger)
	return logger
}

// runServer serves until ctx is cancelled, then drains in-flight requests
// for up to cfg.ShutdownTimeout.
func runServer(ctx context.Context, logger *slog.Logger, cfg *config.ServerConfig, components *ServerComponents) error {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           components.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	if components.Limiter != nil {
		g.Go(func() error {
			hhttp.StartRateLimitCleanup(gctx, components.Limiter, cfg.RateLimit.CleanupInterval, logger)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}
