package http

import (
	"context"
	"log/slog"
	"time"
)

// DefaultCleanupInterval is how often idle rate limit records are dropped.
const DefaultCleanupInterval = 5 * time.Minute

// StartRateLimitCleanup removes idle clients from limiter every interval
// until ctx is cancelled. It blocks, so run it in its own goroutine.
func StartRateLimitCleanup(ctx context.Context, limiter *RateLimiter, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("rate limit cleanup started", slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("rate limit cleanup stopped")
			return
		case <-ticker.C:
			removed := limiter.CleanupExpired()
			logger.Debug("rate limit cleanup completed",
				slog.Int("clients_removed", removed),
				slog.Int("clients_active", limiter.ActiveClients()))
		}
	}
}
