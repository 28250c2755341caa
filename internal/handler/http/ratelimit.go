package http

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"link-preview/internal/handler/http/respond"
)

// Rate limit defaults: 10 requests per client IP per minute.
const (
	DefaultRateLimit       = 10
	DefaultRateLimitWindow = time.Minute
)

const rateLimitMessage = "Too many requests from this IP, please try again after a minute"

// requestRecord stores request timestamps for sliding window rate limiting.
type requestRecord struct {
	mu         sync.Mutex
	timestamps []time.Time
	// removed is set under mu once CleanupExpired has dropped the record
	// from the map. A caller holding a removed record must load again.
	removed bool
}

// RateLimiter limits requests per client IP with a sliding window.
// Requests to skipped paths are neither counted nor limited.
type RateLimiter struct {
	records    sync.Map // map[string]*requestRecord
	limit      int
	window     time.Duration
	trustProxy bool
	skip       map[string]struct{}
	now        func() time.Time
	onReject   func(*http.Request)
}

// RateLimitOption configures a RateLimiter.
type RateLimitOption func(*RateLimiter)

// WithTrustProxy makes the limiter key clients by X-Forwarded-For or
// X-Real-IP. Only enable behind a proxy that sets these headers.
func WithTrustProxy(trust bool) RateLimitOption {
	return func(rl *RateLimiter) { rl.trustProxy = trust }
}

// WithSkipPaths exempts exact request paths from limiting.
func WithSkipPaths(paths ...string) RateLimitOption {
	return func(rl *RateLimiter) {
		for _, p := range paths {
			rl.skip[p] = struct{}{}
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) RateLimitOption {
	return func(rl *RateLimiter) { rl.now = now }
}

// WithRejectHook is called for every rejected request.
func WithRejectHook(fn func(*http.Request)) RateLimitOption {
	return func(rl *RateLimiter) { rl.onReject = fn }
}

// NewRateLimiter creates a limiter allowing limit requests per window.
func NewRateLimiter(limit int, window time.Duration, opts ...RateLimitOption) *RateLimiter {
	rl := &RateLimiter{
		limit:  limit,
		window: window,
		skip:   make(map[string]struct{}),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(rl)
	}
	return rl
}

// Limit is the middleware. Allowed responses carry RateLimit-Limit,
// RateLimit-Remaining and RateLimit-Reset headers; rejected ones are 429
// with a Retry-After header and a retryAfter field in the body.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := rl.skip[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		allowed, remaining, reset := rl.allow(rl.clientIP(r))
		resetSeconds := ceilSeconds(reset)

		h := w.Header()
		h.Set("RateLimit-Limit", strconv.Itoa(rl.limit))
		h.Set("RateLimit-Remaining", strconv.Itoa(remaining))
		h.Set("RateLimit-Reset", strconv.Itoa(resetSeconds))

		if !allowed {
			if rl.onReject != nil {
				rl.onReject(r)
			}
			h.Set("Retry-After", strconv.Itoa(resetSeconds))
			respond.JSON(w, http.StatusTooManyRequests, respond.ErrorBody{
				Error:      rateLimitMessage,
				RetryAfter: ceilSeconds(rl.window),
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow records a request for key if it fits in the window. It returns the
// requests left in the window and the time until the oldest one expires.
func (rl *RateLimiter) allow(key string) (bool, int, time.Duration) {
	now := rl.now()

	record := rl.lockRecord(key)
	defer record.mu.Unlock()

	cutoff := now.Add(-rl.window)
	kept := record.timestamps[:0]
	for _, ts := range record.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	record.timestamps = kept

	if len(record.timestamps) >= rl.limit {
		if len(record.timestamps) == 0 {
			return false, 0, rl.window
		}
		return false, 0, record.timestamps[0].Add(rl.window).Sub(now)
	}

	record.timestamps = append(record.timestamps, now)
	return true, rl.limit - len(record.timestamps), record.timestamps[0].Add(rl.window).Sub(now)
}

// lockRecord returns the live record for key with its mutex held. A record
// removed by CleanupExpired between the load and the lock is skipped.
func (rl *RateLimiter) lockRecord(key string) *requestRecord {
	for {
		val, _ := rl.records.LoadOrStore(key, &requestRecord{
			timestamps: make([]time.Time, 0, rl.limit),
		})
		record := val.(*requestRecord)

		record.mu.Lock()
		if !record.removed {
			return record
		}
		record.mu.Unlock()
		rl.records.CompareAndDelete(key, record)
	}
}

// CleanupExpired drops clients with no request inside the current window.
// It returns the number of clients removed.
func (rl *RateLimiter) CleanupExpired() int {
	cutoff := rl.now().Add(-rl.window)
	removed := 0

	rl.records.Range(func(key, value any) bool {
		record := value.(*requestRecord)
		record.mu.Lock()
		expired := true
		for _, ts := range record.timestamps {
			if ts.After(cutoff) {
				expired = false
				break
			}
		}
		if expired {
			record.removed = true
			rl.records.Delete(key)
			removed++
		}
		record.mu.Unlock()
		return true
	})
	return removed
}

// ActiveClients returns the number of tracked client IPs.
func (rl *RateLimiter) ActiveClients() int {
	n := 0
	rl.records.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// clientIP returns the address the limiter keys on. Forwarding headers are
// only consulted when the proxy is trusted, otherwise any client could
// pick its own key.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	if rl.trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
				return ip.String()
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
