package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"link-preview/internal/handler/http/respond"
)

// fakeClock is a settable clock for the limiter.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(limit int, opts ...RateLimitOption) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]RateLimitOption{WithClock(clock.Now), WithSkipPaths(RouteHealth, RouteMetrics)}, opts...)
	return NewRateLimiter(limit, time.Minute, opts...), clock
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, path, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	rl, _ := newTestLimiter(3)
	h := rl.Limit(okHandler())

	for i := 0; i < 3; i++ {
		rec := doRequest(h, "/preview", "203.0.113.1:5000")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		assert.Equal(t, "3", rec.Header().Get("RateLimit-Limit"))
		assert.Equal(t, []string{"2", "1", "0"}[i], rec.Header().Get("RateLimit-Remaining"))
	}

	rec := doRequest(h, "/preview", "203.0.113.1:5000")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	var body respond.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Too many requests from this IP, please try again after a minute", body.Error)
	assert.Equal(t, 60, body.RetryAfter)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	rl, clock := newTestLimiter(2)
	h := rl.Limit(okHandler())

	require.Equal(t, http.StatusOK, doRequest(h, "/preview", "203.0.113.1:1").Code)
	clock.Advance(30 * time.Second)
	require.Equal(t, http.StatusOK, doRequest(h, "/preview", "203.0.113.1:1").Code)

	rec := doRequest(h, "/preview", "203.0.113.1:1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))

	clock.Advance(31 * time.Second)
	assert.Equal(t, http.StatusOK, doRequest(h, "/preview", "203.0.113.1:1").Code)
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl, _ := newTestLimiter(1)
	h := rl.Limit(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(h, "/preview", "203.0.113.1:1").Code)
	assert.Equal(t, http.StatusOK, doRequest(h, "/preview", "203.0.113.2:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, "/preview", "203.0.113.1:2").Code)
}

func TestRateLimiter_SkipsHealthAndMetrics(t *testing.T) {
	rl, _ := newTestLimiter(1)
	h := rl.Limit(okHandler())

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(h, "/health", "203.0.113.1:1").Code)
		assert.Equal(t, http.StatusOK, doRequest(h, "/metrics", "203.0.113.1:1").Code)
	}
	assert.Equal(t, http.StatusOK, doRequest(h, "/preview", "203.0.113.1:1").Code)
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestRateLimiter_ForwardedHeaders(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		headers    map[string]string
		want       string
	}{
		{name: "untrusted ignores XFF", headers: map[string]string{"X-Forwarded-For": "198.51.100.7"}, want: "10.0.0.1"},
		{name: "trusted uses first XFF", trustProxy: true, headers: map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.9"}, want: "198.51.100.7"},
		{name: "trusted falls back to X-Real-IP", trustProxy: true, headers: map[string]string{"X-Forwarded-For": "garbage", "X-Real-IP": "198.51.100.8"}, want: "198.51.100.8"},
		{name: "trusted without headers uses remote addr", trustProxy: true, want: "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl, _ := newTestLimiter(1, WithTrustProxy(tt.trustProxy))
			req := httptest.NewRequest(http.MethodPost, "/preview", nil)
			req.RemoteAddr = "10.0.0.1:4321"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, rl.clientIP(req))
		})
	}
}

func TestRateLimiter_RejectHook(t *testing.T) {
	var rejected []string
	rl, _ := newTestLimiter(1, WithRejectHook(func(r *http.Request) {
		rejected = append(rejected, r.URL.Path)
	}))
	h := rl.Limit(okHandler())

	doRequest(h, "/preview", "203.0.113.1:1")
	doRequest(h, "/preview", "203.0.113.1:1")

	assert.Equal(t, []string{"/preview"}, rejected)
}

func TestRateLimiter_CleanupExpired(t *testing.T) {
	rl, clock := newTestLimiter(5)
	h := rl.Limit(okHandler())

	doRequest(h, "/preview", "203.0.113.1:1")
	clock.Advance(45 * time.Second)
	doRequest(h, "/preview", "203.0.113.2:1")
	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, rl.CleanupExpired())
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestRateLimiter_AllowSkipsRemovedRecord(t *testing.T) {
	rl, clock := newTestLimiter(2)
	const key = "203.0.113.9"

	// a record CleanupExpired has already dropped, still held by a caller
	stale := &requestRecord{timestamps: []time.Time{clock.Now()}, removed: true}
	rl.records.Store(key, stale)

	ok, remaining, _ := rl.allow(key)

	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	val, found := rl.records.Load(key)
	require.True(t, found)
	fresh := val.(*requestRecord)
	assert.NotSame(t, stale, fresh)
	assert.Len(t, fresh.timestamps, 1)
	assert.Len(t, stale.timestamps, 1, "removed record must not be written")
}

func TestRateLimiter_CleanupDoesNotLoseRequests(t *testing.T) {
	const (
		workers = 8
		perWork = 200
	)
	rl, _ := newTestLimiter(workers * perWork)
	const key = "203.0.113.10"

	stop := make(chan struct{})
	var cleaner sync.WaitGroup
	cleaner.Add(1)
	go func() {
		defer cleaner.Done()
		for {
			select {
			case <-stop:
				return
			default:
				rl.CleanupExpired()
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWork; j++ {
				ok, _, _ := rl.allow(key)
				assert.True(t, ok)
			}
		}()
	}
	wg.Wait()
	close(stop)
	cleaner.Wait()

	val, found := rl.records.Load(key)
	require.True(t, found)
	assert.Len(t, val.(*requestRecord).timestamps, workers*perWork)
}

func TestStartRateLimitCleanup_StopsOnCancel(t *testing.T) {
	rl, _ := newTestLimiter(1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		StartRateLimitCleanup(ctx, rl, time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop after cancel")
	}
}
