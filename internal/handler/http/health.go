// Package http provides the HTTP server plumbing for the link preview
// service: health and not-found handlers, request metrics, rate limiting,
// timeouts, and the logging and recovery middleware.
package http

import (
	"fmt"
	"net/http"
	"time"

	"link-preview/internal/handler/http/respond"
)

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"` // seconds since process start
	Environment string  `json:"environment"`
	Version     string  `json:"version,omitempty"`
}

// HealthHandler reports liveness. The service has no backing stores, so
// a running process is a healthy one.
type HealthHandler struct {
	Environment string
	Version     string
	Started     time.Time

	// now is replaced in tests.
	now func() time.Time
}

// NewHealthHandler creates a handler whose uptime counts from now.
func NewHealthHandler(environment, version string) *HealthHandler {
	return &HealthHandler{
		Environment: environment,
		Version:     version,
		Started:     time.Now(),
		now:         time.Now,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	now := time.Now()
	if h.now != nil {
		now = h.now()
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Timestamp:   now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Uptime:      now.Sub(h.Started).Seconds(),
		Environment: h.Environment,
		Version:     h.Version,
	})
}

// NotFound answers every unmatched route with 404 and a message naming
// the method and path.
func NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, http.StatusNotFound, fmt.Sprintf("Route %s %s not found", r.Method, r.URL.Path), "")
}
