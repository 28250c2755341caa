package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsHandler(origins ...string) (http.Handler, *bool) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return CORS(DefaultCORSConfig(origins))(next), &called
}

func TestCORS_NoOrigin(t *testing.T) {
	h, called := corsHandler("http://localhost:3000")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/preview", nil))

	assert.True(t, *called)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Vary"))
}

func TestCORS_AllowedOrigin(t *testing.T) {
	h, called := corsHandler("http://localhost:3000/")

	req := httptest.NewRequest(http.MethodPost, "/preview", nil)
	req.Header.Set("Origin", "http://LOCALHOST:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, *called)
	assert.Equal(t, "http://LOCALHOST:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	h, called := corsHandler("http://localhost:3000")

	req := httptest.NewRequest(http.MethodPost, "/preview", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, *called, "request still reaches the handler; the browser enforces CORS")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	h, called := corsHandler("http://localhost:19006")

	req := httptest.NewRequest(http.MethodOptions, "/preview", nil)
	req.Header.Set("Origin", "http://localhost:19006")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, *called)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}

func TestValidateOrigins(t *testing.T) {
	require.NoError(t, ValidateOrigins(DevelopmentOrigins))
	require.NoError(t, ValidateOrigins([]string{"https://app.example.com"}))

	for _, bad := range []string{
		"ftp://example.com",
		"https://example.com/path",
		"https://example.com?q=1",
		"example.com",
		"https://",
	} {
		assert.Error(t, ValidateOrigins([]string{bad}), bad)
	}
}
