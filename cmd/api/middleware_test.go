package main

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"stadtwache/internal/config"
)

func testConfig(origins ...string) *config.Config {
	return &config.Config{
		CORS: config.CORSConfig{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         600,
		},
	}
}

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestCORS_AllowedOrigin(t *testing.T) {
	h := cors(ok, testConfig("https://stadtwache.de"))

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	req.Header.Set("Origin", "https://stadtwache.de")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://stadtwache.de", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_RejectsForeignOrigin(t *testing.T) {
	h := cors(ok, testConfig("https://stadtwache.de"))

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORS_WildcardAndPreflight(t *testing.T) {
	h := cors(ok, testConfig("*"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/admin/news", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestSecurityHeaders(t *testing.T) {
	h := securityHeaders(ok, testConfig())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))

	req := httptest.NewRequest(http.MethodGet, "/api/", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Strict-Transport-Security"), "max-age="))
}

func TestRequestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := requestLogging(ok, zap.New(core))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Zero(t, logs.Len())

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/feedback", nil))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/api/feedback", fields["path"])
	assert.EqualValues(t, http.StatusNoContent, fields["status"])
}

func TestValidateConfig(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{SecretKey: "your-secret-key-change-in-production"}}
	assert.Error(t, validateConfig(cfg))

	cfg.Auth.SecretKey = "short"
	assert.Error(t, validateConfig(cfg))

	cfg.App.Debug = true
	assert.NoError(t, validateConfig(cfg))

	cfg.App.Debug = false
	cfg.Auth.SecretKey = strings.Repeat("k", 32)
	assert.NoError(t, validateConfig(cfg))
}
