package middleware

import (
	"bytes"
	"credit-engine/internal/config"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func newRequest(remoteAddr string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/loans/1", nil)
	req.RemoteAddr = remoteAddr
	return req
}

func TestRateLimiterInProcess(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}
	rl := NewRateLimiterMiddleware(cfg, nil, testLogger())
	handler := rl.Middleware(okHandler)

	t.Run("allows the first request and blocks the burst overflow", func(t *testing.T) {
		rec1 := httptest.NewRecorder()
		handler.ServeHTTP(rec1, newRequest("127.0.0.1:12345"))
		assert.Equal(t, http.StatusOK, rec1.Code)

		rec2 := httptest.NewRecorder()
		handler.ServeHTTP(rec2, newRequest("127.0.0.1:12345"))
		assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
		assert.Equal(t, "1", rec2.Header().Get("Retry-After"))

		var response map[string]any
		require.NoError(t, json.NewDecoder(rec2.Body).Decode(&response))
		assert.Equal(t, "Rate limit exceeded", response["error"].(map[string]any)["message"])
	})

	t.Run("tracks clients separately", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest("10.1.1.1:4000"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("blocks requests without a usable client IP", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest("not-an-address"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestRateLimiterDisabled(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rl := NewRateLimiterMiddleware(config.RateLimitConfig{Enabled: false}, db, testLogger())
	handler := rl.Middleware(okHandler)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest("127.0.0.1:12345"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimiterRedis(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, RPS: 2, Burst: 2}
	key := "ratelimit:127.0.0.1"

	t.Run("first request in a window sets the expiry", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectIncr(key).SetVal(1)
		mock.ExpectTTL(key).SetVal(time.Duration(-1))
		mock.ExpectExpire(key, time.Second).SetVal(true)

		rec := httptest.NewRecorder()
		NewRateLimiterMiddleware(cfg, db, testLogger()).Middleware(okHandler).ServeHTTP(rec, newRequest("127.0.0.1:12345"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("requests over the window limit are rejected", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectIncr(key).SetVal(3)
		mock.ExpectTTL(key).SetVal(500 * time.Millisecond)

		rec := httptest.NewRecorder()
		NewRateLimiterMiddleware(cfg, db, testLogger()).Middleware(okHandler).ServeHTTP(rec, newRequest("127.0.0.1:12345"))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("Retry-After"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis failure lets the request through", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectIncr(key).SetErr(errors.New("connection refused"))

		rec := httptest.NewRecorder()
		NewRateLimiterMiddleware(cfg, db, testLogger()).Middleware(okHandler).ServeHTTP(rec, newRequest("127.0.0.1:12345"))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestExtractIP(t *testing.T) {
	rl := NewRateLimiterMiddleware(config.RateLimitConfig{}, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1")
	assert.Equal(t, "192.168.1.1", rl.extractIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "10.0.0.1")
	assert.Equal(t, "10.0.0.1", rl.extractIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "garbage")
	req.RemoteAddr = "127.0.0.1:12345"
	assert.Equal(t, "127.0.0.1", rl.extractIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "::1"
	assert.Equal(t, "::1", rl.extractIP(req))
}
