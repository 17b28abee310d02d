package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestRateLimiter_AllowsBurstThenBlocks(t *testing.T) {
	rl := NewRateLimiter(1, 2, discardLogger())
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return fixed }

	assert.True(t, rl.Allow("ip:10.0.0.1"))
	assert.True(t, rl.Allow("ip:10.0.0.1"))
	assert.False(t, rl.Allow("ip:10.0.0.1"))

	// Other callers have their own bucket
	assert.True(t, rl.Allow("ip:10.0.0.2"))
}

func TestRateLimiter_Refills(t *testing.T) {
	rl := NewRateLimiter(60, 1, discardLogger())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	require.True(t, rl.Allow("user:a"))
	require.False(t, rl.Allow("user:a"))

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("user:a"))
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(10, 1, discardLogger())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("user:old")
	now = now.Add(limiterIdleTTL + time.Minute)
	rl.Allow("user:fresh")

	assert.Equal(t, 1, rl.Sweep())
	assert.Len(t, rl.visitors, 1)
	assert.Contains(t, rl.visitors, "user:fresh")
}

func TestRateLimiter_Limit(t *testing.T) {
	rl := NewRateLimiter(1, 1, discardLogger())
	calls := 0
	handler := rl.Limit(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/analyze-symptoms", nil)
	req.RemoteAddr = "192.0.2.7:51000"
	handler(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/analyze-symptoms", nil)
	req.RemoteAddr = "192.0.2.7:51001"
	handler(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"error":"too many requests"}`, second.Body.String())
	assert.Equal(t, 1, calls)
}

func TestCallerKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.4:1234"
	assert.Equal(t, "ip:198.51.100.4", callerKey(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "ip:203.0.113.9", callerKey(req))

	ctx := context.WithValue(req.Context(), UserIDKey, "user-1")
	assert.Equal(t, "user:user-1", callerKey(req.WithContext(ctx)))
}
