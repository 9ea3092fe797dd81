package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/conduit-lang/causeway/internal/web/ratelimit"
	"github.com/conduit-lang/causeway/internal/web/response"
)

type stubLimiter struct {
	info *ratelimit.Info
	err  error
	keys []string
}

func (s *stubLimiter) Allow(ctx context.Context, key string) (*ratelimit.Info, error) {
	s.keys = append(s.keys, key)
	return s.info, s.err
}

func (s *stubLimiter) Close() error { return nil }

func TestRateLimit(t *testing.T) {
	tb, err := ratelimit.NewTokenBucket(ratelimit.Config{Limit: 2, Window: time.Minute}, 0)
	require.NoError(t, err)
	defer tb.Close()

	handler := RateLimit(tb, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/causes", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := serve("192.0.2.1:1234")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))

	assert.Equal(t, http.StatusOK, serve("192.0.2.1:5678").Code, "the port is not part of the key")

	rec = serve("192.0.2.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, response.JSONAPIMediaType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")

	assert.Equal(t, http.StatusOK, serve("192.0.2.2:1234").Code)
}

func TestRateLimitFailsOpen(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	limiter := &stubLimiter{err: errors.New("redis down")}

	called := false
	handler := RateLimit(limiter, zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, called)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, 1, logs.FilterMessage("rate limit check failed").Len())
}

func TestRateLimitCustomKey(t *testing.T) {
	limiter := &stubLimiter{info: &ratelimit.Info{Limit: 1, Allowed: true, ResetAt: time.Now()}}

	handler := RateLimitWithConfig(RateLimitConfig{
		Limiter: limiter,
		KeyFunc: func(r *http.Request) string { return r.Header.Get("X-Client") },
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	req.Header.Set("X-Client", "mobile")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, []string{"mobile"}, limiter.keys, "an empty key skips the limiter")
}

func TestIPKeyFunc(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "ipv6 remote addr", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "remote without port", remote: "192.0.2.1", want: "192.0.2.1"},
		{name: "forwarded for", headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, remote: "10.0.0.1:80", want: "203.0.113.9"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "203.0.113.7"}, remote: "10.0.0.1:80", want: "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, IPKeyFunc(req))
		})
	}
}
