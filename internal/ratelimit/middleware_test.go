package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testHandler(t *testing.T, format string) *Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	h, err := New(client, format, "quote", zerolog.Nop())
	require.NoError(t, err)
	return h
}

func TestMiddlewareLimitsPerIP(t *testing.T) {
	h := testHandler(t, "2-M")
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := h.Middleware(next)

	hit := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/quote", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, hit("10.0.0.1:1234"))
	require.Equal(t, http.StatusOK, hit("10.0.0.1:1234"))
	require.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1:1234"))
	// a different client is unaffected
	require.Equal(t, http.StatusOK, hit("10.0.0.2:1234"))
}

func TestNewRejectsBadFormat(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	_, err := New(client, "sixty-per-minute", "quote", zerolog.Nop())
	require.Error(t, err)
}
