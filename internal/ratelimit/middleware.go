// Package ratelimit throttles the quote endpoint per client IP. Every
// configurator keystroke can trigger a quote, so the limit protects the
// catalog store without breaking an interactive session.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/drucklab/backend-shop/internal/common"
)

// Handler enforces a fixed-format rate limit backed by Redis.
type Handler struct {
	limiter *limiter.Limiter
	logger  zerolog.Logger
}

// New builds a Handler from a limiter format string such as "60-M".
func New(client *redis.Client, format, prefix string, logger zerolog.Logger) (*Handler, error) {
	rate, err := limiter.NewRateFromFormatted(format)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: parse rate %q: %w", format, err)
	}
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: prefix})
	if err != nil {
		return nil, fmt.Errorf("ratelimit: init store: %w", err)
	}
	return &Handler{limiter: limiter.New(store, rate), logger: logger}, nil
}

// Middleware limits by client IP. A store error fails open: the request is
// served unthrottled rather than rejected.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h == nil || h.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		lctx, err := h.limiter.Get(r.Context(), clientIP(r))
		if err != nil {
			h.logger.Error().Err(err).Msg("rate limit store")
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		headers.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
