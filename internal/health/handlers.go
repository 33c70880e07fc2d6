package health

import (
	"context"
	"net/http"
	"time"

	"github.com/drucklab/backend-shop/internal/common"
)

// Checker represents dependencies that can be probed for readiness.
type Checker interface {
	PingDB(ctx context.Context, timeout time.Duration) error
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// Handler exposes liveness and readiness endpoints.
type Handler struct {
	Checker      Checker
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Checker == nil {
		http.Error(w, "dependencies unavailable", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()
	status := map[string]string{"db": "ok", "redis": "ok"}
	if err := h.Checker.PingDB(ctx, h.timeout(h.DBTimeout, 500*time.Millisecond)); err != nil {
		status["db"] = err.Error()
	}
	if err := h.Checker.PingRedis(ctx, h.timeout(h.RedisTimeout, 300*time.Millisecond)); err != nil {
		status["redis"] = err.Error()
	}
	code := http.StatusOK
	if status["db"] != "ok" || status["redis"] != "ok" {
		code = http.StatusServiceUnavailable
	}
	common.JSON(w, code, status)
}

func (h Handler) timeout(configured, fallback time.Duration) time.Duration {
	if configured <= 0 {
		return fallback
	}
	return configured
}
