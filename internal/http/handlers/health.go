package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/userdir/internal/http/respond"
)

// Pinger reports backend availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns uptime and storage status.
type HealthHandler struct {
	startedAt time.Time
	store     Pinger
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, store Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, store: store}
}

// Routes lists the health endpoints.
func (h *HealthHandler) Routes() []Route {
	return []Route{{Method: http.MethodGet, Path: "/health", Handler: h.handle}}
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	}
	if err := h.store.Ping(ctx); err != nil {
		body["status"] = "degraded"
		respond.JSON(w, http.StatusServiceUnavailable, "storage unavailable", body)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", body)
}
