package handler

import (
	"context"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

type pinger interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db      pinger
	version string
}

// NewHealthHandler reports liveness. db may be nil when the service runs on
// the in-memory store.
func NewHealthHandler(db pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status":  "ok",
		"version": h.version,
		"store":   "memory",
	}

	if h.db != nil {
		status["store"] = "postgres"

		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := h.db.Health(ctx); err != nil {
			status["status"] = "degraded"
			writeSuccess(w, http.StatusServiceUnavailable, status)
			return
		}
	}

	writeSuccess(w, http.StatusOK, status)
}
