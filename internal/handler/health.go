package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Wafflinyo/USALeague/pkg/response"
)

// startTime tracks when the server started for uptime reporting.
var startTime = time.Now()

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Handler contains the health endpoints and their dependencies.
type Handler struct {
	db Pinger
}

// New creates a new handler.
func New(db Pinger) *Handler {
	return &Handler{db: db}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// Health handles GET /api/v1/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, HealthResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
	})
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Ready    bool   `json:"ready"`
	Database string `json:"database"`
}

// Ready handles GET /api/v1/ready
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Ready: true, Database: "ok"}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.HealthCheck(ctx); err != nil {
		resp.Ready = false
		resp.Database = "unreachable"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response.OK(w, resp)
}
