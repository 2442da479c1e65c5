package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/dialog-engine/pkg/storage"
)

const healthTimeout = 2 * time.Second

// StorageHealth reports the game state backend and the scenarios it serves.
type StorageHealth struct {
	Backend   string `json:"backend"`
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Scenarios int    `json:"scenarios"`
	Error     string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Service   string        `json:"service"`
	Storage   StorageHealth `json:"storage"`
}

// HealthHandler reports whether spectators can be served: the backend must
// answer a ping and have at least one playable scenario on disk.
type HealthHandler struct {
	store  storage.Storage
	logger *slog.Logger
}

func NewHealthHandler(store storage.Storage, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:  store,
		logger: logger,
	}
}

// ServeHTTP handles GET /health
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   "dialog-engine-spectator",
		Storage:   h.checkStorage(ctx),
	}
	if resp.Storage.Status != "healthy" {
		resp.Status = "degraded"
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Error encoding health response", "error", err)
	}
}

func (h *HealthHandler) checkStorage(ctx context.Context) StorageHealth {
	sh := StorageHealth{Backend: h.store.Name(), Status: "healthy"}

	start := time.Now()
	err := h.store.Ping(ctx)
	sh.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		h.logger.Warn("Storage health check failed", "backend", sh.Backend, "error", err)
		sh.Status = "unhealthy"
		sh.Error = err.Error()
		return sh
	}

	scenarios, err := h.store.ListScenarios(ctx)
	if err != nil {
		h.logger.Warn("Scenario listing failed", "backend", sh.Backend, "error", err)
		sh.Status = "unhealthy"
		sh.Error = err.Error()
		return sh
	}
	sh.Scenarios = len(scenarios)
	if sh.Scenarios == 0 {
		sh.Status = "no_scenarios"
	}
	return sh
}
