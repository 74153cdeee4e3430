package handlers

import (
	"net/http"
	"runtime"
	"time"

	"media-convert/internal/config"
)

const (
	statusHealthy = "healthy"
)

// HealthResponse contains the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Engine info
	Engine      string `json:"engine,omitempty"`
	StagedFiles int    `json:"stagedFiles"`
	Tools       int    `json:"tools"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:       statusHealthy,
		Ready:        true,
		Version:      config.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Tools:        h.table.Len(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	if h.session != nil {
		response.Engine = h.session.Engine()
		if staged, err := h.session.StagedFileCount(); err == nil {
			response.StagedFiles = staged
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers.
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 once the tool table is populated. The engine
// itself loads lazily on the first conversion, so readiness does not gate
// on it.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.table.Len() == 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{"status": "not_ready"})
		return
	}
	writeJSONStatus(w, "ready")
}
