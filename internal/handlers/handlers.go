package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"media-convert/internal/config"
	"media-convert/internal/convert"
	"media-convert/internal/manifest"
	"media-convert/internal/transcode"
)

// Handlers holds the dependencies shared by all HTTP handlers.
type Handlers struct {
	cfg        *config.Config
	dispatcher *convert.Dispatcher
	table      *manifest.Table
	session    *transcode.Session
	startTime  time.Time
}

// New creates the handler set. session may be nil when the deployment only
// offers raster conversions.
func New(cfg *config.Config, dispatcher *convert.Dispatcher, table *manifest.Table, session *transcode.Session) *Handlers {
	return &Handlers{
		cfg:        cfg,
		dispatcher: dispatcher,
		table:      table,
		session:    session,
		startTime:  time.Now(),
	}
}

// RegisterRoutes attaches all API routes to the router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/convert/{to}", h.Convert).Methods(http.MethodPost)
	r.HandleFunc("/api/tools", h.GetTools).Methods(http.MethodGet)
	r.HandleFunc("/api/formats", h.GetFormats).Methods(http.MethodGet)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/healthz", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)
}
