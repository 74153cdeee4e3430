package handlers

import (
	"net/http"

	"media-convert/internal/formats"
	"media-convert/internal/manifest"
)

// ToolsResponse lists the active conversion pairs.
type ToolsResponse struct {
	Tools []manifest.Tool `json:"tools"`
}

// GetTools returns the active tool manifest.
func (h *Handlers) GetTools(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, ToolsResponse{Tools: h.table.Tools()})
}

// FormatsResponse groups supported format tags by family.
type FormatsResponse struct {
	Image []string `json:"image"`
	Audio []string `json:"audio"`
	Video []string `json:"video"`
}

// GetFormats returns the supported format tags grouped by family.
func (h *Handlers) GetFormats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, FormatsResponse{
		Image: sortedKeys(formats.ImageFormats),
		Audio: sortedKeys(formats.AudioFormats),
		Video: sortedKeys(formats.VideoFormats),
	})
}
