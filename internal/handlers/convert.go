package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gorilla/mux"

	"media-convert/internal/convert"
	"media-convert/internal/engine"
	"media-convert/internal/formats"
	"media-convert/internal/logging"
	"media-convert/internal/raster"
	"media-convert/internal/streaming"
	"media-convert/internal/transcode"
)

// maxUploadBytes bounds the multipart body. Video sources dominate, so the
// cap is generous; memory pressure is handled by the monitor, not here.
const maxUploadBytes = 512 << 20

// Convert handles POST /api/convert/{to}: a multipart upload under the
// "file" field is converted to the target format and returned as an
// attachment.
//
// Optional form fields:
//
//	from        source format tag; defaults to the upload's file extension
//	quality     encode quality in (0, 1] for lossy targets
//	audio_only  "true" to strip the video stream on transcode targets
func (h *Handlers) Convert(w http.ResponseWriter, r *http.Request) {
	to := formats.Normalize(mux.Vars(r)["to"])
	if to == "" {
		writeJSONError(w, "missing target format", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSONError(w, fmt.Sprintf("invalid multipart body: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	source, err := io.ReadAll(file)
	if err != nil {
		writeJSONError(w, fmt.Sprintf("failed to read upload: %v", err), http.StatusBadRequest)
		return
	}
	if len(source) == 0 {
		writeJSONError(w, "empty upload", http.StatusBadRequest)
		return
	}

	from := formats.Normalize(r.FormValue("from"))
	if from == "" {
		from = formats.Normalize(filepath.Ext(header.Filename))
	}
	if from == "" {
		writeJSONError(w, "cannot determine source format, pass a from field or a file extension", http.StatusBadRequest)
		return
	}

	opts := transcode.Options{Quality: h.cfg.DefaultQuality}
	if q := r.FormValue("quality"); q != "" {
		parsed, err := strconv.ParseFloat(q, 64)
		if err != nil || parsed <= 0 || parsed > 1 {
			writeJSONError(w, fmt.Sprintf("invalid quality %q: must be in (0, 1]", q), http.StatusBadRequest)
			return
		}
		opts.Quality = parsed
	}
	if a := r.FormValue("audio_only"); a != "" {
		parsed, err := strconv.ParseBool(a)
		if err != nil {
			writeJSONError(w, fmt.Sprintf("invalid audio_only %q", a), http.StatusBadRequest)
			return
		}
		opts.AudioOnly = parsed
	}

	job := convert.NewJob(header.Filename, source, from, to, opts)
	result := h.dispatcher.RunOne(r.Context(), job)
	if result.Err != nil {
		writeJSONError(w, result.Err.Error(), conversionStatusCode(result.Err))
		return
	}

	w.Header().Set("Content-Type", result.MIME)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Output)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.Name}))

	err = streaming.StreamWithTimeout(r.Context(), w, bytes.NewReader(result.Output), streaming.DefaultTimeoutWriterConfig())
	if err != nil && !errors.Is(err, streaming.ErrClientGone) {
		logging.Warn("Failed to stream conversion result: %v", err)
	}
}

// conversionStatusCode maps conversion errors to HTTP status codes.
func conversionStatusCode(err error) int {
	var loadErr *engine.LoadError
	switch {
	case errors.As(err, &loadErr), errors.Is(err, convert.ErrEngineUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, raster.ErrUnsupportedFormat), errors.Is(err, convert.ErrNoTool):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusUnprocessableEntity
	}
}
