package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"media-convert/internal/config"
	"media-convert/internal/convert"
	"media-convert/internal/manifest"
	"media-convert/internal/transcode"
)

type fakeEngine struct{}

func (fakeEngine) Name() string               { return "fake" }
func (fakeEngine) Load(context.Context) error { return nil }
func (fakeEngine) Close() error               { return nil }
func (fakeEngine) Run(_ context.Context, dir string, args []string) error {
	return os.WriteFile(filepath.Join(dir, args[len(args)-1]), []byte("transcoded"), 0o644)
}

func newTestRouter(t *testing.T, session *transcode.Session) *mux.Router {
	t.Helper()
	cfg := &config.Config{DefaultQuality: 0.85}
	table := manifest.Default()
	dispatcher := convert.New(convert.Config{Session: session, Table: table, Workers: 1})

	r := mux.NewRouter()
	New(cfg, dispatcher, table, session).RegisterRoutes(r)
	return r
}

func makePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			img.Set(x, y, color.NRGBA{R: 10, G: 120, B: 210, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func multipartUpload(t *testing.T, filename string, payload []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, writer.FormDataContentType()
}

func TestConvertPNGToWebP(t *testing.T) {
	router := newTestRouter(t, nil)

	body, contentType := multipartUpload(t, "pic.png", makePNG(t), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/convert/webp", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/webp" {
		t.Errorf("Expected Content-Type image/webp, got %s", got)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "pic.webp") {
		t.Errorf("Expected attachment filename pic.webp, got %s", cd)
	}
	if rec.Body.Len() == 0 {
		t.Error("Expected non-empty converted payload")
	}
}

func TestConvertTranscode(t *testing.T) {
	session := transcode.NewSession(fakeEngine{}, t.TempDir())
	router := newTestRouter(t, session)

	body, contentType := multipartUpload(t, "clip.mp4", []byte("fake video"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/convert/mp3", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Errorf("Expected Content-Type audio/mpeg, got %s", got)
	}
	if rec.Body.String() != "transcoded" {
		t.Errorf("Expected transcoded payload, got %q", rec.Body.String())
	}
}

func TestConvertMissingFileField(t *testing.T) {
	router := newTestRouter(t, nil)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("from", "png")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/convert/webp", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestConvertEmptyUpload(t *testing.T) {
	router := newTestRouter(t, nil)

	body, contentType := multipartUpload(t, "pic.png", nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/convert/webp", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestConvertUnknownPair(t *testing.T) {
	router := newTestRouter(t, nil)

	body, contentType := multipartUpload(t, "pic.png", makePNG(t), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/convert/docx", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("Expected 415, got %d", rec.Code)
	}
}

func TestConvertCorruptInput(t *testing.T) {
	router := newTestRouter(t, nil)

	body, contentType := multipartUpload(t, "pic.png", []byte("\x89PNG\r\n\x1a\ngarbage"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/convert/webp", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", rec.Code)
	}
}

func TestConvertInvalidQuality(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, q := range []string{"0", "1.5", "-0.2", "high"} {
		body, contentType := multipartUpload(t, "pic.png", makePNG(t), map[string]string{"quality": q})
		req := httptest.NewRequest(http.MethodPost, "/api/convert/webp", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("quality=%s: expected 400, got %d", q, rec.Code)
		}
	}
}

func TestConvertFromFieldOverridesExtension(t *testing.T) {
	router := newTestRouter(t, nil)

	body, contentType := multipartUpload(t, "upload.bin", makePNG(t), map[string]string{"from": "png"})
	req := httptest.NewRequest(http.MethodPost, "/api/convert/jpg", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("Expected Content-Type image/jpeg, got %s", got)
	}
}

func TestGetTools(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp ToolsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode tools response: %v", err)
	}
	if len(resp.Tools) == 0 {
		t.Error("Expected non-empty tool list")
	}
}

func TestGetFormats(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/formats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp FormatsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode formats response: %v", err)
	}

	found := false
	for _, tag := range resp.Image {
		if tag == "png" {
			found = true
		}
	}
	if !found {
		t.Error("Expected png in image formats")
	}
}

func TestHealthCheck(t *testing.T) {
	session := transcode.NewSession(fakeEngine{}, t.TempDir())
	router := newTestRouter(t, session)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if resp.Status != statusHealthy {
		t.Errorf("Expected status healthy, got %s", resp.Status)
	}
	if resp.Engine != "fake" {
		t.Errorf("Expected engine fake, got %s", resp.Engine)
	}
	if resp.Tools == 0 {
		t.Error("Expected non-zero tool count")
	}
}

func TestProbes(t *testing.T) {
	router := newTestRouter(t, nil)

	for _, path := range []string{"/healthz", "/livez", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestGetVersion(t *testing.T) {
	router := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/version", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var info config.BuildInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("Failed to decode version response: %v", err)
	}
	if info.Version == "" {
		t.Error("Expected non-empty version")
	}
}
