package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"media-convert/internal/logging"
	"media-convert/internal/workers"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Engine kinds selectable via the ENGINE environment variable.
const (
	EngineExec = "exec"
	EngineWasm = "wasm"
)

// DefaultWasmURL is the published FFmpeg WASI build fetched on first use
// when ENGINE=wasm and no local path is configured.
const DefaultWasmURL = "https://unpkg.com/@ffmpeg/core@0.12.6/dist/umd/ffmpeg-core.wasm"

// Config holds all application configuration
type Config struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	LogHealthChecks bool

	// Engine selection and staging
	Engine        string // "exec" or "wasm"
	FFmpegPath    string // override for the exec engine binary
	EngineWasmURL string // URL or local path for the wasm engine binary
	StagingDir    string

	// Tools manifest
	ManifestPath  string
	WatchManifest bool

	// Conversion tuning
	Workers           int
	DefaultQuality    float64
	MaxImageDimension int
	MaxImagePixels    int
	ShutdownTimeout   time.Duration
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	port := getEnv("PORT", "8080")
	metricsPort := getEnv("METRICS_PORT", "9090")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)

	engine := getEnv("ENGINE", EngineExec)
	if engine != EngineExec && engine != EngineWasm {
		return nil, fmt.Errorf("invalid ENGINE %q: must be %q or %q", engine, EngineExec, EngineWasm)
	}

	ffmpegPath := getEnv("FFMPEG_PATH", "ffmpeg")
	wasmURL := getEnv("ENGINE_WASM_URL", DefaultWasmURL)
	stagingDir := getEnv("STAGING_DIR", filepath.Join(os.TempDir(), "media-convert"))

	manifestPath := getEnv("MANIFEST_PATH", "")
	watchManifest := getEnvBool("WATCH_MANIFEST", manifestPath != "")

	workerCount := workers.ForCPU(getEnvInt("MAX_WORKERS", 8))
	quality := getEnvFloat("DEFAULT_QUALITY", 0.85)
	if quality <= 0 || quality > 1 {
		logging.Warn("  Invalid DEFAULT_QUALITY %v, using 0.85", quality)
		quality = 0.85
	}
	maxDimension := getEnvInt("MAX_IMAGE_DIMENSION", 8192)
	maxPixels := getEnvInt("MAX_IMAGE_PIXELS", 50_000_000)

	logging.Info("  PORT:                %s", port)
	logging.Info("  METRICS_PORT:        %s", metricsPort)
	logging.Info("  METRICS_ENABLED:     %v", metricsEnabled)
	logging.Info("  ENGINE:              %s", engine)
	logging.Info("  STAGING_DIR:         %s", stagingDir)
	logging.Info("  MANIFEST_PATH:       %s", orUnset(manifestPath))
	logging.Info("  WATCH_MANIFEST:      %v", watchManifest)
	logging.Info("  WORKERS:             %d", workerCount)
	logging.Info("  DEFAULT_QUALITY:     %.2f", quality)
	logging.Info("  MAX_IMAGE_DIMENSION: %d", maxDimension)
	logging.Info("  MAX_IMAGE_PIXELS:    %d", maxPixels)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
	logging.Info("------------------------------------------------------------")

	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create staging directory %s: %w", stagingDir, err)
	}

	return &Config{
		Port:              port,
		MetricsPort:       metricsPort,
		MetricsEnabled:    metricsEnabled,
		LogHealthChecks:   logHealthChecks,
		Engine:            engine,
		FFmpegPath:        ffmpegPath,
		EngineWasmURL:     wasmURL,
		StagingDir:        stagingDir,
		ManifestPath:      manifestPath,
		WatchManifest:     watchManifest,
		Workers:           workerCount,
		DefaultQuality:    quality,
		MaxImageDimension: maxDimension,
		MaxImagePixels:    maxPixels,
		ShutdownTimeout:   30 * time.Second,
	}, nil
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("  Invalid %s value %q, using default %v", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("  Invalid %s value %q, using default %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		logging.Warn("  Invalid %s value %q, using default %v", key, value, fallback)
		return fallback
	}
	return parsed
}
