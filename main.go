package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"media-convert/internal/config"
	"media-convert/internal/convert"
	"media-convert/internal/engine"
	"media-convert/internal/handlers"
	"media-convert/internal/logging"
	"media-convert/internal/manifest"
	"media-convert/internal/memory"
	"media-convert/internal/metrics"
	"media-convert/internal/middleware"
	"media-convert/internal/raster"
	"media-convert/internal/startup"
	"media-convert/internal/transcode"
)

func main() {
	startTime := time.Now()

	startup.PrintBanner()
	startup.LogSystemInfo()

	// Set GOMEMLIMIT before any significant allocation.
	memory.ConfigureFromEnv()

	cfg, err := config.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// libvips backs the HEIF/AVIF/PDF/SVG paths; without it the native
	// raster formats still work.
	if err := raster.InitVips(); err != nil {
		logging.Warn("libvips unavailable, HEIF/AVIF/PDF/SVG conversions disabled: %v", err)
	}
	defer raster.ShutdownVips()

	// Transcoding engine and session
	var eng engine.Engine
	switch cfg.Engine {
	case config.EngineWasm:
		eng = engine.NewWasmEngine(cfg.EngineWasmURL)
		startup.LogEngineInit(cfg.Engine, cfg.EngineWasmURL)
	default:
		eng = engine.NewExecEngine(cfg.FFmpegPath)
		startup.LogEngineInit(cfg.Engine, cfg.FFmpegPath)
	}
	session := transcode.NewSession(eng, cfg.StagingDir)

	// Tool manifest
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	table := manifest.Default()
	if cfg.ManifestPath != "" {
		table, err = manifest.Load(cfg.ManifestPath)
		if err != nil {
			startup.LogFatal("Failed to load tools manifest: %v", err)
		}
		if cfg.WatchManifest {
			if err := manifest.Watch(ctx, table, cfg.ManifestPath); err != nil {
				logging.Warn("Failed to watch tools manifest: %v", err)
			}
		}
	}
	startup.LogManifestInit(table.Len(), cfg.ManifestPath, cfg.WatchManifest)

	// Memory backpressure
	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	dispatcher := convert.New(convert.Config{
		Session: session,
		Table:   table,
		Limits: raster.Limits{
			MaxDimension: cfg.MaxImageDimension,
			MaxPixels:    cfg.MaxImagePixels,
		},
		Workers: cfg.Workers,
		Memory:  monitor,
	})

	// HTTP setup
	h := handlers.New(cfg, dispatcher, table, session)
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	startup.LogHTTPRoutes(router, cfg.LogHealthChecks)

	metrics.InitializeMetrics()
	if cfg.MetricsEnabled {
		go serveMetrics(cfg.MetricsPort)
	}

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = cfg.LogHealthChecks

	handler := middleware.Compression(middleware.DefaultCompressionConfig())(
		middleware.Logger(loggingConfig)(
			middleware.Metrics(middleware.DefaultMetricsConfig())(router)))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // conversions can take minutes; the streaming layer bounds writes
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, cancel, session, monitor, cfg.ShutdownTimeout)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            cfg.Port,
		MetricsPort:     cfg.MetricsPort,
		MetricsEnabled:  cfg.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func serveMetrics(port string) {
	m := http.NewServeMux()
	m.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(":"+port, m); err != nil {
		logging.Error("Metrics server error: %v", err)
	}
}

func handleShutdown(srv *http.Server, cancel context.CancelFunc, session *transcode.Session, monitor *memory.Monitor, timeout time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()

	startup.LogShutdownStep("Stopping manifest watcher and memory monitor")
	cancel()
	monitor.Stop()
	startup.LogShutdownStepComplete("Background workers stopped")

	startup.LogShutdownStep("Disposing transcoding engine")
	if err := session.Dispose(); err != nil {
		logging.Warn("Engine dispose error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Engine disposed")
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
