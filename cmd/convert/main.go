// Command convert is the batch CLI front end for the conversion pipeline.
//
// Usage:
//
//	convert -to webp photo.png scan.tiff
//	convert -to gif -engine wasm clip.mp4
//	convert -to mp3 -audio-only *.mp4
//
// Converted files are written next to their inputs with the target
// extension. The exit code is non-zero if any file failed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"media-convert/internal/config"
	"media-convert/internal/convert"
	"media-convert/internal/engine"
	"media-convert/internal/logging"
	"media-convert/internal/manifest"
	"media-convert/internal/raster"
	"media-convert/internal/transcode"
	"media-convert/internal/workers"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		to           = flag.String("to", "", "target format tag (required)")
		quality      = flag.Float64("quality", raster.DefaultQuality, "encode quality in (0, 1] for lossy targets")
		audioOnly    = flag.Bool("audio-only", false, "strip the video stream on transcode targets")
		workerCount  = flag.Int("workers", 0, "concurrent conversions (default: derived from CPU count)")
		manifestPath = flag.String("manifest", "", "tools manifest JSON (default: compiled-in table)")
		engineKind   = flag.String("engine", config.EngineExec, `transcoding engine: "exec" or "wasm"`)
		ffmpegPath   = flag.String("ffmpeg", "ffmpeg", "ffmpeg binary for the exec engine")
		wasmSource   = flag.String("wasm", config.DefaultWasmURL, "URL or path of the wasm engine binary")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -to FORMAT [flags] FILE...\n\nFlags:\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	files := flag.Args()
	if *to == "" || len(files) == 0 {
		flag.Usage()
		return 2
	}

	if err := raster.InitVips(); err != nil {
		logging.Warn("libvips unavailable, HEIF/AVIF/PDF/SVG conversions disabled: %v", err)
	}
	defer raster.ShutdownVips()

	table := manifest.Default()
	if *manifestPath != "" {
		var err error
		table, err = manifest.Load(*manifestPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}

	var eng engine.Engine
	switch *engineKind {
	case config.EngineExec:
		eng = engine.NewExecEngine(*ffmpegPath)
	case config.EngineWasm:
		eng = engine.NewWasmEngine(*wasmSource)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown engine %q\n", *engineKind)
		return 2
	}

	staging, err := os.MkdirTemp("", "media-convert-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer os.RemoveAll(staging)

	session := transcode.NewSession(eng, staging)
	defer session.Dispose()

	count := *workerCount
	if count <= 0 {
		count = workers.ForCPU(8)
	}

	isTTY := term.IsTerminal(int(os.Stderr.Fd()))
	dispatcher := convert.New(convert.Config{
		Session:  session,
		Table:    table,
		Workers:  count,
		OnUpdate: progressPrinter(isTTY),
	})

	jobs := make([]convert.Job, 0, len(files))
	for _, path := range files {
		source, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		jobs = append(jobs, convert.NewJob(
			filepath.Base(path),
			source,
			filepath.Ext(path),
			*to,
			transcode.Options{Quality: *quality, AudioOnly: *audioOnly},
		))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	results := dispatcher.Run(ctx, jobs)

	failed := 0
	for i, result := range results {
		if result.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", files[i], result.Err)
			continue
		}

		outPath := filepath.Join(filepath.Dir(files[i]), result.Name)
		if err := os.WriteFile(outPath, result.Output, 0o644); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", outPath, err)
			continue
		}
		fmt.Printf("%s -> %s (%d bytes)\n", files[i], outPath, len(result.Output))
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d conversions failed\n", failed, len(files))
		return 1
	}
	return 0
}

// progressPrinter reports job transitions on stderr. On a terminal,
// intermediate states overwrite in place; in a pipe only terminal states
// are printed so logs stay clean.
func progressPrinter(isTTY bool) func(convert.Update) {
	return func(u convert.Update) {
		switch {
		case u.Status.Terminal():
			if isTTY {
				fmt.Fprint(os.Stderr, "\r\033[K")
			}
			if u.Status == convert.StatusError {
				fmt.Fprintf(os.Stderr, "%s: %s (%s)\n", u.Name, u.Status, u.Message)
			}
		case isTTY:
			fmt.Fprintf(os.Stderr, "\r\033[K%s: %s (%d%%)", u.Name, u.Status, u.Progress)
		}
	}
}
