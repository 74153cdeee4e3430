package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"media-convert/internal/logging"
	"media-convert/internal/metrics"
)

// stderrTailBytes bounds how much engine stderr is carried into errors.
const stderrTailBytes = 2048

// ExecEngine runs a native ffmpeg binary via os/exec.
type ExecEngine struct {
	path string

	mu       sync.Mutex
	resolved string
	loaded   bool
}

// NewExecEngine creates an engine backed by the ffmpeg binary at path.
// An unqualified path is resolved against PATH at load time.
func NewExecEngine(path string) *ExecEngine {
	if path == "" {
		path = "ffmpeg"
	}
	return &ExecEngine{path: path}
}

// Name identifies the engine implementation.
func (e *ExecEngine) Name() string { return "ffmpeg-exec" }

// Load resolves and probes the ffmpeg binary. Idempotent.
func (e *ExecEngine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded {
		return nil
	}

	resolved, err := exec.LookPath(e.path)
	if err != nil {
		metrics.EngineLoadFailures.Inc()
		return &LoadError{Engine: e.Name(), Err: err}
	}

	// One probe run verifies the binary actually executes.
	cmd := exec.CommandContext(ctx, resolved, "-version")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		metrics.EngineLoadFailures.Inc()
		return &LoadError{Engine: e.Name(), Err: fmt.Errorf("version probe: %w", err)}
	}

	version := stdout.String()
	if idx := strings.IndexByte(version, '\n'); idx > 0 {
		version = version[:idx]
	}
	logging.Info("Loaded %s engine: %s", e.Name(), strings.TrimSpace(version))

	e.resolved = resolved
	e.loaded = true
	metrics.EngineLoadsTotal.Inc()
	return nil
}

// Run executes one ffmpeg invocation with dir as the working directory.
func (e *ExecEngine) Run(ctx context.Context, dir string, args []string) error {
	e.mu.Lock()
	resolved, loaded := e.resolved, e.loaded
	e.mu.Unlock()

	if !loaded {
		return &ExecError{Engine: e.Name(), Err: fmt.Errorf("engine not loaded")}
	}

	cmd := exec.CommandContext(ctx, resolved, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logging.Debug("Engine run: %s %s", resolved, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		metrics.EngineRunsTotal.WithLabelValues("error").Inc()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ExecError{Engine: e.Name(), Stderr: tail(stderr.String()), Err: err}
	}

	metrics.EngineRunsTotal.WithLabelValues("success").Inc()
	return nil
}

// Close drops the resolved binary so the next Load re-probes.
func (e *ExecEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loaded = false
	e.resolved = ""
	return nil
}

// tail returns the last stderrTailBytes of s, which is where ffmpeg
// reports the actual failure.
func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTailBytes {
		s = s[len(s)-stderrTailBytes:]
	}
	return s
}
