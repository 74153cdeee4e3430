package engine

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"media-convert/internal/logging"
	"media-convert/internal/metrics"
)

// WasmEngine runs an FFmpeg build compiled to WASI under wazero.
//
// Load fetches the .wasm binary (from a URL or local path) and compiles it
// exactly once; each Run instantiates a fresh command module with the
// staging directory mounted as the module's filesystem root.
type WasmEngine struct {
	source string
	client *http.Client

	mu       sync.Mutex
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
}

// NewWasmEngine creates an engine that loads its codec module from source,
// which may be an http(s) URL or a local filesystem path.
func NewWasmEngine(source string) *WasmEngine {
	return &WasmEngine{
		source: source,
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Name identifies the engine implementation.
func (e *WasmEngine) Name() string { return "ffmpeg-wasm" }

// Load fetches and compiles the codec module. Idempotent: the fetch and
// compile happen once per engine lifetime.
func (e *WasmEngine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.compiled != nil {
		return nil
	}

	start := time.Now()
	wasmBytes, err := e.fetch(ctx)
	if err != nil {
		metrics.EngineLoadFailures.Inc()
		return &LoadError{Engine: e.Name(), Err: err}
	}

	runtime := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, runtime)

	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		_ = runtime.Close(ctx)
		metrics.EngineLoadFailures.Inc()
		return &LoadError{Engine: e.Name(), Err: fmt.Errorf("compile module: %w", err)}
	}

	logging.Info("Loaded %s engine from %s (%d bytes, %s)",
		e.Name(), e.source, len(wasmBytes), time.Since(start).Round(time.Millisecond))

	e.runtime = runtime
	e.compiled = compiled
	metrics.EngineLoadsTotal.Inc()
	return nil
}

// errTransientFetch marks fetch failures worth retrying (network errors and
// 5xx responses from the CDN).
var errTransientFetch = errors.New("transient fetch failure")

// fetch retrieves the wasm binary from the configured source. Network and
// server-side failures are retried with backoff; a 4xx is permanent.
func (e *WasmEngine) fetch(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(e.source, "http://") && !strings.HasPrefix(e.source, "https://") {
		return os.ReadFile(e.source)
	}

	var data []byte
	err := retryTransient(ctx, defaultRetryConfig(), "engine module fetch", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.source, nil)
		if err != nil {
			return err
		}
		resp, err := e.client.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", errTransientFetch, err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				logging.Warn("failed to close engine module response body: %v", err)
			}
		}()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: status %s", errTransientFetch, resp.Status)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetch engine module: unexpected status %s", resp.Status)
		}
		data, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: %v", errTransientFetch, err)
		}
		return nil
	}, func(err error) bool {
		return errors.Is(err, errTransientFetch) && ctx.Err() == nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch engine module: %w", err)
	}
	return data, nil
}

// Run instantiates the compiled command module with dir mounted as its
// filesystem root and the given arguments.
func (e *WasmEngine) Run(ctx context.Context, dir string, args []string) error {
	e.mu.Lock()
	runtime, compiled := e.runtime, e.compiled
	e.mu.Unlock()

	if compiled == nil {
		return &ExecError{Engine: e.Name(), Err: fmt.Errorf("engine not loaded")}
	}

	var stderr bytes.Buffer
	cfg := wazero.NewModuleConfig().
		WithName(""). // anonymous: each run is an isolated instance
		WithArgs(append([]string{"ffmpeg"}, args...)...).
		WithFSConfig(wazero.NewFSConfig().WithDirMount(dir, "/")).
		WithStdout(io.Discard).
		WithStderr(&stderr).
		WithRandSource(rand.Reader).
		WithSysWalltime().
		WithSysNanotime()

	logging.Debug("Engine run: %s ffmpeg %s", e.Name(), strings.Join(args, " "))

	mod, err := runtime.InstantiateModule(ctx, compiled, cfg)
	if mod != nil {
		defer func() {
			if err := mod.Close(ctx); err != nil {
				logging.Warn("failed to close engine module instance: %v", err)
			}
		}()
	}
	if err != nil {
		// A zero exit code still surfaces as sys.ExitError from _start.
		var exitErr *sys.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 0 {
			metrics.EngineRunsTotal.WithLabelValues("success").Inc()
			return nil
		}
		metrics.EngineRunsTotal.WithLabelValues("error").Inc()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ExecError{Engine: e.Name(), Stderr: tail(stderr.String()), Err: err}
	}

	metrics.EngineRunsTotal.WithLabelValues("success").Inc()
	return nil
}

// Close shuts the runtime down and drops the compiled module so a later
// Load starts over.
func (e *WasmEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.runtime == nil {
		return nil
	}
	err := e.runtime.Close(context.Background())
	e.runtime = nil
	e.compiled = nil
	return err
}
