package transcode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"media-convert/internal/engine"
	"media-convert/internal/formats"
	"media-convert/internal/logging"
	"media-convert/internal/metrics"
)

// Session wraps one loaded instance of the transcoding engine and owns its
// staging area. All engine access is serialized: the engine is not
// re-entrant, and one job's staged files must never collide with another's
// (staging names are additionally per-job unique).
type Session struct {
	eng engine.Engine
	dir string
	mu  sync.Mutex
}

// NewSession creates a session around eng, staging virtual files under
// stagingDir. The engine is not loaded until the first conversion.
func NewSession(eng engine.Engine, stagingDir string) *Session {
	return &Session{eng: eng, dir: stagingDir}
}

// Engine returns the name of the underlying engine implementation.
func (s *Session) Engine() string { return s.eng.Name() }

// Load brings the engine up without running a job. Convert loads lazily on
// first use, so calling Load first only separates engine preparation from
// execution; the underlying load still happens once per engine lifetime.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Load(ctx)
}

// Convert transcodes input from one container format to another and returns
// the complete output file bytes.
//
// The first call loads the engine (for the wasm engine this includes the
// network fetch of the codec module); subsequent calls reuse it. A load
// failure surfaces as *engine.LoadError and is fatal. An execution failure
// surfaces as *engine.ExecError, affects only this job, and leaves the
// loaded engine usable.
func (s *Session) Convert(ctx context.Context, input []byte, from, to string, opts Options) ([]byte, error) {
	from = formats.Normalize(from)
	to = formats.Normalize(to)

	if len(input) == 0 {
		return nil, fmt.Errorf("empty input buffer")
	}
	tpl, ok := templates[to]
	if !ok {
		return nil, fmt.Errorf("unsupported target format %q", to)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.eng.Load(ctx); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	inName := "input-" + id + "." + from
	outName := "output-" + id + "." + to

	staged := []string{inName, outName}
	defer func() { s.cleanup(staged) }()

	if err := os.WriteFile(filepath.Join(s.dir, inName), input, 0o644); err != nil {
		return nil, fmt.Errorf("failed to stage input: %w", err)
	}

	if tpl.pipeline == paletted {
		palette := "palette-" + id + ".png"
		staged = append(staged, palette)

		if err := s.eng.Run(ctx, s.dir, buildPaletteGenArgs(inName, palette)); err != nil {
			return nil, fmt.Errorf("palette pass: %w", err)
		}
		if err := s.eng.Run(ctx, s.dir, buildPaletteUseArgs(inName, palette, outName)); err != nil {
			return nil, fmt.Errorf("encode pass: %w", err)
		}
	} else {
		if err := s.eng.Run(ctx, s.dir, buildArgs(inName, outName, tpl, opts)); err != nil {
			return nil, fmt.Errorf("transcoding %s to %s: %w", from, to, err)
		}
	}

	output, err := os.ReadFile(filepath.Join(s.dir, outName))
	if err != nil {
		return nil, fmt.Errorf("failed to read output: %w", err)
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("engine produced empty output for %s to %s", from, to)
	}

	return output, nil
}

// StagedFileCount reports how many files currently sit in the staging area.
// After a completed job the count returns to its pre-job baseline.
func (s *Session) StagedFileCount() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Dispose terminates and drops the engine instance. A later Convert loads a
// fresh one. Dispose is not called automatically on process exit.
func (s *Session) Dispose() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	logging.Info("Disposing %s engine", s.eng.Name())
	return s.eng.Close()
}

// cleanup removes staged files best-effort. A file that cannot be removed
// leaks until the next process restart, so it is counted.
func (s *Session) cleanup(names []string) {
	for _, name := range names {
		err := os.Remove(filepath.Join(s.dir, name))
		if err != nil && !os.IsNotExist(err) {
			logging.Warn("failed to remove staged file %s: %v", name, err)
			metrics.StagedFilesLeaked.Inc()
		}
	}
}
