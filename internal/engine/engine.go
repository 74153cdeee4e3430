package engine

import (
	"context"
	"fmt"
)

// Engine runs an external codec toolkit against files staged in a private
// working directory.
type Engine interface {
	// Name identifies the engine implementation for logs and errors.
	Name() string

	// Load prepares the engine for use. It is idempotent: a second call
	// while loaded is a no-op. After Close, Load brings up a fresh instance.
	Load(ctx context.Context) error

	// Run executes one conversion command with dir as the working directory.
	// Arguments reference staged files by bare name relative to dir.
	Run(ctx context.Context, dir string, args []string) error

	// Close tears the engine down and releases its resources. A later Load
	// starts over from scratch.
	Close() error
}

// LoadError indicates the engine could not be brought up (missing binary,
// failed fetch, compilation failure). Load failures are fatal for the
// affected batch and are never retried automatically.
type LoadError struct {
	Engine string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s engine load failed: %v", e.Engine, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ExecError indicates a single engine invocation failed (malformed input,
// unsupported codec). It affects only the job that triggered it; the loaded
// engine remains usable for subsequent jobs.
type ExecError struct {
	Engine string
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s engine execution failed: %v: %s", e.Engine, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s engine execution failed: %v", e.Engine, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }
