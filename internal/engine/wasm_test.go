package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWasmEngineName(t *testing.T) {
	if got := NewWasmEngine("engine.wasm").Name(); got != "ffmpeg-wasm" {
		t.Errorf("Expected name ffmpeg-wasm, got %s", got)
	}
}

func TestWasmEngineLoadMissingFile(t *testing.T) {
	eng := NewWasmEngine("/nonexistent/engine.wasm")

	err := eng.Load(context.Background())
	if err == nil {
		t.Fatal("Expected load error for missing wasm file, got nil")
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("Expected *LoadError, got %T: %v", err, err)
	}
}

func TestWasmEngineLoadInvalidModule(t *testing.T) {
	// A file that is not a wasm module must fail at compile, not at fetch.
	path := filepath.Join(t.TempDir(), "bogus.wasm")
	if err := os.WriteFile(path, []byte("not a wasm module"), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := NewWasmEngine(path)
	defer func() {
		if err := eng.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	}()

	err := eng.Load(context.Background())
	if err == nil {
		t.Fatal("Expected load error for invalid module, got nil")
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("Expected *LoadError, got %T: %v", err, err)
	}
}

func TestWasmEngineRunBeforeLoad(t *testing.T) {
	eng := NewWasmEngine("engine.wasm")

	err := eng.Run(context.Background(), t.TempDir(), []string{"-version"})
	if err == nil {
		t.Fatal("Expected error running before load, got nil")
	}

	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Errorf("Expected *ExecError, got %T: %v", err, err)
	}
}

func TestWasmEngineCloseWithoutLoad(t *testing.T) {
	eng := NewWasmEngine("engine.wasm")
	if err := eng.Close(); err != nil {
		t.Errorf("Close on unloaded engine errored: %v", err)
	}
}
