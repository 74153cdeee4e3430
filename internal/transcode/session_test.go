package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"media-convert/internal/engine"
)

// fakeEngine records load/run calls and fabricates the output file the
// session expects each pass to produce.
type fakeEngine struct {
	mu       sync.Mutex
	loads    int
	runs     [][]string
	failLoad bool
	failRun  map[int]error // run index (0-based) -> injected error
	loaded   bool
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Load(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded {
		return nil
	}
	if f.failLoad {
		return &engine.LoadError{Engine: f.Name(), Err: errors.New("injected load failure")}
	}
	f.loads++
	f.loaded = true
	return nil
}

func (f *fakeEngine) Run(_ context.Context, dir string, args []string) error {
	f.mu.Lock()
	runIdx := len(f.runs)
	f.runs = append(f.runs, args)
	injected := f.failRun[runIdx]
	f.mu.Unlock()

	if injected != nil {
		return injected
	}

	// The final argument is the file this pass produces.
	out := args[len(args)-1]
	return os.WriteFile(filepath.Join(dir, out), []byte("fake output bytes"), 0o644)
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loaded = false
	return nil
}

func newTestSession(t *testing.T, eng engine.Engine) *Session {
	t.Helper()
	return NewSession(eng, t.TempDir())
}

func TestConvertEmptyInput(t *testing.T) {
	s := newTestSession(t, &fakeEngine{})

	if _, err := s.Convert(context.Background(), nil, "mp4", "webm", Options{}); err == nil {
		t.Fatal("Expected error for empty input, got nil")
	}
}

func TestConvertUnsupportedTarget(t *testing.T) {
	s := newTestSession(t, &fakeEngine{})

	_, err := s.Convert(context.Background(), []byte("data"), "mp4", "mkv", Options{})
	if err == nil {
		t.Fatal("Expected error for unsupported target, got nil")
	}
	if !strings.Contains(err.Error(), "unsupported target format") {
		t.Errorf("Expected unsupported-target error, got: %v", err)
	}
}

func TestConvertSuccess(t *testing.T) {
	fake := &fakeEngine{}
	s := newTestSession(t, fake)

	out, err := s.Convert(context.Background(), []byte("video data"), "mp4", "webm", Options{})
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if len(out) == 0 {
		t.Error("Expected non-empty output")
	}
	if len(fake.runs) != 1 {
		t.Errorf("Expected 1 engine run, got %d", len(fake.runs))
	}
}

func TestEngineLoadedOnce(t *testing.T) {
	fake := &fakeEngine{}
	s := newTestSession(t, fake)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := s.Convert(ctx, []byte("data"), "mp4", "webm", Options{}); err != nil {
			t.Fatalf("Convert %d failed: %v", i, err)
		}
	}

	if fake.loads != 1 {
		t.Errorf("Expected engine loaded exactly once across 5 jobs, got %d loads", fake.loads)
	}
}

func TestLoadBeforeConvert(t *testing.T) {
	fake := &fakeEngine{}
	s := newTestSession(t, fake)

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := s.Convert(context.Background(), []byte("data"), "mp4", "webm", Options{}); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if fake.loads != 1 {
		t.Errorf("Expected one engine load across Load+Convert, got %d", fake.loads)
	}
}

func TestLoadPropagatesEngineFailure(t *testing.T) {
	fake := &fakeEngine{failLoad: true}
	s := newTestSession(t, fake)

	err := s.Load(context.Background())
	var loadErr *engine.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected *engine.LoadError, got %T: %v", err, err)
	}
}

func TestLoadFailureIsFatal(t *testing.T) {
	fake := &fakeEngine{failLoad: true}
	s := newTestSession(t, fake)

	_, err := s.Convert(context.Background(), []byte("data"), "mp4", "webm", Options{})
	if err == nil {
		t.Fatal("Expected load error, got nil")
	}

	var loadErr *engine.LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("Expected *engine.LoadError, got %T: %v", err, err)
	}
	if len(fake.runs) != 0 {
		t.Errorf("Expected no engine runs after load failure, got %d", len(fake.runs))
	}
}

func TestExecFailureDoesNotPoisonSession(t *testing.T) {
	fake := &fakeEngine{
		failRun: map[int]error{
			0: &engine.ExecError{Engine: "fake", Err: errors.New("malformed input")},
		},
	}
	s := newTestSession(t, fake)
	ctx := context.Background()

	_, err := s.Convert(ctx, []byte("corrupt"), "mp4", "webm", Options{})
	if err == nil {
		t.Fatal("Expected execution error, got nil")
	}
	var execErr *engine.ExecError
	if !errors.As(err, &execErr) {
		t.Errorf("Expected *engine.ExecError, got %T: %v", err, err)
	}

	// A subsequent valid job on the same session must still succeed.
	if _, err := s.Convert(ctx, []byte("valid"), "mp4", "webm", Options{}); err != nil {
		t.Fatalf("Convert after failed job errored: %v", err)
	}

	if fake.loads != 1 {
		t.Errorf("Expected single engine load across failure and retry, got %d", fake.loads)
	}
}

func TestGifTwoPassPipeline(t *testing.T) {
	fake := &fakeEngine{}
	s := newTestSession(t, fake)

	out, err := s.Convert(context.Background(), []byte("video"), "mp4", "gif", Options{})
	if err != nil {
		t.Fatalf("Convert to gif failed: %v", err)
	}
	if len(out) == 0 {
		t.Error("Expected non-empty gif output")
	}

	if len(fake.runs) != 2 {
		t.Fatalf("Expected 2 engine runs for gif, got %d", len(fake.runs))
	}

	first := strings.Join(fake.runs[0], " ")
	second := strings.Join(fake.runs[1], " ")

	if !strings.Contains(first, "palettegen") {
		t.Errorf("Expected palette generation in first pass, got %v", fake.runs[0])
	}
	if !strings.Contains(second, "paletteuse") {
		t.Errorf("Expected palette application in second pass, got %v", fake.runs[1])
	}
	if !strings.Contains(second, "-loop 0") {
		t.Errorf("Expected infinite loop in second pass, got %v", fake.runs[1])
	}
}

func TestStagingCleanupAfterJob(t *testing.T) {
	fake := &fakeEngine{}
	s := newTestSession(t, fake)
	ctx := context.Background()

	baseline, err := s.StagedFileCount()
	if err != nil {
		t.Fatalf("StagedFileCount failed: %v", err)
	}

	if _, err := s.Convert(ctx, []byte("video"), "mp4", "gif", Options{}); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	after, err := s.StagedFileCount()
	if err != nil {
		t.Fatalf("StagedFileCount failed: %v", err)
	}
	if after != baseline {
		t.Errorf("Expected staged file count back to baseline %d, got %d", baseline, after)
	}
}

func TestStagingCleanupAfterFailedJob(t *testing.T) {
	fake := &fakeEngine{
		failRun: map[int]error{
			1: &engine.ExecError{Engine: "fake", Err: errors.New("encode pass failed")},
		},
	}
	s := newTestSession(t, fake)
	ctx := context.Background()

	baseline, _ := s.StagedFileCount()

	if _, err := s.Convert(ctx, []byte("video"), "mp4", "gif", Options{}); err == nil {
		t.Fatal("Expected error from failing second pass")
	}

	after, _ := s.StagedFileCount()
	if after != baseline {
		t.Errorf("Expected staged file count back to baseline %d after failure, got %d", baseline, after)
	}
}

func TestDisposeReloadsEngine(t *testing.T) {
	fake := &fakeEngine{}
	s := newTestSession(t, fake)
	ctx := context.Background()

	if _, err := s.Convert(ctx, []byte("data"), "mp4", "webm", Options{}); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if err := s.Dispose(); err != nil {
		t.Fatalf("Dispose failed: %v", err)
	}
	if _, err := s.Convert(ctx, []byte("data"), "mp4", "webm", Options{}); err != nil {
		t.Fatalf("Convert after dispose failed: %v", err)
	}

	if fake.loads != 2 {
		t.Errorf("Expected engine reloaded after dispose (2 loads), got %d", fake.loads)
	}
}

func TestConcurrentConvertsSerialize(t *testing.T) {
	fake := &fakeEngine{}
	s := newTestSession(t, fake)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Convert(ctx, []byte(fmt.Sprintf("input %d", i)), "mp4", "webm", Options{})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Concurrent convert %d failed: %v", i, err)
		}
	}
	if fake.loads != 1 {
		t.Errorf("Expected a single engine load under concurrency, got %d", fake.loads)
	}
}
