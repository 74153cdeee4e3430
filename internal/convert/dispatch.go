package convert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"media-convert/internal/engine"
	"media-convert/internal/formats"
	"media-convert/internal/logging"
	"media-convert/internal/manifest"
	"media-convert/internal/memory"
	"media-convert/internal/metrics"
	"media-convert/internal/raster"
	"media-convert/internal/transcode"
	"media-convert/internal/workers"
)

// ErrEngineUnavailable marks transcode jobs skipped after the engine failed
// to load earlier in the batch.
var ErrEngineUnavailable = errors.New("transcoding engine unavailable")

// ErrNoTool indicates the format pair has no registered conversion tool.
var ErrNoTool = errors.New("no conversion tool")

// Config carries the collaborators a Dispatcher needs. Zero-value fields
// fall back to sane defaults in New.
type Config struct {
	// Session services wasm-transcode jobs. May be nil when the deployment
	// only offers raster pairs.
	Session *transcode.Session
	// Table selects the engine kind per format pair. Defaults to the
	// compiled-in table.
	Table *manifest.Table
	// Limits bound raster decodes. Defaults to raster.DefaultLimits.
	Limits raster.Limits
	// Workers caps batch concurrency. Defaults to the CPU-derived count.
	Workers int
	// OnUpdate receives every job state transition. Optional. Called from
	// worker goroutines, so it must be safe for concurrent use.
	OnUpdate func(Update)
	// Memory, when set, gates job admission on heap pressure.
	Memory *memory.Monitor
}

// Dispatcher runs conversion jobs on a bounded worker pool, routing each
// job to the engine its format pair is registered for.
type Dispatcher struct {
	session  *transcode.Session
	table    *manifest.Table
	limits   raster.Limits
	workers  int
	onUpdate func(Update)
	memory   *memory.Monitor
}

// New builds a dispatcher from cfg.
func New(cfg Config) *Dispatcher {
	table := cfg.Table
	if table == nil {
		table = manifest.Default()
	}
	limits := cfg.Limits
	if limits.MaxDimension == 0 && limits.MaxPixels == 0 {
		limits = raster.DefaultLimits()
	}
	count := cfg.Workers
	if count <= 0 {
		count = workers.ForCPU(8)
	}
	return &Dispatcher{
		session:  cfg.Session,
		table:    table,
		limits:   limits,
		workers:  count,
		onUpdate: cfg.OnUpdate,
		memory:   cfg.Memory,
	}
}

// Run processes a batch of jobs and returns one result per job, in the
// same order the jobs were given. A failed job yields a Result with Err
// set; it never aborts the batch. Run blocks until every job reaches a
// terminal state or ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	for _, job := range jobs {
		d.emit(job, StatusQueued, 0, "")
	}

	// A transcoding engine load failure latches for the remainder of this
	// batch only; a re-initiated conversion attempts a fresh load.
	var engineDown atomic.Bool

	sem := make(chan struct{}, d.workers)
	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = d.runJob(ctx, jobs[i], &engineDown)
		}(i)
	}
	wg.Wait()

	return results
}

// RunOne processes a single job synchronously. A single job is its own
// batch, so an engine load failure here never poisons later calls.
func (d *Dispatcher) RunOne(ctx context.Context, job Job) Result {
	d.emit(job, StatusQueued, 0, "")
	return d.runJob(ctx, job, nil)
}

func (d *Dispatcher) runJob(ctx context.Context, job Job, engineDown *atomic.Bool) Result {
	kind, ok := d.table.Lookup(job.From, job.To)
	if !ok {
		return d.failEarly(job, fmt.Errorf("%w for %s to %s", ErrNoTool, job.From, job.To))
	}

	if err := ctx.Err(); err != nil {
		return d.failEarly(job, err)
	}

	if d.memory != nil && !d.memory.WaitIfPaused() {
		return d.failEarly(job, errors.New("converter shutting down"))
	}

	d.emit(job, StatusLoading, 10, "")

	start := time.Now()
	var output []byte
	var mime string
	var err error

	switch kind {
	case manifest.KindTranscode:
		output, mime, err = d.runTranscode(ctx, job, engineDown)
	case manifest.KindRaster, manifest.KindPDF, manifest.KindSVG:
		output, mime, err = d.runRaster(job)
	default:
		d.emit(job, StatusProcessing, 50, "")
		err = fmt.Errorf("unknown engine kind %q", kind)
	}

	elapsed := time.Since(start)
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ConversionsTotal.WithLabelValues(string(kind), job.From, job.To, status).Inc()
	metrics.ConversionDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
	metrics.ConversionInputBytes.Observe(float64(len(job.Source)))

	if err != nil {
		logging.Warn("Conversion %s to %s failed after %v: %v", job.From, job.To, elapsed.Round(time.Millisecond), err)
		return d.fail(job, err)
	}

	metrics.ConversionOutputBytes.Observe(float64(len(output)))
	logging.Info("Converted %s to %s via %s in %v (%d bytes in, %d bytes out)",
		job.From, job.To, kind, elapsed.Round(time.Millisecond), len(job.Source), len(output))

	d.emit(job, StatusCompleted, 100, "")
	return Result{Job: job, Output: output, MIME: mime, Name: job.OutputName()}
}

func (d *Dispatcher) runTranscode(ctx context.Context, job Job, engineDown *atomic.Bool) ([]byte, string, error) {
	if d.session == nil {
		d.emit(job, StatusProcessing, 50, "")
		return nil, "", fmt.Errorf("no transcoding session configured")
	}
	if engineDown != nil && engineDown.Load() {
		d.emit(job, StatusProcessing, 50, "")
		return nil, "", ErrEngineUnavailable
	}

	// Engine preparation is the loading phase; the job flips to processing
	// once the engine is ready to run.
	err := d.session.Load(ctx)
	d.emit(job, StatusProcessing, 50, "")
	if err != nil {
		var loadErr *engine.LoadError
		if errors.As(err, &loadErr) && engineDown != nil {
			engineDown.Store(true)
			logging.Error("Transcoding engine failed to load, failing remaining transcode jobs in this batch: %v", err)
		}
		return nil, "", err
	}

	output, err := d.session.Convert(ctx, job.Source, job.From, job.To, job.Options)
	if err != nil {
		return nil, "", err
	}
	return output, formats.MIMEType(job.To), nil
}

func (d *Dispatcher) runRaster(job Job) ([]byte, string, error) {
	d.emit(job, StatusProcessing, 50, "")

	pb, err := raster.DecodeToRGBAWithLimits(job.From, job.Source, d.limits)
	if err != nil {
		return nil, "", err
	}

	blob, err := raster.EncodeFromRGBA(job.To, pb, job.Options.Quality)
	if err != nil {
		return nil, "", err
	}
	return blob.Data, blob.MIME, nil
}

func (d *Dispatcher) fail(job Job, err error) Result {
	d.emit(job, StatusError, 100, err.Error())
	return Result{Job: job, Name: job.OutputName(), Err: err}
}

// failEarly rejects a job before any engine work. The intermediate states
// are still walked so every terminal transition passes through processing.
func (d *Dispatcher) failEarly(job Job, err error) Result {
	d.emit(job, StatusLoading, 10, "")
	d.emit(job, StatusProcessing, 50, "")
	return d.fail(job, err)
}

func (d *Dispatcher) emit(job Job, status Status, progress int, message string) {
	if d.onUpdate == nil {
		return
	}
	d.onUpdate(Update{
		JobID:    job.ID,
		Name:     job.Name,
		Status:   status,
		Progress: progress,
		Message:  message,
	})
}
