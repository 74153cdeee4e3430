package convert

import (
	"strings"

	"github.com/google/uuid"

	"media-convert/internal/formats"
	"media-convert/internal/transcode"
)

// Status is the lifecycle state of one conversion job.
type Status string

const (
	// StatusQueued means the job is accepted but not yet started.
	StatusQueued Status = "queued"
	// StatusLoading means the engine for the job is being prepared.
	StatusLoading Status = "loading"
	// StatusProcessing means the actual conversion is running.
	StatusProcessing Status = "processing"
	// StatusCompleted is the terminal success state.
	StatusCompleted Status = "completed"
	// StatusError is the terminal failure state.
	StatusError Status = "error"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Job is one file conversion request. A job is consumed by exactly one
// engine call and discarded once its output or error is produced.
type Job struct {
	ID      string
	Name    string // original filename, used to derive the output name
	Source  []byte
	From    string
	To      string
	Options transcode.Options
}

// NewJob builds a job with a fresh ID and normalized format tags.
func NewJob(name string, source []byte, from, to string, opts transcode.Options) Job {
	return Job{
		ID:      uuid.NewString(),
		Name:    name,
		Source:  source,
		From:    formats.Normalize(from),
		To:      formats.Normalize(to),
		Options: opts,
	}
}

// OutputName returns the download filename for the converted file:
// the original basename with the target extension.
func (j Job) OutputName() string {
	base := j.Name
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		base = base[:idx]
	}
	if base == "" {
		base = "output"
	}
	return base + "." + j.To
}

// Update is one progress/state notification for a job. Progress is a
// coarse 0-100 estimate, not byte-accurate.
type Update struct {
	JobID    string
	Name     string
	Status   Status
	Progress int
	Message  string // human-readable error when Status is StatusError
}

// Result is the outcome of one job.
type Result struct {
	Job    Job
	Output []byte
	MIME   string
	Name   string // output filename
	Err    error
}
