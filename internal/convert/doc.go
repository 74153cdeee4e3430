// Package convert dispatches conversion jobs to the engine declared for
// their format pair and streams per-file progress back to the caller.
//
// Each job walks a fixed state machine: queued, loading, processing, then
// completed or error. Terminal states are final and every terminal
// transition passes through loading and processing, even when a job is
// rejected before any engine work. A batch is processed on a bounded
// worker pool; an error in one file never aborts the rest of the batch,
// with one exception: a transcoding engine load failure fails every
// remaining transcode job in the same batch. That latch is batch-scoped,
// so a re-initiated conversion attempts a fresh engine load.
package convert
