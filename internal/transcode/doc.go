// Package transcode manages the lifecycle of the audio/video transcoding
// engine and executes per-format conversion pipelines against it.
//
// A Session wraps one loaded engine instance. The engine is loaded lazily on
// the first conversion and reused by every subsequent job until Dispose.
// Each target format maps to a fixed command template; the animated GIF
// target is the one multi-step pipeline, requiring a palette-generation pass
// before the final encode.
//
// Input and output bytes travel through named staging files in the session's
// private staging directory. Staged files use per-job unique names and are
// removed best-effort once the job finishes, success or failure.
package transcode
