// Package metrics provides Prometheus instrumentation for the media converter.
//
// All metrics are prefixed with "media_convert_" to avoid naming collisions
// with other applications.
//
// # Metric Categories
//
// ## HTTP Metrics
//
// Track HTTP request performance and error rates:
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Conversion Metrics
//
// Track conversion jobs across both pipelines:
//   - ConversionsTotal: Counter by engine kind, source/target format, and status
//   - ConversionDuration: Histogram of per-job duration by engine kind
//   - ConversionInputBytes / ConversionOutputBytes: Histograms of payload sizes
//
// ## Engine Metrics
//
// Monitor the transcoding engine singleton:
//   - EngineLoadsTotal: Counter of engine load operations (expected to stay at 1
//     per process unless the session is disposed)
//   - EngineLoadFailures: Counter of failed load attempts
//   - EngineRunsTotal: Counter of engine invocations by status
//   - StagedFilesLeaked: Counter of virtual files left behind after cleanup
package metrics
