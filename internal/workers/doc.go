// Package workers provides utilities for determining conversion worker pool
// sizes in containerized environments.
//
// Go 1.19+ sets GOMAXPROCS from container CPU limits, while runtime.NumCPU()
// still reports the host CPU count. The helpers here size worker pools from
// GOMAXPROCS so batch conversion respects cgroup limits, with an optional
// CONVERT_WORKERS environment variable override for operators.
package workers
