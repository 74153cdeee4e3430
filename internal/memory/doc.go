// Package memory configures the Go runtime memory limit from container
// metadata and provides a heap-pressure monitor that gates conversion
// intake. Decoded frames and wasm linear memory dominate the footprint, so
// GOMEMLIMIT is set to a fraction of the container limit rather than all
// of it.
package memory
