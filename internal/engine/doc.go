// Package engine abstracts the external FFmpeg-compatible codec toolkit
// that performs actual bitstream conversion.
//
// Two implementations are provided:
//   - ExecEngine runs a native ffmpeg binary found on the host.
//   - WasmEngine runs an FFmpeg build compiled to WASI under the wazero
//     runtime, fetching the .wasm binary on first load.
//
// Both are load-once: the first Load pays the full startup cost (binary
// probe or network fetch plus compilation) and subsequent Load calls are
// no-ops until Close.
package engine
