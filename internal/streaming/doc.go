/*
Package streaming provides timeout-protected streaming for HTTP responses.

Slow or disconnected clients can hold server resources indefinitely while a
converted payload is being written back. The streaming package wraps
http.ResponseWriter with per-write timeouts, idle detection and chunked
writes so stalled downloads are detected and terminated instead of pinning
a worker.

Basic usage:

	func (h *Handlers) download(w http.ResponseWriter, r *http.Request, payload io.Reader) {
		config := streaming.DefaultTimeoutWriterConfig()
		err := streaming.StreamWithTimeout(r.Context(), w, payload, config)
		if err != nil && !errors.Is(err, streaming.ErrClientGone) {
			log.Printf("Streaming error: %v", err)
		}
	}

Sentinel errors distinguish the failure modes:

  - ErrWriteTimeout: a single write exceeded WriteTimeout (client too slow)
  - ErrClientGone: the client disconnected (request context canceled)
  - ErrStreamCanceled: the stream was closed programmatically

TimeoutWriter is safe for concurrent use; typical usage is a single
io.Copy. Chunked writes flush after each chunk so downloads start promptly
even for multi-megabyte conversions.
*/
package streaming
