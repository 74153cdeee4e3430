package streaming

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestStreamWithTimeoutDeliversPayload(t *testing.T) {
	payload := strings.Repeat("converted-bytes-", 8192) // > one chunk
	rec := httptest.NewRecorder()

	config := DefaultTimeoutWriterConfig()
	err := StreamWithTimeout(context.Background(), rec, strings.NewReader(payload), config)
	if err != nil {
		t.Fatalf("StreamWithTimeout failed: %v", err)
	}
	if rec.Body.String() != payload {
		t.Errorf("Expected %d bytes, got %d", len(payload), rec.Body.Len())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected nosniff header")
	}
}

func TestStreamClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	err := StreamWithTimeout(ctx, rec, bytes.NewReader(make([]byte, 1<<20)), DefaultTimeoutWriterConfig())
	if !errors.Is(err, ErrClientGone) {
		t.Errorf("Expected ErrClientGone, got %v", err)
	}
}

func TestWriteAfterClose(t *testing.T) {
	rec := httptest.NewRecorder()
	tw := NewTimeoutWriter(context.Background(), rec, DefaultTimeoutWriterConfig())

	if err := tw.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := tw.Write([]byte("late")); !errors.Is(err, ErrStreamCanceled) {
		t.Errorf("Expected ErrStreamCanceled, got %v", err)
	}
	// Close is idempotent.
	if err := tw.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
}

func TestChunkedWritesRespectChunkSize(t *testing.T) {
	rec := httptest.NewRecorder()
	config := DefaultTimeoutWriterConfig()
	config.ChunkSize = 16

	tw := NewTimeoutWriter(context.Background(), rec, config)
	defer tw.Close()

	payload := bytes.Repeat([]byte("x"), 100)
	n, err := tw.Write(payload)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != len(payload) {
		t.Errorf("Expected %d bytes written, got %d", len(payload), n)
	}
	if rec.Body.Len() != len(payload) {
		t.Errorf("Expected full payload delivered, got %d bytes", rec.Body.Len())
	}
}

func TestStats(t *testing.T) {
	rec := httptest.NewRecorder()
	tw := NewTimeoutWriter(context.Background(), rec, DefaultTimeoutWriterConfig())
	defer tw.Close()

	if _, err := tw.Write([]byte("hello")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	bytesWritten, duration := tw.Stats()
	if bytesWritten != 5 {
		t.Errorf("Expected 5 bytes written, got %d", bytesWritten)
	}
	if duration <= 0 {
		t.Errorf("Expected positive duration, got %v", duration)
	}
}

func TestOnProgressCallback(t *testing.T) {
	rec := httptest.NewRecorder()
	config := DefaultTimeoutWriterConfig()

	var called bool
	config.OnProgress = func(bytesWritten int64, duration time.Duration) {
		called = true
	}

	tw := NewTimeoutWriter(context.Background(), rec, config)
	defer tw.Close()

	// Crossing a MiB boundary triggers the callback.
	if _, err := tw.Write(make([]byte, 2<<20)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !called {
		t.Error("Expected progress callback to fire")
	}
}
