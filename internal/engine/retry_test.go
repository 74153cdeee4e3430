package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetryConfig() retryConfig {
	return retryConfig{
		maxRetries:     3,
		initialBackoff: time.Millisecond,
		maxBackoff:     4 * time.Millisecond,
	}
}

func TestRetryTransientSucceedsFirstTry(t *testing.T) {
	attempts := 0
	err := retryTransient(context.Background(), fastRetryConfig(), "op", func() error {
		attempts++
		return nil
	}, func(error) bool { return true })

	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", attempts)
	}
}

func TestRetryTransientRecovers(t *testing.T) {
	transient := errors.New("flaky")
	attempts := 0
	err := retryTransient(context.Background(), fastRetryConfig(), "op", func() error {
		attempts++
		if attempts < 3 {
			return transient
		}
		return nil
	}, func(err error) bool { return errors.Is(err, transient) })

	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryTransientPermanentErrorStopsImmediately(t *testing.T) {
	permanent := errors.New("not found")
	attempts := 0
	err := retryTransient(context.Background(), fastRetryConfig(), "op", func() error {
		attempts++
		return permanent
	}, func(error) bool { return false })

	if !errors.Is(err, permanent) {
		t.Fatalf("Expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt for permanent error, got %d", attempts)
	}
}

func TestRetryTransientExhaustsBudget(t *testing.T) {
	transient := errors.New("flaky")
	attempts := 0
	err := retryTransient(context.Background(), fastRetryConfig(), "op", func() error {
		attempts++
		return transient
	}, func(err error) bool { return errors.Is(err, transient) })

	if !errors.Is(err, transient) {
		t.Fatalf("Expected transient error after exhaustion, got %v", err)
	}
	if attempts != 4 { // initial try + 3 retries
		t.Errorf("Expected 4 attempts, got %d", attempts)
	}
}

func TestRetryTransientCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	transient := errors.New("flaky")

	attempts := 0
	err := retryTransient(ctx, fastRetryConfig(), "op", func() error {
		attempts++
		cancel()
		return transient
	}, func(err error) bool { return errors.Is(err, transient) })

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt before cancellation, got %d", attempts)
	}
}
