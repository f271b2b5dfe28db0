package ai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), DefaultRetryConfig, func(ctx context.Context) error {
		calls++
		if calls < 2 {
			return NewRecoverableError(errors.New("timeout"), "")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryDoesNotRetryFatal(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), DefaultRetryConfig, func(ctx context.Context) error {
		calls++
		return NewFatalError(errors.New("bad key"), "invalid API key")
	})
	if !IsFatal(err) {
		t.Errorf("error should be fatal, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	cfg := RetryConfig{
		MaxRetries:    2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}

	calls := 0
	err := Retry(context.Background(), cfg, func(ctx context.Context) error {
		calls++
		return NewRecoverableError(errors.New("unavailable"), "")
	})
	if !IsRecoverable(err) {
		t.Errorf("error should stay recoverable, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (initial + 2 retries)", calls)
	}
}

func TestErrorClassification(t *testing.T) {
	rec := NewRecoverableError(errors.New("rate limited"), "provider rate limited")
	if !IsRecoverable(rec) || IsFatal(rec) {
		t.Error("recoverable error misclassified")
	}
	if rec.Error() != "provider rate limited" {
		t.Errorf("Error() = %q", rec.Error())
	}

	fatal := NewFatalError(errors.New("unsupported"), "")
	if !IsFatal(fatal) || IsRecoverable(fatal) {
		t.Error("fatal error misclassified")
	}
	if fatal.Error() != "unsupported" {
		t.Errorf("Error() = %q", fatal.Error())
	}
}
