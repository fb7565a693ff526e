package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonesrussell/seo-auditor/internal/retry"
)

func fastConfig() retry.Config {
	return retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
		IsRetryable:  func(error) bool { return true },
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fastConfig(), func() error {
		calls++
		if calls < 3 {
			return errors.New("i/o timeout")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	cfg := fastConfig()
	cfg.IsRetryable = retry.IsTransient

	permanent := errors.New("404 not found")
	calls := 0
	err := retry.Do(context.Background(), cfg, func() error {
		calls++
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Errorf("Do() error = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1 for a permanent error", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := retry.Do(context.Background(), fastConfig(), func() error {
		calls++
		return errors.New("connection refused")
	})

	if !errors.Is(err, retry.ErrMaxAttemptsExceeded) {
		t.Errorf("Do() error = %v, want ErrMaxAttemptsExceeded", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Do(ctx, fastConfig(), func() error {
		return errors.New("timeout")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}

func TestIsTransient(t *testing.T) {
	if !retry.IsTransient(errors.New("dial tcp: i/o timeout")) {
		t.Error("i/o timeout should be transient")
	}
	if retry.IsTransient(errors.New("invalid URL")) {
		t.Error("invalid URL should not be transient")
	}
	if retry.IsTransient(nil) {
		t.Error("nil error should not be transient")
	}
}
