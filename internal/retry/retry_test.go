package retry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	policy := Policy{MaxAttempts: 3, Delay: time.Millisecond}

	err := policy.Do(context.Background(), "test op", func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	policy := Policy{MaxAttempts: 3, Delay: time.Millisecond}

	err := policy.Do(context.Background(), "test op", func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	policy := Policy{MaxAttempts: 2, Delay: time.Millisecond}
	boom := errors.New("network down")

	err := policy.Do(context.Background(), "fetch profile", func() error {
		calls++
		return boom
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want exactly 2", calls)
	}
	if !errors.Is(err, boom) {
		t.Errorf("err should wrap last failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "after 2 attempts") {
		t.Errorf("err = %v, want attempt count in message", err)
	}
}

func TestDo_NonRetryableError(t *testing.T) {
	calls := 0
	fatal := errors.New("bad credentials")
	policy := Policy{
		MaxAttempts: 3,
		Delay:       time.Millisecond,
		Retryable:   func(err error) bool { return !errors.Is(err, fatal) },
	}

	err := policy.Do(context.Background(), "test op", func() error {
		calls++
		return fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("Do() error = %v, want %v", err, fatal)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on non-retryable)", calls)
	}
}

func TestDo_ContextCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := Policy{MaxAttempts: 5, Delay: time.Minute}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := policy.Do(ctx, "test op", func() error {
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	policy := Policy{}

	_ = policy.Do(context.Background(), "test op", func() error {
		calls++
		return errors.New("fail")
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
