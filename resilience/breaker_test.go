package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kbukum/userservice/clock"
)

func newTestBreaker(threshold int) (*CircuitBreaker, *clock.Mock) {
	mock := clock.NewMock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	cb := NewCircuitBreaker(BreakerConfig{
		Name:             "test",
		FailureThreshold: threshold,
		OpenTimeout:      10 * time.Second,
		Clock:            mock,
	})
	return cb, mock
}

func failN(cb *CircuitBreaker, n int) {
	for range n {
		_ = cb.Execute(func() error { return errTransient })
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3)

	failN(cb, 2)
	if cb.State() != StateClosed {
		t.Fatalf("state = %v, want closed", cb.State())
	}
	failN(cb, 1)
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrOpen) {
		t.Errorf("Execute() error = %v, want ErrOpen", err)
	}
	if called {
		t.Error("fn called through an open breaker")
	}
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _ := newTestBreaker(3)

	failN(cb, 2)
	_ = cb.Execute(func() error { return nil })
	failN(cb, 2)
	if cb.State() != StateClosed {
		t.Errorf("state = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb, mock := newTestBreaker(1)
	failN(cb, 1)

	mock.Advance(10 * time.Second)
	if cb.State() != StateHalfOpen {
		t.Fatalf("state = %v, want half-open", cb.State())
	}

	if err := cb.Allow(); err != nil {
		t.Fatalf("probe Allow() error = %v", err)
	}
	if err := cb.Allow(); !errors.Is(err, ErrOpen) {
		t.Errorf("second Allow() while probing = %v, want ErrOpen", err)
	}
	cb.Record(nil)

	if cb.State() != StateClosed {
		t.Errorf("state = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, mock := newTestBreaker(1)
	failN(cb, 1)
	mock.Advance(10 * time.Second)

	failN(cb, 1)
	if cb.State() != StateOpen {
		t.Fatalf("state = %v, want open", cb.State())
	}
	mock.Advance(5 * time.Second)
	if err := cb.Allow(); !errors.Is(err, ErrOpen) {
		t.Errorf("Allow() = %v, want ErrOpen before timeout", err)
	}
}

func TestCircuitBreaker_IgnoresCancellation(t *testing.T) {
	cb, _ := newTestBreaker(1)
	_ = cb.Execute(func() error { return context.Canceled })
	_ = cb.Execute(func() error { return context.DeadlineExceeded })
	if cb.State() != StateClosed {
		t.Errorf("state = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	mock := clock.NewMock(time.Unix(0, 0))
	var changes []string
	cb := NewCircuitBreaker(BreakerConfig{
		Name:             "redis",
		FailureThreshold: 1,
		OpenTimeout:      time.Second,
		Clock:            mock,
		OnStateChange: func(name string, from, to State) {
			changes = append(changes, name+":"+from.String()+"->"+to.String())
		},
	})

	failN(cb, 1)
	mock.Advance(time.Second)
	_ = cb.Execute(func() error { return nil })

	want := []string{"redis:closed->open", "redis:open->half-open", "redis:half-open->closed"}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("changes[%d] = %q, want %q", i, changes[i], want[i])
		}
	}
}

func TestDefaultBreakerConfig(t *testing.T) {
	cfg := DefaultBreakerConfig("redis")
	if cfg.Name != "redis" || cfg.FailureThreshold != 5 || cfg.OpenTimeout != 30*time.Second {
		t.Errorf("DefaultBreakerConfig() = %+v", cfg)
	}
}
