// Package ready resolves readiness checks against a host whose components
// come up asynchronously.
package ready

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNotReady is returned when a probe never succeeded within the policy.
var ErrNotReady = errors.New("not ready")

// Policy bounds how long a readiness check may poll.
type Policy struct {
	Attempts int
	Interval time.Duration
	Timeout  time.Duration
}

// DefaultPolicy polls every 50ms, at most 100 times, for at most 10s.
var DefaultPolicy = Policy{Attempts: 100, Interval: 50 * time.Millisecond, Timeout: 10 * time.Second}

// Probe reports nil once the awaited component is available.
type Probe func(ctx context.Context) error

// Future is the result of a readiness check running in the background.
// It resolves exactly once.
type Future struct {
	done chan struct{}
	once sync.Once
	err  error
}

// Start runs probe under policy in a new goroutine.
func Start(ctx context.Context, probe Probe, policy Policy) *Future {
	f := &Future{done: make(chan struct{})}
	go func() {
		f.resolve(poll(ctx, probe, policy))
	}()
	return f
}

// Resolved returns a future that has already succeeded.
func Resolved() *Future {
	f := &Future{done: make(chan struct{})}
	f.resolve(nil)
	return f
}

func (f *Future) resolve(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Done is closed once the future resolves.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Err returns the outcome, or nil while the future is pending.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Await blocks until the future resolves or ctx ends.
func (f *Future) Await(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait runs probe under policy and blocks until it resolves.
func Wait(ctx context.Context, probe Probe, policy Policy) error {
	return poll(ctx, probe, policy)
}

func poll(ctx context.Context, probe Probe, policy Policy) error {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, policy.Timeout)
		defer cancel()
	}

	var last error
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		if last = probe(ctx); last == nil {
			return nil
		}
		if attempt == policy.Attempts {
			break
		}

		timer := time.NewTimer(policy.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w after %d attempts: %w", ErrNotReady, attempt, ctx.Err())
		case <-timer.C:
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrNotReady, policy.Attempts, last)
}
