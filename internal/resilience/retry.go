package resilience

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

const maxBackoff = 5 * time.Second

// ErrDependencyTimeout marks a deadline that bounds the guarded dependency
// itself. Callers attach it with context.WithTimeoutCause; an attempt cut
// short by that deadline counts against the breaker, while any other
// cancellation of the caller's context does not.
var ErrDependencyTimeout = errors.New("resilience: dependency timed out")

// Retrier runs an operation with retry, per-attempt timeout and circuit-breaker logic.
type Retrier struct {
	Breaker     *Breaker
	BaseBackoff time.Duration
	MaxAttempts int
	Jitter      float64
	Timeout     time.Duration
	// Retryable decides whether a failed attempt is worth repeating. Nil retries every error.
	Retryable func(error) bool
}

// Do executes fn until it succeeds, the attempts are exhausted, or ctx is done.
// When the breaker is open ErrOpenCircuit is returned without calling fn.
func (r Retrier) Do(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return errors.New("resilience: operation not provided")
	}
	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	baseBackoff := r.BaseBackoff
	if baseBackoff <= 0 {
		baseBackoff = 100 * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if r.Breaker != nil && !r.Breaker.Allow(ctx) {
			if lastErr == nil {
				lastErr = ErrOpenCircuit
			}
			break
		}
		err := r.doOnce(ctx, fn)
		if err != nil && ctx.Err() != nil {
			if errors.Is(context.Cause(ctx), ErrDependencyTimeout) {
				r.report(ctx, false)
			} else if r.Breaker != nil {
				r.Breaker.Release()
			}
			return ctx.Err()
		}
		r.report(ctx, err == nil)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt == maxAttempts || (r.Retryable != nil && !r.Retryable(err)) {
			break
		}
		timer := time.NewTimer(Backoff(baseBackoff, attempt, r.Jitter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

func (r Retrier) report(ctx context.Context, success bool) {
	if r.Breaker != nil {
		r.Breaker.Report(ctx, success)
	}
}

func (r Retrier) doOnce(ctx context.Context, fn func(context.Context) error) error {
	var callCtx context.Context
	var cancel context.CancelFunc
	if r.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, r.Timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()
	return fn(callCtx)
}

// Backoff returns the exponential delay before retry attempt+1, capped at
// five seconds. jitterPct spreads it by up to that fraction either way.
func Backoff(base time.Duration, attempt int, jitterPct float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	d := base
	for i := 1; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	d = min(d, maxBackoff)
	if jitterPct <= 0 {
		return d
	}
	delta := (rand.Float64()*2 - 1) * float64(d) * jitterPct
	return d + time.Duration(delta)
}
