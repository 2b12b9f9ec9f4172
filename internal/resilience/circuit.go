package resilience

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var breakerNopLogger = zerolog.Nop()

// ErrOpenCircuit is returned when the circuit breaker refuses a request.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

// State represents the current breaker state.
type State int

const (
	// Closed accepts all requests and tracks outcomes.
	Closed State = iota
	// Open rejects requests until the cool-off period expires.
	Open
	// HalfOpen lets a single probe through to test recovery.
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// BreakerConfig tunes a Breaker. Zero values fall back to defaults.
type BreakerConfig struct {
	// Target labels metrics and logs, e.g. "catalog".
	Target string
	// MinRequests is the number of outcomes in the window before the ratio is evaluated.
	MinRequests int
	// FailureRatio in (0, 1] opens the breaker once reached. Default 0.5.
	FailureRatio float64
	// OpenFor is the cool-off before a half-open probe. Default 30s.
	OpenFor time.Duration
	// Window is how many recent outcomes are kept. Default 2*MinRequests.
	Window int
	Logger *zerolog.Logger
}

// Breaker is a failure-ratio circuit breaker guarding one downstream
// dependency. It evaluates the ratio over the most recent Window outcomes.
type Breaker struct {
	cfg BreakerConfig

	mu       sync.Mutex
	state    State
	outcomes []bool // ring buffer, true means failure
	next     int
	filled   int
	failures int
	openedAt time.Time
	probing  bool
}

// NewBreaker constructs a closed breaker from cfg.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MinRequests <= 0 {
		cfg.MinRequests = 1
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = 0.5
	}
	if cfg.FailureRatio > 1 {
		cfg.FailureRatio = 1
	}
	if cfg.OpenFor <= 0 {
		cfg.OpenFor = 30 * time.Second
	}
	if cfg.Window < cfg.MinRequests {
		cfg.Window = cfg.MinRequests * 2
	}
	cfg.Target = strings.TrimSpace(cfg.Target)
	if cfg.Target == "" {
		cfg.Target = "default"
	}
	b := &Breaker{cfg: cfg, state: Closed, outcomes: make([]bool, cfg.Window)}
	b.recordStateLocked()
	return b
}

// Target returns the dependency label.
func (b *Breaker) Target() string {
	return b.cfg.Target
}

// Allow reports whether a request is permitted. Once the cool-off has passed
// an open breaker moves to half-open and admits exactly one probe; further
// calls are refused until that probe reports.
func (b *Breaker) Allow(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if time.Since(b.openedAt) < b.cfg.OpenFor {
			return false
		}
		b.changeStateLocked(ctx, HalfOpen)
		b.probing = true
		return true
	case HalfOpen:
		if b.probing {
			return false
		}
		b.probing = true
		return true
	default:
		return true
	}
}

// State returns the current breaker state. An open breaker whose cool-off
// has elapsed reports half-open.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == Open && time.Since(b.openedAt) >= b.cfg.OpenFor {
		return HalfOpen
	}
	return b.state
}

// Report records the outcome of a permitted request.
func (b *Breaker) Report(ctx context.Context, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		return
	case HalfOpen:
		b.probing = false
		if success {
			b.changeStateLocked(ctx, Closed)
		} else {
			b.changeStateLocked(ctx, Open)
		}
		return
	}

	b.pushLocked(!success)
	if b.filled < b.cfg.MinRequests {
		return
	}
	if float64(b.failures)/float64(b.filled) >= b.cfg.FailureRatio {
		b.changeStateLocked(ctx, Open)
	}
}

// Release returns a permit taken by Allow without recording an outcome, for
// requests abandoned by their caller. A half-open breaker may then admit
// another probe.
func (b *Breaker) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == HalfOpen {
		b.probing = false
	}
}

func (b *Breaker) pushLocked(failed bool) {
	if b.filled == len(b.outcomes) {
		if b.outcomes[b.next] {
			b.failures--
		}
	} else {
		b.filled++
	}
	b.outcomes[b.next] = failed
	if failed {
		b.failures++
	}
	b.next = (b.next + 1) % len(b.outcomes)
}

func (b *Breaker) resetWindowLocked() {
	clear(b.outcomes)
	b.next, b.filled, b.failures = 0, 0, 0
}

func (b *Breaker) changeStateLocked(ctx context.Context, next State) {
	prev := b.state
	if prev == next {
		return
	}
	b.state = next
	switch next {
	case Open:
		b.openedAt = time.Now()
	case Closed:
		b.openedAt = time.Time{}
	}
	b.resetWindowLocked()
	b.recordStateLocked()
	b.recordTransition(ctx, prev, next)
}

func (b *Breaker) recordStateLocked() {
	if BreakerState == nil {
		return
	}
	BreakerState.WithLabelValues(b.cfg.Target).Set(stateGaugeValue(b.state))
}

func (b *Breaker) recordTransition(ctx context.Context, from, to State) {
	if BreakerTransitions != nil {
		BreakerTransitions.WithLabelValues(b.cfg.Target, from.String(), to.String()).Inc()
	}
	if to == Open && BreakerOpenedTotal != nil {
		BreakerOpenedTotal.WithLabelValues(b.cfg.Target).Inc()
	}
	logger := b.loggerFor(ctx)
	evt := logger.Info().Str("target", b.cfg.Target).Str("from_state", from.String()).Str("to_state", to.String())
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		evt = evt.Str("trace_id", span.TraceID().String())
	}
	evt.Msg("breaker_transition")
}

func (b *Breaker) loggerFor(ctx context.Context) *zerolog.Logger {
	if ctxLogger := zerolog.Ctx(ctx); ctxLogger != nil && ctxLogger.GetLevel() != zerolog.Disabled {
		return ctxLogger
	}
	if b.cfg.Logger == nil {
		return &breakerNopLogger
	}
	return b.cfg.Logger
}

func stateGaugeValue(state State) float64 {
	switch state {
	case Closed:
		return 0
	case Open:
		return 1
	case HalfOpen:
		return 2
	default:
		return -1
	}
}
