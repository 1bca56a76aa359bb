package policy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/arloliu/txroute/internal/logging"
	"github.com/arloliu/txroute/internal/metrics"
	"github.com/arloliu/txroute/pgerr"
	"github.com/arloliu/txroute/types"
)

// DefaultMaxAttempts is the default retry bound.
const DefaultMaxAttempts = 3

// Attempt is one routed execution of a unit of work.
//
// Every invocation must establish its own call state so routing is
// re-evaluated, and must release its connection before returning.
type Attempt func(ctx context.Context) error

// RetryPolicy re-runs a call that failed with a retryable error kind.
//
// Transitions:
//
//	Attempting -> Succeeded        the attempt returned nil
//	Attempting -> RetryScheduled   retryable error, budget remains
//	RetryScheduled -> Attempting   the wait elapsed
//	Attempting -> Exhausted        retryable error, budget spent
//	Attempting -> Failed           non-retryable error
//	RetryScheduled -> Canceled     the context was cancelled during the wait
//
// RetryPolicy holds no per-call state and is safe for concurrent use.
type RetryPolicy struct {
	maxAttempts int
	newBackOff  func() backoff.BackOff
	classify    types.ErrorClassifier
	observer    func(attempt int, state types.RetryState, err error)
	logger      types.Logger
	metrics     types.MetricsCollector
}

// RetryOption configures a RetryPolicy.
type RetryOption func(*RetryPolicy)

// WithMaxAttempts sets the retry bound N: at most N attempts are made.
//
// Values below 1 are ignored.
//
// Parameters:
//   - n: Maximum number of attempts
//
// Returns:
//   - RetryOption: Configuration option
func WithMaxAttempts(n int) RetryOption {
	return func(p *RetryPolicy) {
		if n >= 1 {
			p.maxAttempts = n
		}
	}
}

// WithBackOff sets the factory of the wait schedule between attempts.
//
// A new schedule is created for every call. Use backoff.ZeroBackOff to retry
// immediately.
//
// Parameters:
//   - factory: Function returning a fresh backoff.BackOff
//
// Returns:
//   - RetryOption: Configuration option
func WithBackOff(factory func() backoff.BackOff) RetryOption {
	return func(p *RetryPolicy) {
		p.newBackOff = factory
	}
}

// WithClassifier sets the error classifier. Default: pgerr.Classify.
func WithClassifier(classify types.ErrorClassifier) RetryOption {
	return func(p *RetryPolicy) {
		p.classify = classify
	}
}

// WithObserver registers a callback invoked on every state transition.
//
// The callback runs synchronously on the calling goroutine.
func WithObserver(fn func(attempt int, state types.RetryState, err error)) RetryOption {
	return func(p *RetryPolicy) {
		p.observer = fn
	}
}

// WithRetryLogger sets the logger of the policy.
func WithRetryLogger(logger types.Logger) RetryOption {
	return func(p *RetryPolicy) {
		p.logger = logger
	}
}

// WithRetryMetrics sets the metrics collector of the policy.
func WithRetryMetrics(collector types.MetricsCollector) RetryOption {
	return func(p *RetryPolicy) {
		p.metrics = collector
	}
}

// DefaultBackOff returns the default wait schedule: exponential from 10ms
// up to 200ms with jitter and no elapsed-time limit.
func DefaultBackOff() backoff.BackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     10 * time.Millisecond,
		RandomizationFactor: 0.5,
		Multiplier:          2,
		MaxInterval:         200 * time.Millisecond,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
}

// NewRetryPolicy creates a RetryPolicy.
//
// Defaults: 3 attempts, DefaultBackOff, pgerr.Classify.
//
// Parameters:
//   - opts: Optional configuration options
//
// Returns:
//   - *RetryPolicy: A new retry policy
func NewRetryPolicy(opts ...RetryOption) *RetryPolicy {
	p := &RetryPolicy{
		maxAttempts: DefaultMaxAttempts,
		newBackOff:  DefaultBackOff,
		classify:    pgerr.Classify,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.classify == nil {
		p.classify = pgerr.Classify
	}
	if p.newBackOff == nil {
		p.newBackOff = DefaultBackOff
	}
	p.logger = logging.OrNop(p.logger)
	p.metrics = metrics.OrNop(p.metrics)

	return p
}

// MaxAttempts returns the retry bound.
func (p *RetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}

// Do runs attempt until it succeeds, fails with a non-retryable error, or
// the retry bound is reached.
//
// Parameters:
//   - ctx: Cancellation is honored during the wait between attempts
//   - attempt: The routed unit of work
//
// Returns:
//   - error: nil on success; the unchanged error for non-retryable kinds;
//     *types.ExhaustedError when the budget is spent; an error matching
//     types.ErrRetryCanceled and the context error on cancellation
func (p *RetryPolicy) Do(ctx context.Context, attempt Attempt) error {
	var (
		attempts int
		lastErr  error
		lastKind types.ErrorKind
		terminal bool
	)

	op := func() error {
		attempts++
		p.observe(attempts, types.RetryAttempting, nil)

		err := attempt(ctx)
		if err == nil {
			terminal = true
			p.observe(attempts, types.RetrySucceeded, nil)

			return nil
		}

		lastErr, lastKind = err, p.classify(err)
		if !lastKind.Retryable() {
			terminal = true
			p.observe(attempts, types.RetryFailed, err)

			return backoff.Permanent(err)
		}

		if attempts >= p.maxAttempts {
			terminal = true

			return backoff.Permanent(p.exhausted(attempts, lastKind, err))
		}

		return err
	}

	notify := func(err error, next time.Duration) {
		p.observe(attempts, types.RetryScheduled, err)
		p.metrics.IncRetryTotal(lastKind)
		p.logger.Debug("retrying transaction",
			"attempt", attempts,
			"maxAttempts", p.maxAttempts,
			"kind", lastKind.String(),
			"delay", next.String(),
			"error", err.Error(),
		)
	}

	err := backoff.RetryNotify(op, backoff.WithContext(p.newBackOff(), ctx), notify)
	if err == nil || terminal {
		return err
	}

	// The wait was interrupted or the schedule stopped before the budget
	// was spent.
	if ctxErr := ctx.Err(); ctxErr != nil {
		p.observe(attempts, types.RetryCanceled, ctxErr)
		p.metrics.IncRetryCanceled()
		p.logger.Info("retry canceled",
			"attempt", attempts,
			"lastError", errorString(lastErr),
		)

		return fmt.Errorf("%w after %d attempts: %w", types.ErrRetryCanceled, attempts, ctxErr)
	}

	if errors.Is(err, lastErr) {
		return p.exhausted(attempts, lastKind, lastErr)
	}

	return err
}

func (p *RetryPolicy) exhausted(attempts int, kind types.ErrorKind, err error) error {
	p.observe(attempts, types.RetryExhausted, err)
	p.metrics.IncRetryExhausted(kind)
	p.logger.Warn("retry budget exhausted",
		"attempts", attempts,
		"kind", kind.String(),
		"error", err.Error(),
	)

	return &types.ExhaustedError{Attempts: attempts, Kind: kind, Err: err}
}

func (p *RetryPolicy) observe(attempt int, state types.RetryState, err error) {
	if p.observer != nil {
		p.observer(attempt, state, err)
	}
}

func errorString(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
