package txroute

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	"github.com/arloliu/txroute/internal/logging"
	"github.com/arloliu/txroute/internal/metrics"
	"github.com/arloliu/txroute/policy"
	"github.com/arloliu/txroute/types"
)

// Client runs transactions on the endpoint chosen by a Router.
//
// Every call is wrapped in a fixed order:
//
//	Retrier -> [ReadOnlyClassifier] -> routing -> transaction
//
// The retrier re-runs the whole routed attempt, so each retry selects its
// endpoint again and a replica backed off by the failed attempt is skipped.
// The routing step builds a fresh CallContext, selects an endpoint, runs the
// transaction, and backs off the replica when the error is classified as
// replica unavailable. It never swallows or rewrites errors.
//
// Client is safe for concurrent use.
type Client struct {
	router *Router
	config *ClientConfig
	closed atomic.Bool
}

// NewClient creates a Client over a configured or not-yet-configured
// Router.
//
// Parameters:
//   - router: The router shared by every call
//   - opts: Optional configuration options
//
// Returns:
//   - *Client: A new client
//   - error: ErrNilRouter if router is nil
func NewClient(router *Router, opts ...Option) (*Client, error) {
	if router == nil {
		return nil, types.ErrNilRouter
	}

	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	if config.Classifier == nil {
		config.Classifier = DefaultConfig().Classifier
	}
	config.Metrics = metrics.OrNop(config.Metrics)
	config.Logger = logging.OrNop(config.Logger)

	if config.Retry == nil {
		config.Retry = policy.NewRetryPolicy(
			policy.WithClassifier(config.Classifier),
			policy.WithRetryLogger(config.Logger),
			policy.WithRetryMetrics(config.Metrics),
		)
	}
	if config.Adaptive == nil {
		config.Adaptive = NewAdaptiveClassifier(nil,
			WithAdaptiveLogger(config.Logger),
			WithAdaptiveMetrics(config.Metrics),
		)
	}

	return &Client{router: router, config: config}, nil
}

// Router returns the router of the client.
func (c *Client) Router() *Router {
	return c.router
}

// ReadOnly runs fn in a read-only transaction, on a replica when one is
// available.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - fn: The unit of work
//
// Returns:
//   - error: See Run
func (c *Client) ReadOnly(ctx context.Context, fn TxFunc) error {
	return c.Run(ctx, true, fn)
}

// ReadWrite runs fn in a read-write transaction on the write endpoint.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - fn: The unit of work
//
// Returns:
//   - error: See Run
func (c *Client) ReadWrite(ctx context.Context, fn TxFunc) error {
	return c.Run(ctx, false, fn)
}

// Run runs fn in a transaction routed by the declared read-only intent.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - readOnly: Whether fn performs no writes
//   - fn: The unit of work
//
// Returns:
//   - error: nil on success; ErrClientClosed after Close; ErrNotConfigured
//     before the router is configured; otherwise the error of the retry
//     policy (the unchanged error of fn, *types.ExhaustedError, or an error
//     matching types.ErrRetryCanceled)
func (c *Client) Run(ctx context.Context, readOnly bool, fn TxFunc) error {
	if c.closed.Load() {
		return types.ErrClientClosed
	}

	return c.config.Retry.Do(ctx, func(ctx context.Context) error {
		return c.route(ctx, readOnly, fn)
	})
}

// RunAdaptive runs fn with a read-only intent learned per operation key.
//
// The first calls of a key are routed as read-only. When such a call fails
// with a read-only violation the key is learned as not read-only, the
// failure is reported as *types.WritableRequiredError and the retry policy
// re-runs fn on the write endpoint.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - key: The operation key; empty derives it from fn with OperationKey
//   - fn: The unit of work
//
// Returns:
//   - error: See Run
func (c *Client) RunAdaptive(ctx context.Context, key string, fn TxFunc) error {
	if c.closed.Load() {
		return types.ErrClientClosed
	}

	if key == "" {
		key = OperationKey(fn)
	}
	ctx = WithLocalCache(ctx)

	return c.config.Retry.Do(ctx, func(ctx context.Context) error {
		readOnly := c.config.Adaptive.IsReadOnly(ctx, key)

		err := c.route(ctx, readOnly, fn)
		if err != nil && readOnly && c.config.Classifier(err) == types.KindReadOnlyViolation {
			return c.config.Adaptive.ObserveFailure(ctx, key, err)
		}

		return err
	})
}

// route is one routed attempt.
func (c *Client) route(ctx context.Context, readOnly bool, fn TxFunc) error {
	cc := NewCallContext(ctx, readOnly)

	endpoint, err := c.router.Select(cc)
	if err != nil {
		return err
	}

	start := time.Now()
	err = c.execute(withCallContext(ctx, cc), endpoint, readOnly, fn)
	elapsed := time.Since(start).Seconds()

	c.config.Metrics.IncTxTotal(endpoint.Name)
	c.config.Metrics.ObserveTxDuration(endpoint.Name, elapsed)
	if err == nil {
		return nil
	}

	c.config.Metrics.IncTxError(endpoint.Name)
	if c.config.Classifier(err) == types.KindReplicaUnavailable {
		c.router.RecordFailure(cc)
	}

	c.config.Logger.Debug("transaction failed",
		"call", cc.ID(),
		"endpoint", endpoint.Name,
		"readOnly", readOnly,
		"error", err.Error(),
	)

	return err
}

// execute runs fn in one transaction on endpoint. The transaction is rolled
// back when fn fails or panics, so its connection is released before the
// caller retries.
func (c *Client) execute(ctx context.Context, endpoint Endpoint, readOnly bool, fn TxFunc) error {
	tx, err := endpoint.DB.BeginTx(ctx, &sql.TxOptions{
		Isolation: c.config.Isolation,
		ReadOnly:  readOnly,
	})
	if err != nil {
		return err
	}

	done := false
	defer func() {
		if !done {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	done = true
	if err := tx.Commit(); err != nil {
		// a failed commit may leave the transaction open
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			c.config.Logger.Warn("rollback after failed commit",
				"endpoint", endpoint.Name,
				"error", rbErr.Error(),
			)
		}

		return err
	}

	return nil
}

// Close closes the connection pools of every endpoint.
//
// After Close is called, the client cannot be reused.
//
// Returns:
//   - error: The combined close errors, or nil
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}

	return c.router.Close()
}

// IsClosed reports whether Close has been called.
func (c *Client) IsClosed() bool {
	return c.closed.Load()
}
