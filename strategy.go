package txroute

import (
	"context"

	sqladapter "github.com/arloliu/txroute/adapter/sql"
	"github.com/arloliu/txroute/policy"
)

// TxFunc is a unit of work executed inside one routed transaction.
//
// It may run more than once when the call is retried; each run receives a
// fresh transaction, possibly on a different endpoint.
type TxFunc func(ctx context.Context, tx sqladapter.Tx) error

// Retrier re-runs an attempt according to a retry policy.
//
// policy.RetryPolicy is the default implementation.
//
// Implementations MUST be safe for concurrent use from multiple goroutines.
type Retrier interface {
	// Do runs attempt until it succeeds or the policy gives up.
	//
	// Parameters:
	//   - ctx: Context for cancellation between attempts
	//   - attempt: One routed execution of the unit of work
	//
	// Returns:
	//   - error: nil on success, the terminal error otherwise
	Do(ctx context.Context, attempt policy.Attempt) error
}

// ReadOnlyClassifier decides the read-only intent of a call from its
// operation key and learns from read-only violations.
//
// AdaptiveClassifier is the default implementation.
type ReadOnlyClassifier interface {
	// IsReadOnly reports whether the call identified by key may run on a
	// replica.
	IsReadOnly(ctx context.Context, key string) bool

	// ObserveFailure records that key attempted a write on a read-only
	// endpoint and returns the error to surface instead of err.
	ObserveFailure(ctx context.Context, key string, err error) error
}

var (
	_ Retrier            = (*policy.RetryPolicy)(nil)
	_ ReadOnlyClassifier = (*AdaptiveClassifier)(nil)
)
