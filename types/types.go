// Package types provides shared types and errors for the txroute library.
//
// This is a "leaf" package with no imports from other txroute packages,
// allowing it to be imported by any package without causing import cycles.
package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SelectionPolicy decides where the replica scan starts for a read-only call.
type SelectionPolicy int

const (
	// PolicyRandom starts the scan at a uniformly random replica.
	PolicyRandom SelectionPolicy = iota
	// PolicyRoundRobin rotates the start index through a process-wide counter.
	PolicyRoundRobin
	// PolicyThreadRoundRobin rotates the start index within one call chain,
	// starting after the replica used by the previous call of that chain.
	PolicyThreadRoundRobin
)

// String returns the configuration name of the policy.
func (p SelectionPolicy) String() string {
	switch p {
	case PolicyRandom:
		return "random"
	case PolicyRoundRobin:
		return "round_robin"
	case PolicyThreadRoundRobin:
		return "thread_round_robin"
	default:
		return "policy(" + strconv.Itoa(int(p)) + ")"
	}
}

// ParseSelectionPolicy parses a policy name.
//
// Names are case-insensitive and accept both "round_robin" and "ROUND-ROBIN"
// spellings. An empty name yields PolicyRandom.
//
// Parameters:
//   - name: The policy name
//
// Returns:
//   - SelectionPolicy: The parsed policy
//   - error: ErrUnknownPolicy if the name is not recognized
func ParseSelectionPolicy(name string) (SelectionPolicy, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	switch normalized {
	case "", "random":
		return PolicyRandom, nil
	case "round_robin":
		return PolicyRoundRobin, nil
	case "thread_round_robin":
		return PolicyThreadRoundRobin, nil
	default:
		return PolicyRandom, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// ErrorKind is the vendor-neutral classification of a data-access error.
type ErrorKind int

const (
	// KindOpaque is any error the router does not understand. Never retried,
	// never causes backoff.
	KindOpaque ErrorKind = iota

	// KindTransientConflict covers serialization failures and deadlocks.
	// Retryable, no backoff effect.
	KindTransientConflict

	// KindReplicaUnavailable means the replica cannot currently satisfy the
	// required replication mode. Retryable and backs off the replica used.
	KindReplicaUnavailable

	// KindReadOnlyViolation means a write was attempted inside a read-only
	// transaction or on a read-only server. Not retryable by itself.
	KindReadOnlyViolation

	// KindWritableRequired is raised by the adaptive classifier after it has
	// learned that an operation writes. Retryable, the next attempt is routed
	// to the write endpoint.
	KindWritableRequired
)

// String returns the label used in logs and metrics.
func (k ErrorKind) String() string {
	switch k {
	case KindOpaque:
		return "opaque"
	case KindTransientConflict:
		return "transient_conflict"
	case KindReplicaUnavailable:
		return "replica_unavailable"
	case KindReadOnlyViolation:
		return "read_only_violation"
	case KindWritableRequired:
		return "writable_required"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Retryable reports whether the retry policy may re-run a call failing with
// this kind.
func (k ErrorKind) Retryable() bool {
	return k == KindTransientConflict || k == KindReplicaUnavailable || k == KindWritableRequired
}

// ErrorClassifier maps errors to kinds.
//
// Implementations MUST be safe for concurrent use and must not block.
type ErrorClassifier func(err error) ErrorKind

// RetryState is a state of the retry state machine.
type RetryState int

const (
	// RetryAttempting means an attempt is in flight.
	RetryAttempting RetryState = iota
	// RetrySucceeded is terminal: the attempt returned a result.
	RetrySucceeded
	// RetryScheduled means a retryable error occurred and budget remains.
	RetryScheduled
	// RetryExhausted is terminal: a retryable error occurred with no budget left.
	RetryExhausted
	// RetryFailed is terminal: a non-retryable error occurred.
	RetryFailed
	// RetryCanceled is terminal: the caller cancelled while waiting to retry.
	RetryCanceled
)

// String returns the label used in logs and metrics.
func (s RetryState) String() string {
	switch s {
	case RetryAttempting:
		return "attempting"
	case RetrySucceeded:
		return "succeeded"
	case RetryScheduled:
		return "retry_scheduled"
	case RetryExhausted:
		return "exhausted"
	case RetryFailed:
		return "failed"
	case RetryCanceled:
		return "canceled"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// Sentinel errors for common failure scenarios.
var (
	// ErrNotConfigured indicates the router was used before Configure.
	// It is fatal and never retried.
	ErrNotConfigured = errors.New("txroute: router is not configured")

	// ErrAlreadyConfigured indicates Configure was called more than once.
	ErrAlreadyConfigured = errors.New("txroute: router is already configured")

	// ErrNilEndpoint indicates an endpoint without a connection pool.
	ErrNilEndpoint = errors.New("txroute: endpoint database cannot be nil")

	// ErrNilRouter indicates a client was built without a router.
	ErrNilRouter = errors.New("txroute: router cannot be nil")

	// ErrClientClosed indicates an operation was attempted on a closed client.
	ErrClientClosed = errors.New("txroute: client is closed")

	// ErrUnknownPolicy indicates an unrecognized selection policy name.
	ErrUnknownPolicy = errors.New("txroute: unknown selection policy")

	// ErrRetryExhausted is matched by every ExhaustedError.
	ErrRetryExhausted = errors.New("txroute: routing exhausted")

	// ErrRetryCanceled indicates the caller cancelled between attempts.
	ErrRetryCanceled = errors.New("txroute: retry canceled")

	// ErrRetryAsWritable is matched by every WritableRequiredError.
	// Future invocations of the operation are routed to the write endpoint.
	ErrRetryAsWritable = errors.New("txroute: operation must be retried on a writable endpoint")
)

// ExhaustedError is returned when every attempt of a call failed with a
// retryable error.
type ExhaustedError struct {
	// Attempts is the number of attempts made.
	Attempts int

	// Kind is the classification of the last error.
	Kind ErrorKind

	// Err is the last underlying error.
	Err error
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return "txroute: routing exhausted after " + strconv.Itoa(e.Attempts) +
		" attempts (" + e.Kind.String() + "): " + e.Err.Error()
}

// Unwrap returns the sentinel and the last underlying error for errors.Is/As.
func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrRetryExhausted, e.Err}
}

// WritableRequiredError is raised when an operation assumed read-only turned
// out to write.
type WritableRequiredError struct {
	// Key identifies the operation.
	Key string

	// Err is the read-only violation reported by the database.
	Err error
}

// Error implements the error interface.
func (e *WritableRequiredError) Error() string {
	return "txroute: operation " + e.Key + " cannot run on a read-only endpoint; " +
		"future invocations will be routed to a writable endpoint: " + e.Err.Error()
}

// Unwrap returns the sentinel and the database error for errors.Is/As.
func (e *WritableRequiredError) Unwrap() []error {
	return []error{ErrRetryAsWritable, e.Err}
}
