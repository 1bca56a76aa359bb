// Package pgerr maps PostgreSQL errors to txroute error kinds.
//
// This is the only place where vendor SQLSTATE codes are inspected. Layers
// above it deal only in types.ErrorKind.
package pgerr

import (
	"errors"

	"github.com/lib/pq"

	"github.com/arloliu/txroute/types"
)

// SQLSTATE codes that carry routing meaning.
const (
	// CodeSerializationFailure is raised when a serializable transaction
	// conflicts with a concurrent one.
	CodeSerializationFailure = "40001"

	// CodeDeadlockDetected is raised when the transaction was chosen as a
	// deadlock victim.
	CodeDeadlockDetected = "40P01"

	// CodeSynchronousReplayUnavailable is raised by a standby that cannot
	// currently guarantee synchronous replay for the transaction.
	CodeSynchronousReplayUnavailable = "40P02"

	// CodeReadOnlySQLTransaction is raised when a write is attempted in a
	// read-only transaction or on a hot standby.
	CodeReadOnlySQLTransaction = "25006"
)

// sqlStater is implemented by drivers that expose the SQLSTATE directly,
// such as pgx's *pgconn.PgError.
type sqlStater interface {
	SQLState() string
}

// Code extracts the SQLSTATE of err.
//
// The error chain is searched for a *pq.Error first, then for any error
// exposing SQLState() string.
//
// Parameters:
//   - err: The error to inspect
//
// Returns:
//   - string: The five-character SQLSTATE
//   - bool: false if no SQLSTATE was found
func Code(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}

	var stater sqlStater
	if errors.As(err, &stater) {
		return stater.SQLState(), true
	}

	return "", false
}

// KindOf maps a SQLSTATE to an error kind.
func KindOf(code string) types.ErrorKind {
	switch code {
	case CodeSerializationFailure, CodeDeadlockDetected:
		return types.KindTransientConflict
	case CodeSynchronousReplayUnavailable:
		return types.KindReplicaUnavailable
	case CodeReadOnlySQLTransaction:
		return types.KindReadOnlyViolation
	default:
		return types.KindOpaque
	}
}

// Classify is the default types.ErrorClassifier.
//
// Errors raised by the adaptive classifier (types.ErrRetryAsWritable) are
// classified before any SQLSTATE lookup since they wrap a read-only
// violation.
func Classify(err error) types.ErrorKind {
	if err == nil {
		return types.KindOpaque
	}

	if errors.Is(err, types.ErrRetryAsWritable) {
		return types.KindWritableRequired
	}

	code, ok := Code(err)
	if !ok {
		return types.KindOpaque
	}

	return KindOf(code)
}

var _ types.ErrorClassifier = Classify
