// Package types provides shared types and error definitions for the txroute library.
//
// This is a leaf package with zero txroute imports to prevent import cycles.
// All packages in txroute can safely import this package.
//
// # Selection Policies
//
// SelectionPolicy decides where the replica scan starts:
//
//	const (
//	    PolicyRandom           SelectionPolicy = 0
//	    PolicyRoundRobin       SelectionPolicy = 1
//	    PolicyThreadRoundRobin SelectionPolicy = 2
//	)
//
// # Error Kinds
//
// Vendor error codes are mapped once, at the data-access boundary, into
// ErrorKind values. Every layer above deals only in kinds:
//
//   - KindTransientConflict: serialization failure or deadlock, retried
//   - KindReplicaUnavailable: replica cannot serve the replication mode, retried and backed off
//   - KindReadOnlyViolation: write on a read-only server, consumed by the adaptive classifier
//   - KindWritableRequired: adaptive classifier asks for a writable retry
//   - KindOpaque: everything else, passed through unchanged
//
// # Errors
//
// Sentinel errors are provided for common failure scenarios:
//
//   - ErrNotConfigured: Router used before Configure (fatal)
//   - ErrRetryExhausted: Matched by ExhaustedError after the retry budget is spent
//   - ErrRetryCanceled: Caller cancelled between attempts
//   - ErrRetryAsWritable: Matched by WritableRequiredError
package types
