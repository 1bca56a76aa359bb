package txroute

import "github.com/arloliu/txroute/types"

// Type aliases for convenience - re-export from types package.
type (
	SelectionPolicy  = types.SelectionPolicy
	ErrorKind        = types.ErrorKind
	ErrorClassifier  = types.ErrorClassifier
	RetryState       = types.RetryState
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)

// Re-export selection policy constants for convenience.
const (
	PolicyRandom           = types.PolicyRandom
	PolicyRoundRobin       = types.PolicyRoundRobin
	PolicyThreadRoundRobin = types.PolicyThreadRoundRobin
)

// Re-export error kind constants for convenience.
const (
	KindOpaque             = types.KindOpaque
	KindTransientConflict  = types.KindTransientConflict
	KindReplicaUnavailable = types.KindReplicaUnavailable
	KindReadOnlyViolation  = types.KindReadOnlyViolation
	KindWritableRequired   = types.KindWritableRequired
)
