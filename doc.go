// Package txroute routes database transactions between a write endpoint and
// a set of read-only replicas.
//
// Each call declares whether it is read-only. Read-write calls always run on
// the write endpoint; read-only calls run on a replica chosen by a selection
// policy. A replica that reports it cannot serve the required replication
// mode is backed off for a while and skipped, and the call is retried on
// another endpoint.
//
// # Key Features
//
//   - Lock-free Routing: Replica selection and backoff use only atomic
//     compare-and-swap, never a mutex
//   - Selection Policies: RANDOM, ROUND_ROBIN and THREAD_ROUND_ROBIN
//   - Replica Backoff: Failed replicas are excluded for a fixed duration;
//     when every replica is excluded, reads fall back to the write endpoint
//   - Classified Retry: Serialization failures, deadlocks and replica
//     unavailability are retried with a bounded budget
//   - Adaptive Classification: Learn per operation whether it is read-only
//     instead of declaring it
//
// # Basic Usage
//
//	primary, _ := sql.Open("postgres", primaryDSN)
//	replica, _ := sql.Open("postgres", replicaDSN)
//
//	router := txroute.NewRouter()
//	err := router.Configure(txroute.RouterConfig{
//	    Write:    txroute.Endpoint{Name: "primary", DB: sqladapter.WrapDB(primary)},
//	    Replicas: []txroute.Endpoint{{Name: "replica-a", DB: sqladapter.WrapDB(replica)}},
//	    Policy:   txroute.PolicyRoundRobin,
//	    Backoff:  5 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, _ := txroute.NewClient(router)
//	defer client.Close()
//
//	err = client.ReadOnly(ctx, func(ctx context.Context, tx sqladapter.Tx) error {
//	    return tx.QueryRowContext(ctx, "SELECT value FROM key_value WHERE key = $1", key).Scan(&value)
//	})
//
// # Composition
//
// A call passes through wrappers in a fixed order:
//
//	RetryPolicy -> [AdaptiveClassifier] -> routing -> transaction
//
// Routing state travels with the call in a CallContext, never keyed by
// goroutine, so a call may move between goroutines freely. THREAD_ROUND_ROBIN
// needs a CallChain (see WithCallChain) to link sequential calls of one flow;
// without it, or on its first call, it starts at a random replica.
//
// # Error Handling
//
// Driver errors are classified once, by a types.ErrorClassifier
// (pgerr.Classify by default):
//
//   - TransientConflict: retried, no backoff
//   - ReplicaUnavailable: retried, and the replica used is backed off
//   - ReadOnlyViolation: consumed by the adaptive classifier, otherwise opaque
//   - Opaque: returned unchanged
//
// When the retry budget is spent a *types.ExhaustedError is returned. It
// matches types.ErrRetryExhausted and still unwraps to the last driver
// error:
//
//	var exhausted *types.ExhaustedError
//	if errors.As(err, &exhausted) {
//	    log.Printf("gave up after %d attempts: %v", exhausted.Attempts, exhausted.Err)
//	}
//
// Cancellation during the wait between attempts returns an error matching
// both types.ErrRetryCanceled and the context error.
package txroute
