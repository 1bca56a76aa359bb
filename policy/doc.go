// Package policy provides the retry policy of the txroute client.
//
// # Retry Policy
//
// [RetryPolicy] re-runs a whole call while its failure is classified as
// retryable (transient conflict, replica unavailable, writable required),
// up to a fixed number of attempts. Each attempt goes through routing
// again, so a replica that was backed off by the previous failure is not
// picked twice.
//
// Waits between attempts follow a [backoff.BackOff] schedule, by default
// [DefaultBackOff], and are abandoned as soon as the call's context is done.
//
// Example:
//
//	retry := policy.NewRetryPolicy(
//	    policy.WithMaxAttempts(5),
//	    policy.WithClassifier(pgerr.Classify),
//	    policy.WithRetryLogger(logger),
//	)
//	client, _ := txroute.NewClient(router, txroute.WithRetryPolicy(retry))
//
// # Outcomes
//
//   - Success: Do returns nil
//   - Non-retryable failure: the raw error, unchanged
//   - Budget spent: a *types.ExhaustedError wrapping the last error
//   - Context done between attempts: an error matching both
//     types.ErrRetryCanceled and the context error
//
// The observer set with [WithObserver] sees every state transition, which
// makes the policy's behavior easy to assert in tests.
package policy
