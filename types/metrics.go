package types

// MetricsCollector defines methods for collecting operational metrics.
//
// Endpoint-scoped methods receive the endpoint name for labeling.
// Implementations should be thread-safe as methods may be called concurrently.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/arloliu/txroute/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	router := txroute.NewRouter(txroute.WithRouterMetrics(collector))
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Routing
	// ----------------------

	// IncRouteTotal increments the counter of selections of an endpoint.
	IncRouteTotal(endpoint string)

	// IncRouteFallback increments the counter of read-only calls sent to the
	// write endpoint because every replica was backed off.
	IncRouteFallback()

	// IncReplicaBackoff increments the counter of backoffs of a replica.
	IncReplicaBackoff(replica string)

	// ----------------------
	// Transactions
	// ----------------------

	// IncTxTotal increments the total transactions counter.
	IncTxTotal(endpoint string)

	// IncTxError increments the transaction error counter.
	IncTxError(endpoint string)

	// ObserveTxDuration records a transaction duration in seconds.
	ObserveTxDuration(endpoint string, seconds float64)

	// ----------------------
	// Retry
	// ----------------------

	// IncRetryTotal increments the counter of scheduled retries by error kind.
	IncRetryTotal(kind ErrorKind)

	// IncRetryExhausted increments the counter of calls that spent their budget.
	IncRetryExhausted(kind ErrorKind)

	// IncRetryCanceled increments the counter of calls cancelled between attempts.
	IncRetryCanceled()

	// ----------------------
	// Adaptive classification
	// ----------------------

	// IncClassifierLearned increments the counter of operations learned as
	// not read-only.
	IncClassifierLearned()
}
