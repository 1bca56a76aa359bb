package vm

import (
	"fmt"
	"io"
	"net/http"

	"github.com/VictoriaMetrics/metrics"

	"github.com/arloliu/txroute/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "txroute"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// kinds lists every error kind that gets its own retry series.
var kinds = []types.ErrorKind{
	types.KindOpaque,
	types.KindTransientConflict,
	types.KindReplicaUnavailable,
	types.KindReadOnlyViolation,
	types.KindWritableRequired,
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// Process-wide series are pre-created at initialization time. Series
// labeled by endpoint are created on first use, since endpoint names are
// only known once the router is configured.
// Thread-safe for concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	// Routing metrics
	routeFallback *metrics.Counter

	// Retry metrics, indexed by error kind
	retryTotal     []*metrics.Counter
	retryExhausted []*metrics.Counter
	retryCanceled  *metrics.Counter

	// Adaptive classification metrics
	classifierLearned *metrics.Counter
}

var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//	router := txroute.NewRouter(txroute.WithRouterMetrics(collector))
//	client, _ := txroute.NewClient(router, txroute.WithMetrics(collector))
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "txroute",
	}

	for _, opt := range opts {
		opt(c)
	}

	// If no set is provided, create a new one and register it globally.
	// If a set is provided, we assume the caller manages it.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

// initMetrics pre-creates the process-wide metrics with the configured prefix.
func (c *Collector) initMetrics() {
	p := c.prefix

	c.routeFallback = c.set.NewCounter(p + "_route_fallback_total")

	c.retryTotal = make([]*metrics.Counter, len(kinds))
	c.retryExhausted = make([]*metrics.Counter, len(kinds))
	for i, kind := range kinds {
		c.retryTotal[i] = c.set.NewCounter(fmt.Sprintf(`%s_retry_total{kind="%s"}`, p, kind))
		c.retryExhausted[i] = c.set.NewCounter(fmt.Sprintf(`%s_retry_exhausted_total{kind="%s"}`, p, kind))
	}
	c.retryCanceled = c.set.NewCounter(p + "_retry_canceled_total")

	c.classifierLearned = c.set.NewCounter(p + "_classifier_learned_total")
}

// Set returns the metrics set of the collector.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to the given writer.
//
// Parameters:
//   - w: The writer to write metrics to
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

// endpointCounter quotes the label value, so any configured endpoint name
// yields a valid series.
func (c *Collector) endpointCounter(name, endpoint string) *metrics.Counter {
	return c.set.GetOrCreateCounter(fmt.Sprintf(`%s_%s{endpoint=%q}`, c.prefix, name, endpoint))
}

func (c *Collector) kindIndex(kind types.ErrorKind) int {
	for i, k := range kinds {
		if k == kind {
			return i
		}
	}

	return 0
}

// ----------------------
// Routing
// ----------------------

// IncRouteTotal increments the counter of selections of an endpoint.
func (c *Collector) IncRouteTotal(endpoint string) {
	c.endpointCounter("route_total", endpoint).Inc()
}

// IncRouteFallback increments the counter of read-only calls sent to the
// write endpoint.
func (c *Collector) IncRouteFallback() {
	c.routeFallback.Inc()
}

// IncReplicaBackoff increments the counter of backoffs of a replica.
func (c *Collector) IncReplicaBackoff(replica string) {
	c.set.GetOrCreateCounter(fmt.Sprintf(`%s_replica_backoff_total{replica=%q}`, c.prefix, replica)).Inc()
}

// ----------------------
// Transactions
// ----------------------

// IncTxTotal increments the total transactions counter.
func (c *Collector) IncTxTotal(endpoint string) {
	c.endpointCounter("tx_total", endpoint).Inc()
}

// IncTxError increments the transaction error counter.
func (c *Collector) IncTxError(endpoint string) {
	c.endpointCounter("tx_errors_total", endpoint).Inc()
}

// ObserveTxDuration records a transaction duration in seconds.
func (c *Collector) ObserveTxDuration(endpoint string, seconds float64) {
	c.set.GetOrCreateHistogram(fmt.Sprintf(`%s_tx_duration_seconds{endpoint=%q}`, c.prefix, endpoint)).Update(seconds)
}

// ----------------------
// Retry
// ----------------------

// IncRetryTotal increments the counter of scheduled retries.
func (c *Collector) IncRetryTotal(kind types.ErrorKind) {
	c.retryTotal[c.kindIndex(kind)].Inc()
}

// IncRetryExhausted increments the counter of calls that spent their budget.
func (c *Collector) IncRetryExhausted(kind types.ErrorKind) {
	c.retryExhausted[c.kindIndex(kind)].Inc()
}

// IncRetryCanceled increments the counter of calls cancelled between attempts.
func (c *Collector) IncRetryCanceled() {
	c.retryCanceled.Inc()
}

// ----------------------
// Adaptive classification
// ----------------------

// IncClassifierLearned increments the counter of operations learned as not
// read-only.
func (c *Collector) IncClassifierLearned() {
	c.classifierLearned.Inc()
}
