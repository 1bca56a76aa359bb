// Package vm provides a VictoriaMetrics-based implementation of the MetricsCollector interface.
//
// This package uses github.com/VictoriaMetrics/metrics for lightweight,
// high-performance Prometheus-compatible metrics collection.
//
// # Basic Usage
//
// Create a collector with default prefix "txroute" and pass it to both the
// router and the client:
//
//	collector := vm.New()
//	router := txroute.NewRouter(txroute.WithRouterMetrics(collector))
//	client, _ := txroute.NewClient(router, txroute.WithMetrics(collector))
//
// # Exposing Metrics
//
// Use the Handler method to expose metrics via HTTP:
//
//	http.HandleFunc("/metrics", collector.Handler)
//	http.ListenAndServe(":8080", nil)
//
// # Metrics Provided
//
// Routing:
//   - {prefix}_route_total{endpoint} - Counter of endpoint selections
//   - {prefix}_route_fallback_total - Counter of read-only calls sent to the write endpoint
//   - {prefix}_replica_backoff_total{replica} - Counter of replica backoffs
//
// Transactions:
//   - {prefix}_tx_total{endpoint} - Counter of transactions
//   - {prefix}_tx_errors_total{endpoint} - Counter of failed transactions
//   - {prefix}_tx_duration_seconds{endpoint} - Histogram of transaction latencies
//
// Retry:
//   - {prefix}_retry_total{kind} - Counter of scheduled retries
//   - {prefix}_retry_exhausted_total{kind} - Counter of exhausted calls
//   - {prefix}_retry_canceled_total - Counter of calls cancelled between attempts
//
// Adaptive classification:
//   - {prefix}_classifier_learned_total - Counter of operations learned as not read-only
package vm
