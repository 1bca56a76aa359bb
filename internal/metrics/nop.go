// Package metrics provides internal metrics utilities for txroute.
package metrics

import "github.com/arloliu/txroute/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is configured,
// avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// ----------------------
// Routing
// ----------------------

// IncRouteTotal discards the metric.
func (m *NopMetrics) IncRouteTotal(_ string) {}

// IncRouteFallback discards the metric.
func (m *NopMetrics) IncRouteFallback() {}

// IncReplicaBackoff discards the metric.
func (m *NopMetrics) IncReplicaBackoff(_ string) {}

// ----------------------
// Transactions
// ----------------------

// IncTxTotal discards the metric.
func (m *NopMetrics) IncTxTotal(_ string) {}

// IncTxError discards the metric.
func (m *NopMetrics) IncTxError(_ string) {}

// ObserveTxDuration discards the metric.
func (m *NopMetrics) ObserveTxDuration(_ string, _ float64) {}

// ----------------------
// Retry
// ----------------------

// IncRetryTotal discards the metric.
func (m *NopMetrics) IncRetryTotal(_ types.ErrorKind) {}

// IncRetryExhausted discards the metric.
func (m *NopMetrics) IncRetryExhausted(_ types.ErrorKind) {}

// IncRetryCanceled discards the metric.
func (m *NopMetrics) IncRetryCanceled() {}

// ----------------------
// Adaptive classification
// ----------------------

// IncClassifierLearned discards the metric.
func (m *NopMetrics) IncClassifierLearned() {}

// OrNop returns collector, or a NopMetrics when collector is nil.
func OrNop(collector types.MetricsCollector) types.MetricsCollector {
	if collector == nil {
		return NewNopMetrics()
	}

	return collector
}
