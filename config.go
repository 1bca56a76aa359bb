package txroute

import (
	"database/sql"

	"github.com/arloliu/txroute/internal/logging"
	"github.com/arloliu/txroute/internal/metrics"
	"github.com/arloliu/txroute/pgerr"
	"github.com/arloliu/txroute/types"
)

// ClientConfig holds configuration for a Client.
type ClientConfig struct {
	// Retry re-runs failed calls. Default: policy.NewRetryPolicy with the
	// client's classifier, logger and metrics.
	Retry Retrier

	// Classifier maps driver errors to error kinds. Default: pgerr.Classify.
	Classifier types.ErrorClassifier

	// Adaptive decides the read-only intent of RunAdaptive calls.
	// Default: an AdaptiveClassifier over a fresh LearnedTable.
	Adaptive ReadOnlyClassifier

	// Isolation is the isolation level of every transaction.
	Isolation sql.IsolationLevel

	Metrics MetricsCollector
	Logger  types.Logger
}

// DefaultConfig returns a ClientConfig with sensible defaults.
//
// Retry and Adaptive are left nil and built by NewClient so they share the
// final logger and metrics collector.
//
// Returns:
//   - *ClientConfig: Configuration with default settings
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Classifier: pgerr.Classify,
		Isolation:  sql.LevelDefault,
		Metrics:    metrics.NewNopMetrics(),
		Logger:     logging.NewNopLogger(),
	}
}

// Option configures a ClientConfig.
type Option func(*ClientConfig)

// WithRetryPolicy sets the retry policy wrapped around every call.
//
// Parameters:
//   - retry: The retry policy (e.g., policy.NewRetryPolicy())
//
// Returns:
//   - Option: Configuration option
func WithRetryPolicy(retry Retrier) Option {
	return func(c *ClientConfig) {
		c.Retry = retry
	}
}

// WithClassifier sets the error classifier used to detect replica
// unavailability and read-only violations.
//
// When no retry policy is set, the default policy uses the same classifier.
//
// Parameters:
//   - classify: The error classifier
//
// Returns:
//   - Option: Configuration option
func WithClassifier(classify types.ErrorClassifier) Option {
	return func(c *ClientConfig) {
		c.Classifier = classify
	}
}

// WithAdaptiveClassifier sets the classifier of RunAdaptive calls.
//
// Clients sharing one LearnedTable learn from each other:
//
//	table := txroute.NewLearnedTable()
//	client, _ := txroute.NewClient(router,
//	    txroute.WithAdaptiveClassifier(txroute.NewAdaptiveClassifier(table)),
//	)
//
// Parameters:
//   - classifier: The read-only classifier
//
// Returns:
//   - Option: Configuration option
func WithAdaptiveClassifier(classifier ReadOnlyClassifier) Option {
	return func(c *ClientConfig) {
		c.Adaptive = classifier
	}
}

// WithIsolation sets the isolation level of every transaction.
//
// Parameters:
//   - level: The isolation level
//
// Returns:
//   - Option: Configuration option
func WithIsolation(level sql.IsolationLevel) Option {
	return func(c *ClientConfig) {
		c.Isolation = level
	}
}

// WithMetrics sets the metrics collector.
//
// If not set, a no-op collector is used that discards all metrics.
// Use contrib/metrics/vm.New() for VictoriaMetrics integration.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: Configuration option
func WithMetrics(collector MetricsCollector) Option {
	return func(c *ClientConfig) {
		c.Metrics = collector
	}
}

// WithLogger sets the structured logger.
//
// If not set, a no-op logger is used that discards all messages.
// The logger interface is compatible with zap.SugaredLogger.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: Configuration option
func WithLogger(logger types.Logger) Option {
	return func(c *ClientConfig) {
		c.Logger = logger
	}
}
