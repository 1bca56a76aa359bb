package txroute

import (
	"context"
	"reflect"
	"runtime"
	"sync"

	"github.com/arloliu/txroute/internal/logging"
	"github.com/arloliu/txroute/internal/metrics"
	"github.com/arloliu/txroute/types"
)

// LearnedTable is the process-wide tier of adaptive classification.
//
// An absent key is read-only. An entry only ever moves from read-only to
// not read-only and is kept for the life of the table; nothing is persisted.
// Share one table between every AdaptiveClassifier of a process.
//
// LearnedTable is safe for concurrent use.
type LearnedTable struct {
	mu       sync.RWMutex
	writable map[string]struct{}
}

// NewLearnedTable creates an empty table.
func NewLearnedTable() *LearnedTable {
	return &LearnedTable{writable: make(map[string]struct{})}
}

// ReadOnly reports whether key is still considered read-only.
func (t *LearnedTable) ReadOnly(key string) bool {
	t.mu.RLock()
	_, found := t.writable[key]
	t.mu.RUnlock()

	return !found
}

// MarkWritable records key as not read-only.
//
// Returns:
//   - bool: true if this call performed the transition
func (t *LearnedTable) MarkWritable(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, found := t.writable[key]; found {
		return false
	}
	t.writable[key] = struct{}{}

	return true
}

// Len returns the number of keys learned as not read-only.
func (t *LearnedTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.writable)
}

// localCache is the call-local tier. It is carried by the context of one
// logical call and survives that call's retries.
type localCache struct {
	mu      sync.Mutex
	entries map[string]bool
}

type localCacheKey struct{}

// WithLocalCache returns a context carrying a fresh call-local
// classification cache, or ctx itself if it already carries one.
//
// Client.RunAdaptive installs one per call; install it higher up to share
// it between several calls of one logical flow.
func WithLocalCache(ctx context.Context) context.Context {
	if localCacheFrom(ctx) != nil {
		return ctx
	}

	return context.WithValue(ctx, localCacheKey{}, &localCache{entries: make(map[string]bool)})
}

func localCacheFrom(ctx context.Context) *localCache {
	cache, _ := ctx.Value(localCacheKey{}).(*localCache)

	return cache
}

// AdaptiveClassifier learns per operation key whether a call is read-only
// instead of relying on a declared flag.
//
// Every key starts out read-only. A key whose call fails with a read-only
// violation is marked not read-only in both tiers, and the call is asked to
// retry on the write endpoint.
type AdaptiveClassifier struct {
	table   *LearnedTable
	logger  types.Logger
	metrics types.MetricsCollector
}

// AdaptiveOption configures an AdaptiveClassifier.
type AdaptiveOption func(*AdaptiveClassifier)

// WithAdaptiveLogger sets the logger of the classifier.
func WithAdaptiveLogger(logger types.Logger) AdaptiveOption {
	return func(a *AdaptiveClassifier) {
		a.logger = logger
	}
}

// WithAdaptiveMetrics sets the metrics collector of the classifier.
func WithAdaptiveMetrics(collector types.MetricsCollector) AdaptiveOption {
	return func(a *AdaptiveClassifier) {
		a.metrics = collector
	}
}

// NewAdaptiveClassifier creates a classifier over a shared table.
//
// Parameters:
//   - table: The shared tier; nil creates a private table
//   - opts: Optional configuration options
//
// Returns:
//   - *AdaptiveClassifier: A new classifier
func NewAdaptiveClassifier(table *LearnedTable, opts ...AdaptiveOption) *AdaptiveClassifier {
	if table == nil {
		table = NewLearnedTable()
	}

	a := &AdaptiveClassifier{table: table}
	for _, opt := range opts {
		opt(a)
	}

	a.logger = logging.OrNop(a.logger)
	a.metrics = metrics.OrNop(a.metrics)

	return a
}

// Table returns the shared tier of the classifier.
func (a *AdaptiveClassifier) Table() *LearnedTable {
	return a.table
}

// IsReadOnly reports whether the call identified by key may run on a
// replica.
//
// A hit in the call-local cache of ctx is returned as is. On a miss the
// shared table decides, and the call-local cache is seeded with true
// whatever the shared value was. A later lookup of the same key through the
// same call-local cache therefore answers true until a failure is observed.
//
// Without a call-local cache in ctx only the shared table is consulted.
//
// Parameters:
//   - ctx: Context carrying the call-local cache (see WithLocalCache)
//   - key: The operation key
//
// Returns:
//   - bool: true if the call is routed as read-only
func (a *AdaptiveClassifier) IsReadOnly(ctx context.Context, key string) bool {
	cache := localCacheFrom(ctx)
	if cache == nil {
		return a.table.ReadOnly(key)
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()

	if readOnly, found := cache.entries[key]; found {
		return readOnly
	}
	cache.entries[key] = true

	return a.table.ReadOnly(key)
}

// ObserveFailure marks key as not read-only in both tiers.
//
// Call it when a call routed as read-only failed because it attempted a
// write.
//
// Parameters:
//   - ctx: Context carrying the call-local cache
//   - key: The operation key
//   - err: The read-only violation
//
// Returns:
//   - error: *types.WritableRequiredError wrapping err
func (a *AdaptiveClassifier) ObserveFailure(ctx context.Context, key string, err error) error {
	if cache := localCacheFrom(ctx); cache != nil {
		cache.mu.Lock()
		cache.entries[key] = false
		cache.mu.Unlock()
	}

	if a.table.MarkWritable(key) {
		a.metrics.IncClassifierLearned()
		a.logger.Info("operation learned as not read-only", "key", key)
	}

	return &types.WritableRequiredError{Key: key, Err: err}
}

// OperationKey derives a stable operation key from the code identity of fn.
//
// Closures are named after their enclosing function and position, so every
// call site yields its own key.
//
// Parameters:
//   - fn: A function value
//
// Returns:
//   - string: The fully qualified function name, or "" if fn is not a function
func OperationKey(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}

	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}

	return f.Name()
}
