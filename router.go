package txroute

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"

	sqladapter "github.com/arloliu/txroute/adapter/sql"
	"github.com/arloliu/txroute/internal/logging"
	"github.com/arloliu/txroute/internal/metrics"
	"github.com/arloliu/txroute/types"
)

// DefaultBackoff is how long a replica stays excluded after a failure when
// RouterConfig.Backoff is not set.
const DefaultBackoff = 5 * time.Second

// notBackedOff is the backoff-until sentinel of a healthy replica.
const notBackedOff int64 = -1

// Endpoint is a database instance and the connection pool that reaches it.
//
// Endpoints are immutable after configuration.
type Endpoint struct {
	// Name identifies the endpoint in logs and metrics.
	Name string

	// DB is the connection pool of the endpoint.
	DB sqladapter.DB
}

// RouterConfig is the one-time configuration of a Router.
type RouterConfig struct {
	// Write is the primary endpoint accepting writes.
	Write Endpoint

	// Replicas are the read-only endpoints, in selection order.
	Replicas []Endpoint

	// Policy picks where the replica scan starts. Default: PolicyRandom.
	Policy types.SelectionPolicy

	// Backoff is how long a failed replica is excluded. Default: 5s.
	Backoff time.Duration
}

// replicaSlot is a replica endpoint plus its backoff state.
//
// backoffUntil holds a unix-nano timestamp or notBackedOff and is only
// mutated with atomic stores (recording a failure) and compare-and-swap
// (clearing an expired backoff).
type replicaSlot struct {
	index        int
	endpoint     Endpoint
	backoffUntil atomic.Int64
}

func newReplicaSlot(index int, endpoint Endpoint) *replicaSlot {
	s := &replicaSlot{index: index, endpoint: endpoint}
	s.backoffUntil.Store(notBackedOff)

	return s
}

// backedOff reports whether the slot is excluded at now, clearing an
// expired backoff on the way. It never blocks: a lost race to clear the
// entry re-reads it, so a backoff stored concurrently by a new failure is
// observed instead of being wiped.
func (s *replicaSlot) backedOff(now int64) bool {
	for {
		until := s.backoffUntil.Load()
		if until == notBackedOff {
			return false
		}
		if until > now {
			return true
		}
		if s.backoffUntil.CompareAndSwap(until, notBackedOff) {
			return false
		}
	}
}

// backOff sets the deadline unconditionally: the latest failure wins, even
// over a later deadline recorded by an earlier failure.
func (s *replicaSlot) backOff(until int64) {
	s.backoffUntil.Store(until)
}

// routerState is immutable once published; only the slots' backoff fields
// change afterwards.
type routerState struct {
	write   Endpoint
	slots   []*replicaSlot
	policy  types.SelectionPolicy
	backoff time.Duration
}

// Router routes each transaction to the write endpoint or to one replica.
//
// A Router is configured exactly once and then shared by every concurrent
// call of the process. Selection is lock-free: the only synchronization is
// compare-and-swap on the round-robin counter and on each replica's
// backoff timestamp.
type Router struct {
	state   atomic.Pointer[routerState]
	next    atomic.Int64
	now     func() time.Time
	intn    func(n int) int
	logger  types.Logger
	metrics types.MetricsCollector
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithClock sets the time source used for backoff bookkeeping.
//
// Parameters:
//   - now: Function returning the current time
//
// Returns:
//   - RouterOption: Configuration option
func WithClock(now func() time.Time) RouterOption {
	return func(r *Router) {
		r.now = now
	}
}

// WithRandom sets the source of random start indexes.
//
// Parameters:
//   - intn: Function returning a uniform integer in [0, n)
//
// Returns:
//   - RouterOption: Configuration option
func WithRandom(intn func(n int) int) RouterOption {
	return func(r *Router) {
		r.intn = intn
	}
}

// WithRouterLogger sets the logger of the router.
func WithRouterLogger(logger types.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithRouterMetrics sets the metrics collector of the router.
func WithRouterMetrics(collector types.MetricsCollector) RouterOption {
	return func(r *Router) {
		r.metrics = collector
	}
}

// NewRouter creates an unconfigured Router.
//
// Every selection fails with types.ErrNotConfigured until Configure
// succeeds.
//
// Parameters:
//   - opts: Optional configuration options
//
// Returns:
//   - *Router: A new router
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{
		now:  time.Now,
		intn: rand.IntN,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.logger = logging.OrNop(r.logger)
	r.metrics = metrics.OrNop(r.metrics)

	return r
}

// Configure performs the one-time setup of the router.
//
// Missing endpoint names default to "write" and "replica-<index>".
//
// Parameters:
//   - cfg: Endpoints, policy and backoff duration
//
// Returns:
//   - error: ErrNilEndpoint or ErrUnknownPolicy for invalid input,
//     ErrAlreadyConfigured on a second call
func (r *Router) Configure(cfg RouterConfig) error {
	if cfg.Write.DB == nil {
		return fmt.Errorf("write endpoint: %w", types.ErrNilEndpoint)
	}

	switch cfg.Policy {
	case types.PolicyRandom, types.PolicyRoundRobin, types.PolicyThreadRoundRobin:
	default:
		return fmt.Errorf("%w: %s", types.ErrUnknownPolicy, cfg.Policy)
	}

	state := &routerState{
		write:   cfg.Write,
		slots:   make([]*replicaSlot, len(cfg.Replicas)),
		policy:  cfg.Policy,
		backoff: cfg.Backoff,
	}
	if state.write.Name == "" {
		state.write.Name = "write"
	}
	if state.backoff <= 0 {
		state.backoff = DefaultBackoff
	}

	for i, ep := range cfg.Replicas {
		if ep.DB == nil {
			return fmt.Errorf("replica %d: %w", i, types.ErrNilEndpoint)
		}
		if ep.Name == "" {
			ep.Name = "replica-" + strconv.Itoa(i)
		}
		state.slots[i] = newReplicaSlot(i, ep)
	}

	if !r.state.CompareAndSwap(nil, state) {
		return types.ErrAlreadyConfigured
	}

	r.logger.Info("router configured",
		"write", state.write.Name,
		"replicas", len(state.slots),
		"policy", state.policy.String(),
		"backoff", state.backoff.String(),
	)

	return nil
}

// Select chooses the endpoint for the call and records the chosen replica
// in cc.
//
// Read-write calls, and read-only calls without replicas, go to the write
// endpoint. Read-only calls scan the replicas from a policy-dependent start
// index, skipping backed-off slots; when every replica is backed off the
// write endpoint is returned.
//
// Parameters:
//   - cc: The call context; its selected slot is overwritten
//
// Returns:
//   - Endpoint: The endpoint to begin the transaction on
//   - error: ErrNotConfigured before Configure
func (r *Router) Select(cc *CallContext) (Endpoint, error) {
	state := r.state.Load()
	if state == nil {
		return Endpoint{}, types.ErrNotConfigured
	}

	n := len(state.slots)
	if !cc.readOnly || n == 0 {
		cc.setSelected(noSlot, state.write.Name)
		r.metrics.IncRouteTotal(state.write.Name)

		return state.write, nil
	}

	start := r.startIndex(state.policy, cc, n)
	now := r.now().UnixNano()
	for i := range n {
		slot := state.slots[(start+i)%n]
		if slot.backedOff(now) {
			continue
		}

		cc.setSelected(slot.index, slot.endpoint.Name)
		r.metrics.IncRouteTotal(slot.endpoint.Name)

		return slot.endpoint, nil
	}

	cc.setSelected(noSlot, state.write.Name)
	r.metrics.IncRouteFallback()
	r.metrics.IncRouteTotal(state.write.Name)
	r.logger.Debug("all replicas backed off, routing read-only call to write endpoint",
		"call", cc.ID(),
		"write", state.write.Name,
	)

	return state.write, nil
}

// startIndex computes where the replica scan begins.
func (r *Router) startIndex(policy types.SelectionPolicy, cc *CallContext, n int) int {
	switch policy {
	case types.PolicyRoundRobin:
		for {
			cur := r.next.Load()
			if r.next.CompareAndSwap(cur, (cur+1)%int64(n)) {
				return int(cur % int64(n))
			}
		}
	case types.PolicyThreadRoundRobin:
		if prev, ok := cc.previousSlot(); ok {
			return (prev + 1) % n
		}
		// no previous selection on this chain yet
		return r.intn(n)
	default:
		return r.intn(n)
	}
}

// RecordFailure backs off the replica selected for cc.
//
// It is a no-op when the call was routed to the write endpoint.
//
// Parameters:
//   - cc: The call context of the failed call
func (r *Router) RecordFailure(cc *CallContext) {
	state := r.state.Load()
	if state == nil {
		return
	}

	idx, ok := cc.SelectedSlot()
	if !ok || idx >= len(state.slots) {
		return
	}

	slot := state.slots[idx]
	until := r.now().Add(state.backoff)
	slot.backOff(until.UnixNano())

	r.metrics.IncReplicaBackoff(slot.endpoint.Name)
	r.logger.Warn("replica backed off",
		"call", cc.ID(),
		"replica", slot.endpoint.Name,
		"until", until,
	)
}

// Configured reports whether Configure has succeeded.
func (r *Router) Configured() bool {
	return r.state.Load() != nil
}

// Replicas returns the replica names in selection order.
func (r *Router) Replicas() []string {
	state := r.state.Load()
	if state == nil {
		return nil
	}

	names := make([]string, len(state.slots))
	for i, s := range state.slots {
		names[i] = s.endpoint.Name
	}

	return names
}

// BackedOff reports whether the named replica is currently excluded.
//
// Like selection, the check clears an expired backoff.
func (r *Router) BackedOff(name string) bool {
	state := r.state.Load()
	if state == nil {
		return false
	}

	now := r.now().UnixNano()
	for _, s := range state.slots {
		if s.endpoint.Name == name {
			return s.backedOff(now)
		}
	}

	return false
}

// Close closes the connection pools of every endpoint.
//
// Returns:
//   - error: The combined close errors, or nil
func (r *Router) Close() error {
	state := r.state.Load()
	if state == nil {
		return nil
	}

	var result *multierror.Error
	if err := state.write.DB.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close %s: %w", state.write.Name, err))
	}
	for _, s := range state.slots {
		if err := s.endpoint.DB.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close %s: %w", s.endpoint.Name, err))
		}
	}

	return result.ErrorOrNil()
}
