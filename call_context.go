package txroute

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// noSlot marks a call routed to the write endpoint.
const noSlot = -1

// CallContext is the per-call routing state of one logical unit of work.
//
// It is created at call entry, exclusively owned by that call and discarded
// at exit. It is never shared between concurrent calls and never keyed by
// goroutine: it travels explicitly with the call.
type CallContext struct {
	id       string
	readOnly bool
	selected int
	endpoint string
	chain    *CallChain
}

// NewCallContext creates the routing state for one call.
//
// If ctx carries a CallChain (see WithCallChain), the selection made for
// this call is recorded on it for the thread-round-robin policy.
//
// Parameters:
//   - ctx: The caller's context
//   - readOnly: Whether the call declares that it performs no writes
//
// Returns:
//   - *CallContext: Fresh call state with no selected slot
func NewCallContext(ctx context.Context, readOnly bool) *CallContext {
	return &CallContext{
		readOnly: readOnly,
		selected: noSlot,
		chain:    CallChainFrom(ctx),
	}
}

// ReadOnly reports the read-only declaration of the call.
func (c *CallContext) ReadOnly() bool {
	return c.readOnly
}

// SelectedSlot returns the replica index chosen for the call.
//
// Returns:
//   - int: The replica index
//   - bool: false when the call was routed to the write endpoint
func (c *CallContext) SelectedSlot() (int, bool) {
	return c.selected, c.selected != noSlot
}

// Endpoint returns the name of the endpoint selected for the call, or ""
// before selection.
func (c *CallContext) Endpoint() string {
	return c.endpoint
}

// ID returns a correlation ID for log messages, generated on first use.
func (c *CallContext) ID() string {
	if c.id == "" {
		c.id = uuid.NewString()
	}

	return c.id
}

func (c *CallContext) setSelected(idx int, endpoint string) {
	c.selected = idx
	c.endpoint = endpoint
	if c.chain != nil {
		c.chain.last.Store(int64(idx))
	}
}

func (c *CallContext) previousSlot() (int, bool) {
	if c.chain == nil {
		return noSlot, false
	}

	prev := int(c.chain.last.Load())

	return prev, prev != noSlot
}

// CallChain links sequential calls of one logical call-chain, such as the
// requests handled by one worker loop, so the thread-round-robin policy can
// start after the replica used by the previous call.
//
// A chain belongs to one logical flow of control. It may move between
// goroutines with that flow but must not be used by concurrent calls.
type CallChain struct {
	last atomic.Int64
}

type (
	callChainKey   struct{}
	callContextKey struct{}
)

func withCallContext(ctx context.Context, cc *CallContext) context.Context {
	return context.WithValue(ctx, callContextKey{}, cc)
}

// CallContextFrom returns the routing state of the transaction running under
// ctx, or nil outside a routed transaction.
func CallContextFrom(ctx context.Context) *CallContext {
	if ctx == nil {
		return nil
	}

	cc, _ := ctx.Value(callContextKey{}).(*CallContext)

	return cc
}

// WithCallChain returns a context carrying a fresh CallChain.
//
// If ctx already carries a chain it is returned unchanged, so nested calls
// keep extending the same chain.
func WithCallChain(ctx context.Context) context.Context {
	if CallChainFrom(ctx) != nil {
		return ctx
	}

	chain := &CallChain{}
	chain.last.Store(noSlot)

	return context.WithValue(ctx, callChainKey{}, chain)
}

// CallChainFrom returns the CallChain carried by ctx, or nil.
func CallChainFrom(ctx context.Context) *CallChain {
	if ctx == nil {
		return nil
	}

	chain, _ := ctx.Value(callChainKey{}).(*CallChain)

	return chain
}
