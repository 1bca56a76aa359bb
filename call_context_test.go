package txroute

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCallContext(t *testing.T) {
	cc := NewCallContext(t.Context(), true)
	require.True(t, cc.ReadOnly())
	require.Empty(t, cc.Endpoint())

	_, ok := cc.SelectedSlot()
	require.False(t, ok)

	id := cc.ID()
	require.NotEmpty(t, id)
	require.Equal(t, id, cc.ID())
	require.NotEqual(t, id, NewCallContext(t.Context(), true).ID())
}

func TestCallChain(t *testing.T) {
	require.Nil(t, CallChainFrom(t.Context()))
	require.Nil(t, CallChainFrom(nil)) //nolint:staticcheck // nil context is tolerated

	ctx := WithCallChain(t.Context())
	chain := CallChainFrom(ctx)
	require.NotNil(t, chain)
	require.Same(t, chain, CallChainFrom(WithCallChain(ctx)))

	cc := NewCallContext(ctx, true)
	_, ok := cc.previousSlot()
	require.False(t, ok, "fresh chain has no previous slot")

	cc.setSelected(2, "replica-2")
	next := NewCallContext(ctx, true)
	prev, ok := next.previousSlot()
	require.True(t, ok)
	require.Equal(t, 2, prev)

	next.setSelected(noSlot, "write")
	_, ok = NewCallContext(ctx, true).previousSlot()
	require.False(t, ok)
}

func TestCallContextFrom(t *testing.T) {
	require.Nil(t, CallContextFrom(t.Context()))

	cc := NewCallContext(t.Context(), false)
	ctx := withCallContext(context.Background(), cc)
	require.Same(t, cc, CallContextFrom(ctx))
}
