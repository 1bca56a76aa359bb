package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExhaustedError(t *testing.T) {
	cause := errors.New("synchronous replay unavailable")
	err := &ExhaustedError{
		Attempts: 3,
		Kind:     KindReplicaUnavailable,
		Err:      cause,
	}

	assert.Contains(t, err.Error(), "routing exhausted after 3 attempts")
	assert.Contains(t, err.Error(), "replica_unavailable")
	assert.Contains(t, err.Error(), "synchronous replay unavailable")
	assert.True(t, errors.Is(err, ErrRetryExhausted))
	assert.True(t, errors.Is(err, cause))
}

func TestWritableRequiredError(t *testing.T) {
	cause := errors.New("cannot execute INSERT in a read-only transaction")
	err := &WritableRequiredError{Key: "kvstore.put", Err: cause}

	assert.Contains(t, err.Error(), "kvstore.put")
	assert.True(t, errors.Is(err, ErrRetryAsWritable))
	assert.True(t, errors.Is(err, cause))

	var target *WritableRequiredError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "kvstore.put", target.Key)
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrNotConfigured", ErrNotConfigured, "router is not configured"},
		{"ErrAlreadyConfigured", ErrAlreadyConfigured, "already configured"},
		{"ErrNilEndpoint", ErrNilEndpoint, "endpoint database cannot be nil"},
		{"ErrClientClosed", ErrClientClosed, "client is closed"},
		{"ErrRetryCanceled", ErrRetryCanceled, "retry canceled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, tt.err.Error(), tt.msg)
		})
	}
}

func TestParseSelectionPolicy(t *testing.T) {
	tests := []struct {
		in   string
		want SelectionPolicy
	}{
		{"", PolicyRandom},
		{"RANDOM", PolicyRandom},
		{"round_robin", PolicyRoundRobin},
		{"ROUND-ROBIN", PolicyRoundRobin},
		{"THREAD_ROUND_ROBIN", PolicyThreadRoundRobin},
	}

	for _, tt := range tests {
		got, err := ParseSelectionPolicy(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseSelectionPolicy("least_loaded")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnknownPolicy)
}

func TestErrorKindRetryable(t *testing.T) {
	assert.False(t, KindOpaque.Retryable())
	assert.True(t, KindTransientConflict.Retryable())
	assert.True(t, KindReplicaUnavailable.Retryable())
	assert.False(t, KindReadOnlyViolation.Retryable())
	assert.True(t, KindWritableRequired.Retryable())
}

func TestStringers(t *testing.T) {
	assert.Equal(t, "thread_round_robin", PolicyThreadRoundRobin.String())
	assert.Equal(t, "transient_conflict", KindTransientConflict.String())
	assert.Equal(t, "retry_scheduled", RetryScheduled.String())
	assert.Equal(t, "kind(42)", ErrorKind(42).String())
}
