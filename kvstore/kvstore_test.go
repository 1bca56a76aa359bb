package kvstore

import (
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/txroute"
	"github.com/arloliu/txroute/config"
)

func newStore(t *testing.T, opts ...Option) *Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "kv.db") + "?_busy_timeout=5000"
	cfg := &config.Config{
		Driver:   "sqlite3",
		Write:    config.EndpointConfig{Name: "primary", DSN: dsn},
		Replicas: []config.EndpointConfig{{Name: "replica-a", DSN: dsn}},
		Policy:   "round_robin",
		Pool:     config.PoolConfig{MaxOpenConns: 1},
	}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	router, err := cfg.NewRouter(t.Context())
	require.NoError(t, err)

	client, err := txroute.NewClient(router, txroute.WithRetryPolicy(cfg.RetryPolicy()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store, err := New(client, opts...)
	require.NoError(t, err)
	require.NoError(t, store.Init(t.Context()))

	return store
}

func TestNewNilClient(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrNilClient)
}

func TestPutGet(t *testing.T) {
	store := newStore(t)

	pair, err := store.Put(t.Context(), "banana", "yellow")
	require.NoError(t, err)
	require.Equal(t, Pair{Key: "banana", Value: "yellow"}, pair)

	pair, err = store.Get(t.Context(), "banana")
	require.NoError(t, err)
	require.Equal(t, "yellow", pair.Value)

	// upsert replaces the value
	_, err = store.Put(t.Context(), "banana", "brown")
	require.NoError(t, err)

	pair, err = store.Get(t.Context(), "banana")
	require.NoError(t, err)
	require.Equal(t, "brown", pair.Value)
}

func TestGetMissing(t *testing.T) {
	store := newStore(t)

	_, err := store.Get(t.Context(), "cherry")
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, err.Error(), `"cherry"`)
}

func TestAdaptiveStore(t *testing.T) {
	store := newStore(t, WithAdaptive())

	_, err := store.Put(t.Context(), "lime", "green")
	require.NoError(t, err)

	pair, err := store.Get(t.Context(), "lime")
	require.NoError(t, err)
	require.Equal(t, "green", pair.Value)
}

func TestInitIdempotent(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Init(t.Context()))
}
