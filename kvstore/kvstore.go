// Package kvstore is a small key/value store on top of a routed client.
//
// Reads run in read-only transactions and may be served by a replica;
// writes always run on the write endpoint.
package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arloliu/txroute"
	sqladapter "github.com/arloliu/txroute/adapter/sql"
)

// Operation keys used in adaptive mode.
const (
	OpGet = "kvstore.get"
	OpPut = "kvstore.put"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS key_value (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`
	selectSQL = `SELECT value FROM key_value WHERE key = $1`
	upsertSQL = `INSERT INTO key_value (key, value) VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
)

var (
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = errors.New("kvstore: key not found")

	// ErrNilClient is returned by New without a client.
	ErrNilClient = errors.New("kvstore: client cannot be nil")
)

// Pair is a stored key and its value.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Store reads and writes the key_value table.
type Store struct {
	client   *txroute.Client
	adaptive bool
}

// Option configures a Store.
type Option func(*Store)

// WithAdaptive makes the store learn which operations write instead of
// declaring it: every operation starts out routed as read-only.
func WithAdaptive() Option {
	return func(s *Store) {
		s.adaptive = true
	}
}

// New creates a Store.
//
// Parameters:
//   - client: The routed client
//   - opts: Optional configuration options
//
// Returns:
//   - *Store: A new store
//   - error: ErrNilClient if client is nil
func New(client *txroute.Client, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	s := &Store{client: client}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Init creates the key_value table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	return s.client.ReadWrite(ctx, func(ctx context.Context, tx sqladapter.Tx) error {
		_, err := tx.ExecContext(ctx, createTableSQL)

		return err
	})
}

// Get returns the value stored under key.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - key: The key to look up
//
// Returns:
//   - Pair: The key and its value
//   - error: ErrNotFound for a missing key, or the routing error
func (s *Store) Get(ctx context.Context, key string) (Pair, error) {
	var value string
	err := s.run(ctx, OpGet, true, func(ctx context.Context, tx sqladapter.Tx) error {
		return tx.QueryRowContext(ctx, selectSQL, key).Scan(&value)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Pair{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if err != nil {
		return Pair{}, err
	}

	return Pair{Key: key, Value: value}, nil
}

// Put stores value under key, replacing any previous value.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - key: The key
//   - value: The new value
//
// Returns:
//   - Pair: The stored key and value
//   - error: The routing error, if any
func (s *Store) Put(ctx context.Context, key, value string) (Pair, error) {
	err := s.run(ctx, OpPut, false, func(ctx context.Context, tx sqladapter.Tx) error {
		_, err := tx.ExecContext(ctx, upsertSQL, key, value)

		return err
	})
	if err != nil {
		return Pair{}, err
	}

	return Pair{Key: key, Value: value}, nil
}

func (s *Store) run(ctx context.Context, op string, readOnly bool, fn txroute.TxFunc) error {
	if s.adaptive {
		return s.client.RunAdaptive(ctx, op, fn)
	}

	return s.client.Run(ctx, readOnly, fn)
}
