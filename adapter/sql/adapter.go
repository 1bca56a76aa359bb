// Package sql provides SQL-specific adapter interfaces for database/sql.
//
// This package defines interfaces that wrap the standard library's database/sql
// types so the router can treat every endpoint's connection pool as an opaque
// collaborator: given an endpoint, it yields a transaction or fails.
package sql

import (
	"context"
	"database/sql"
)

// DB represents a connection pool for one endpoint.
//
// This interface wraps *sql.DB. The router never inspects pool internals.
type DB interface {
	// BeginTx acquires a connection and starts a transaction on it.
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)

	// ExecContext executes a query without returning any rows.
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)

	// QueryContext executes a query that returns rows.
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// QueryRowContext executes a query that returns at most one row.
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row

	// PingContext verifies the connection is alive.
	PingContext(ctx context.Context) error

	// Close closes the connection pool.
	Close() error
}

// Tx is a transaction bound to one connection of one endpoint.
//
// *sql.Tx satisfies this interface.
type Tx interface {
	// ExecContext executes a query without returning any rows.
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)

	// QueryContext executes a query that returns rows.
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// QueryRowContext executes a query that returns at most one row.
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row

	// Commit commits the transaction and releases its connection.
	Commit() error

	// Rollback aborts the transaction and releases its connection.
	Rollback() error
}

var _ Tx = (*sql.Tx)(nil)

// dbAdapter wraps *sql.DB to implement the DB interface.
type dbAdapter struct {
	db *sql.DB
}

// NewDBAdapter creates a new DB adapter wrapping a *sql.DB.
//
// Parameters:
//   - db: The underlying sql.DB to wrap
//
// Returns:
//   - DB: An adapter implementing the DB interface
func NewDBAdapter(db *sql.DB) DB {
	return &dbAdapter{db: db}
}

// WrapDB is an alias for NewDBAdapter that wraps a *sql.DB.
//
// Example:
//
//	db, _ := sql.Open("postgres", dsn)
//	primary := txroute.Endpoint{Name: "primary", DB: sqladapter.WrapDB(db)}
func WrapDB(db *sql.DB) DB {
	return NewDBAdapter(db)
}

// Unwrap returns the *sql.DB behind an adapter created by NewDBAdapter,
// or nil for other implementations.
func Unwrap(db DB) *sql.DB {
	if a, ok := db.(*dbAdapter); ok {
		return a.db
	}

	return nil
}

// BeginTx acquires a connection and starts a transaction on it.
func (a *dbAdapter) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	tx, err := a.db.BeginTx(ctx, opts)
	if err != nil {
		// avoid returning a typed nil inside the interface
		return nil, err
	}

	return tx, nil
}

// ExecContext executes a query without returning any rows.
func (a *dbAdapter) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return a.db.ExecContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (a *dbAdapter) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return a.db.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query that returns at most one row.
func (a *dbAdapter) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return a.db.QueryRowContext(ctx, query, args...)
}

// PingContext verifies the connection is alive.
func (a *dbAdapter) PingContext(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// Close closes the connection pool.
func (a *dbAdapter) Close() error {
	return a.db.Close()
}
