package sql_test

import (
	"context"
	"database/sql"
	"testing"

	sqladapter "github.com/arloliu/txroute/adapter/sql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// a single connection keeps the in-memory database shared by every query
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestWrapDB(t *testing.T) {
	db := openMemory(t)

	adapter := sqladapter.WrapDB(db)
	require.NotNil(t, adapter)
	require.Implements(t, (*sqladapter.DB)(nil), adapter)
	require.Same(t, db, sqladapter.Unwrap(adapter))
}

func TestUnwrapForeignImplementation(t *testing.T) {
	var foreign sqladapter.DB
	require.Nil(t, sqladapter.Unwrap(foreign))
}

func TestBeginTxCommit(t *testing.T) {
	adapter := sqladapter.WrapDB(openMemory(t))
	ctx := context.Background()

	_, err := adapter.ExecContext(ctx, "CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	tx, err := adapter.BeginTx(ctx, nil)
	require.NoError(t, err)

	result, err := tx.ExecContext(ctx, "INSERT INTO test (id, name) VALUES (?, ?)", 1, "Alice")
	require.NoError(t, err)

	rowsAffected, err := result.RowsAffected()
	require.NoError(t, err)
	require.Equal(t, int64(1), rowsAffected)
	require.NoError(t, tx.Commit())

	var name string
	require.NoError(t, adapter.QueryRowContext(ctx, "SELECT name FROM test WHERE id = ?", 1).Scan(&name))
	require.Equal(t, "Alice", name)
}

func TestBeginTxRollback(t *testing.T) {
	adapter := sqladapter.WrapDB(openMemory(t))
	ctx := context.Background()

	_, err := adapter.ExecContext(ctx, "CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	tx, err := adapter.BeginTx(ctx, &sql.TxOptions{})
	require.NoError(t, err)

	_, err = tx.ExecContext(ctx, "INSERT INTO test (id, name) VALUES (?, ?)", 1, "Bob")
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	var name string
	err = adapter.QueryRowContext(ctx, "SELECT name FROM test WHERE id = ?", 1).Scan(&name)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestBeginTxQueryRows(t *testing.T) {
	adapter := sqladapter.WrapDB(openMemory(t))
	ctx := context.Background()

	_, err := adapter.ExecContext(ctx, "CREATE TABLE test (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)
	_, err = adapter.ExecContext(ctx, "INSERT INTO test (id, name) VALUES (1, 'Alice'), (2, 'Bob')")
	require.NoError(t, err)

	tx, err := adapter.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, "SELECT name FROM test ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	require.Equal(t, []string{"Alice", "Bob"}, names)
}

func TestBeginTxOnClosedDB(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	adapter := sqladapter.WrapDB(db)
	require.NoError(t, adapter.Close())

	tx, err := adapter.BeginTx(context.Background(), nil)
	require.Error(t, err)
	require.Nil(t, tx)

	require.Error(t, adapter.PingContext(context.Background()))
}

func TestDBAdapterExecContextError(t *testing.T) {
	adapter := sqladapter.WrapDB(openMemory(t))

	_, err := adapter.ExecContext(context.Background(), "INVALID SQL SYNTAX")
	require.Error(t, err)
}
