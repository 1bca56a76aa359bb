package txroute_test

import (
	"context"
	"database/sql"
	"strconv"
	"testing"

	"github.com/arloliu/txroute"
	sqladapter "github.com/arloliu/txroute/adapter/sql"
	"github.com/arloliu/txroute/types"
)

// =============================================================================
// Benchmark Infrastructure
// =============================================================================

// benchDB provides a zero-overhead pool for benchmarking.
// It measures only routing overhead, not actual database operations.
type benchDB struct{}

func (benchDB) BeginTx(_ context.Context, _ *sql.TxOptions) (sqladapter.Tx, error) {
	return benchTx{}, nil
}

func (benchDB) ExecContext(_ context.Context, _ string, _ ...any) (sql.Result, error) {
	return nil, nil //nolint:nilnil // benchmark stub
}

func (benchDB) QueryContext(_ context.Context, _ string, _ ...any) (*sql.Rows, error) {
	return nil, nil //nolint:nilnil // benchmark stub
}

func (benchDB) QueryRowContext(_ context.Context, _ string, _ ...any) *sql.Row { return nil }
func (benchDB) PingContext(_ context.Context) error                           { return nil }
func (benchDB) Close() error                                                  { return nil }

type benchTx struct{}

func (benchTx) ExecContext(_ context.Context, _ string, _ ...any) (sql.Result, error) {
	return nil, nil //nolint:nilnil // benchmark stub
}

func (benchTx) QueryContext(_ context.Context, _ string, _ ...any) (*sql.Rows, error) {
	return nil, nil //nolint:nilnil // benchmark stub
}

func (benchTx) QueryRowContext(_ context.Context, _ string, _ ...any) *sql.Row { return nil }
func (benchTx) Commit() error                                                  { return nil }
func (benchTx) Rollback() error                                                { return nil }

func newBenchRouter(b *testing.B, replicas int, policy types.SelectionPolicy) *txroute.Router {
	b.Helper()

	cfg := txroute.RouterConfig{
		Write:  txroute.Endpoint{Name: "write", DB: benchDB{}},
		Policy: policy,
	}
	for i := range replicas {
		cfg.Replicas = append(cfg.Replicas, txroute.Endpoint{Name: "replica-" + strconv.Itoa(i), DB: benchDB{}})
	}

	router := txroute.NewRouter()
	if err := router.Configure(cfg); err != nil {
		b.Fatal(err)
	}

	return router
}

// =============================================================================
// Selection
// =============================================================================

func BenchmarkRouterSelect(b *testing.B) {
	policies := []types.SelectionPolicy{
		types.PolicyRandom,
		types.PolicyRoundRobin,
		types.PolicyThreadRoundRobin,
	}

	for _, policy := range policies {
		b.Run(policy.String(), func(b *testing.B) {
			router := newBenchRouter(b, 4, policy)
			ctx := txroute.WithCallChain(context.Background())

			b.ReportAllocs()
			for b.Loop() {
				cc := txroute.NewCallContext(ctx, true)
				if _, err := router.Select(cc); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRouterSelectParallel(b *testing.B) {
	router := newBenchRouter(b, 4, types.PolicyRoundRobin)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			cc := txroute.NewCallContext(ctx, true)
			if _, err := router.Select(cc); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

// =============================================================================
// Client
// =============================================================================

func BenchmarkClientReadOnly(b *testing.B) {
	client, err := txroute.NewClient(newBenchRouter(b, 2, types.PolicyRoundRobin))
	if err != nil {
		b.Fatal(err)
	}

	ctx := context.Background()
	fn := func(context.Context, sqladapter.Tx) error { return nil }

	b.ReportAllocs()
	for b.Loop() {
		if err := client.ReadOnly(ctx, fn); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkClientRunAdaptive(b *testing.B) {
	client, err := txroute.NewClient(newBenchRouter(b, 2, types.PolicyRoundRobin))
	if err != nil {
		b.Fatal(err)
	}

	ctx := context.Background()
	fn := func(context.Context, sqladapter.Tx) error { return nil }

	b.ReportAllocs()
	for b.Loop() {
		if err := client.RunAdaptive(ctx, "get", fn); err != nil {
			b.Fatal(err)
		}
	}
}
