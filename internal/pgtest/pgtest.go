//go:build integration

// Package pgtest starts a throwaway PostgreSQL for integration tests and
// applies the ledger schema to it.
package pgtest

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmerrifield20/cardledger/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// Image is the PostgreSQL image used for integration tests.
const Image = "postgres:16-alpine"

var (
	once    sync.Once
	shared  *pgxpool.Pool
	initErr error
)

// tables lists every ledger table cleared by Reset. ledger_journal keeps its
// genesis row.
var tables = []string{
	"ownership_history",
	"card_owners",
	"gradings",
	"graders",
	"cards",
	"registry_counters",
	"registry_admins",
}

// Pool returns a pool connected to a migrated PostgreSQL container. The
// container is started once per test binary and reaped by Ryuk.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	once.Do(func() {
		shared, initErr = start(context.Background())
	})
	require.NoError(t, initErr, "start postgres container")

	Reset(t, shared)
	return shared
}

func start(ctx context.Context) (*pgxpool.Pool, error) {
	container, err := tcpostgres.Run(ctx, Image,
		tcpostgres.WithDatabase("cardledger"),
		tcpostgres.WithUsername("cardledger"),
		tcpostgres.WithPassword("cardledger"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		_ = testcontainers.TerminateContainer(container)
		return nil, err
	}

	if _, err := migrations.Apply(ctx, pool, nil); err != nil {
		pool.Close()
		_ = testcontainers.TerminateContainer(container)
		return nil, err
	}
	return pool, nil
}

// Reset empties every ledger table so each test starts from a fresh schema.
func Reset(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	for _, table := range tables {
		_, err := pool.Exec(ctx, "DELETE FROM "+table)
		require.NoError(t, err, "clear %s", table)
	}
	_, err := pool.Exec(ctx, "DELETE FROM ledger_journal WHERE idx > 0")
	require.NoError(t, err, "clear ledger_journal")
}
