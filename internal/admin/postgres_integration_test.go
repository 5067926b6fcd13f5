//go:build integration

package admin_test

import (
	"context"
	"testing"

	"github.com/jmerrifield20/cardledger/internal/admin"
	"github.com/jmerrifield20/cardledger/internal/pgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresAdmin_BootstrapAndTransfer(t *testing.T) {
	ctx := context.Background()
	pool := pgtest.Pool(t)

	require.NoError(t, admin.Bootstrap(ctx, pool, admin.ComponentCards, "SP1A"))
	require.NoError(t, admin.Bootstrap(ctx, pool, admin.ComponentGrading, "SP1B"))

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.ErrorIs(t, admin.TransferTx(ctx, tx, admin.ComponentCards, "SP1B", "SP1C"), admin.ErrNotAdmin)
	require.NoError(t, admin.TransferTx(ctx, tx, admin.ComponentCards, "SP1A", "SP1C"))
	require.NoError(t, tx.Commit(ctx))

	cards, err := admin.Current(ctx, pool, admin.ComponentCards)
	require.NoError(t, err)
	assert.Equal(t, "SP1C", cards.String())

	grading, err := admin.Current(ctx, pool, admin.ComponentGrading)
	require.NoError(t, err)
	assert.Equal(t, "SP1B", grading.String(), "components have independent admins")

	// Bootstrap never overwrites an existing admin.
	require.NoError(t, admin.Bootstrap(ctx, pool, admin.ComponentCards, "SP1A"))
	cards, err = admin.Current(ctx, pool, admin.ComponentCards)
	require.NoError(t, err)
	assert.Equal(t, "SP1C", cards.String())
}
