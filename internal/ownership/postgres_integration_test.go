//go:build integration

package ownership_test

import (
	"testing"

	"github.com/jmerrifield20/cardledger/internal/ownership"
	"github.com/jmerrifield20/cardledger/internal/pgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPostgresLedger(t *testing.T) *ownership.PostgresLedger {
	t.Helper()
	return ownership.NewPostgresLedger(pgtest.Pool(t), zap.NewNop())
}

func TestPostgresLedger_RegisterOnce(t *testing.T) {
	l := newPostgresLedger(t)

	require.NoError(t, l.RegisterOwnership(ctx, owner1, 7))
	require.ErrorIs(t, l.RegisterOwnership(ctx, owner2, 7), ownership.ErrAlreadyRegistered)

	rec, ok, err := l.Owner(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, owner1, rec.Owner)
	assert.Equal(t, uint64(0), count(t, l, 7))
}

func TestPostgresLedger_TransferChain(t *testing.T) {
	l := newPostgresLedger(t)

	require.ErrorIs(t, l.TransferOwnership(ctx, owner1, 1, owner2, 100), ownership.ErrCardNotFound)

	require.NoError(t, l.RegisterOwnership(ctx, owner1, 1))
	require.ErrorIs(t, l.TransferOwnership(ctx, owner2, 1, owner3, 100), ownership.ErrNotOwner)

	require.NoError(t, l.TransferOwnership(ctx, owner1, 1, owner2, 101))
	require.NoError(t, l.TransferOwnership(ctx, owner2, 1, owner3, 102))

	assert.Equal(t, uint64(2), count(t, l, 1))

	e, ok, err := l.HistoryEntry(ctx, 1, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ownership.HistoryEntry{CardID: 1, Index: 1, PreviousOwner: owner2, NewOwner: owner3, TransferDate: 102}, e)

	_, ok, err = l.HistoryEntry(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := l.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, owner1, all[0].PreviousOwner)
	assert.Equal(t, all[0].NewOwner, all[1].PreviousOwner)

	rec, _, err := l.Owner(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, owner3, rec.Owner)
}

func TestPostgresLedger_SelfTransferRecorded(t *testing.T) {
	l := newPostgresLedger(t)

	require.NoError(t, l.RegisterOwnership(ctx, owner1, 3))
	require.NoError(t, l.TransferOwnership(ctx, owner1, 3, owner1, 100))

	assert.Equal(t, uint64(1), count(t, l, 3))
	e, ok, err := l.HistoryEntry(ctx, 3, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, owner1, e.PreviousOwner)
	assert.Equal(t, owner1, e.NewOwner)
}
