//go:build integration

package cards_test

import (
	"sync"
	"testing"

	"github.com/jmerrifield20/cardledger/internal/cards"
	"github.com/jmerrifield20/cardledger/internal/pgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPostgresRegistry(t *testing.T) *cards.PostgresRegistry {
	t.Helper()
	r := cards.NewPostgresRegistry(pgtest.Pool(t), zap.NewNop())
	require.NoError(t, r.Bootstrap(ctx, adminP))
	return r
}

func TestPostgresRegistry_RegisterAndGet(t *testing.T) {
	r := newPostgresRegistry(t)

	id, err := r.Register(ctx, adminP, cards.CardInput{Name: "Charizard", Series: "Base Set", IssueDate: 19990109})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	id, err = r.Register(ctx, adminP, cards.CardInput{Name: "Blastoise"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)

	card, ok, err := r.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Charizard", card.Name)
	assert.Equal(t, uint64(19990109), card.IssueDate)
	assert.Equal(t, adminP, card.RegisteredBy)

	_, ok, err = r.Get(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgresRegistry_AnyCallerRegisters(t *testing.T) {
	r := newPostgresRegistry(t)

	id, err := r.Register(ctx, user1, cards.CardInput{Name: "x"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	// An empty caller is rejected without consuming an id.
	_, err = r.Register(ctx, "", cards.CardInput{Name: "y"})
	require.Error(t, err)

	id, err = r.Register(ctx, user2, cards.CardInput{Name: "z"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id)
}

func TestPostgresRegistry_AdminSurvivesBootstrap(t *testing.T) {
	r := newPostgresRegistry(t)

	require.NoError(t, r.TransferAdmin(ctx, adminP, user1))
	require.ErrorIs(t, r.TransferAdmin(ctx, adminP, adminP), cards.ErrNotAuthorized)

	// Re-bootstrapping (as on restart) keeps the handed-off admin.
	require.NoError(t, r.Bootstrap(ctx, adminP))
	got, err := r.Admin(ctx)
	require.NoError(t, err)
	assert.Equal(t, user1, got)
}

func TestPostgresRegistry_ConcurrentRegisterUniqueIDs(t *testing.T) {
	r := newPostgresRegistry(t)

	const n = 20
	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := r.Register(ctx, adminP, cards.CardInput{Name: "c"})
			assert.NoError(t, err)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	for want := uint64(1); want <= n; want++ {
		assert.True(t, seen[want], "missing id %d", want)
	}
}
