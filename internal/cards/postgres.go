package cards

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmerrifield20/cardledger/internal/admin"
	"github.com/jmerrifield20/cardledger/internal/principal"
	"go.uber.org/zap"
)

const counterName = "cards"

// PostgresRegistry persists cards to PostgreSQL. It implements Registry.
type PostgresRegistry struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresRegistry creates a PostgresRegistry backed by the given pool.
// Call Bootstrap once before use.
func NewPostgresRegistry(pool *pgxpool.Pool, logger *zap.Logger) *PostgresRegistry {
	return &PostgresRegistry{pool: pool, logger: logger}
}

// Bootstrap seeds the id allocator and the admin row if they do not exist yet.
func (r *PostgresRegistry) Bootstrap(ctx context.Context, bootstrapAdmin principal.Principal) error {
	if err := admin.Bootstrap(ctx, r.pool, admin.ComponentCards, bootstrapAdmin); err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx,
		`INSERT INTO registry_counters (name, next_value) VALUES ($1, 1)
		 ON CONFLICT (name) DO NOTHING`, counterName,
	); err != nil {
		return fmt.Errorf("bootstrap card id allocator: %w", err)
	}
	return nil
}

// Register implements Registry.
// The allocator row is locked for the whole transaction, so ids are handed
// out strictly in commit order.
func (r *PostgresRegistry) Register(ctx context.Context, caller principal.Principal, in CardInput) (uint64, error) {
	if !caller.Valid() {
		return 0, principal.ErrInvalid
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var next int64
	if err := tx.QueryRow(ctx,
		`SELECT next_value FROM registry_counters WHERE name = $1 FOR UPDATE`, counterName,
	).Scan(&next); err != nil {
		return 0, fmt.Errorf("read card id allocator: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO cards (id, name, series, manufacturer, rarity, issue_date, registered_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		next, in.Name, in.Series, in.Manufacturer, in.Rarity, int64(in.IssueDate), string(caller),
	)
	if err != nil {
		return 0, fmt.Errorf("insert card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrCardExists
	}

	if _, err := tx.Exec(ctx,
		`UPDATE registry_counters SET next_value = $2 WHERE name = $1`, counterName, next+1,
	); err != nil {
		return 0, fmt.Errorf("advance card id allocator: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit card tx: %w", err)
	}

	r.logger.Debug("card registered",
		zap.Int64("card_id", next),
		zap.String("registered_by", string(caller)),
	)
	return uint64(next), nil
}

// Get implements Registry.
func (r *PostgresRegistry) Get(ctx context.Context, id uint64) (Card, bool, error) {
	var (
		c         Card
		rawID     int64
		issueDate int64
		by        string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, series, manufacturer, rarity, issue_date, registered_by
		 FROM cards WHERE id = $1`, int64(id),
	).Scan(&rawID, &c.Name, &c.Series, &c.Manufacturer, &c.Rarity, &issueDate, &by)
	if errors.Is(err, pgx.ErrNoRows) {
		return Card{}, false, nil
	}
	if err != nil {
		return Card{}, false, fmt.Errorf("get card %d: %w", id, err)
	}
	c.ID = uint64(rawID)
	c.IssueDate = uint64(issueDate)
	c.RegisteredBy = principal.Principal(by)
	return c, true, nil
}

// TransferAdmin implements Registry.
func (r *PostgresRegistry) TransferAdmin(ctx context.Context, caller, newAdmin principal.Principal) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := admin.TransferTx(ctx, tx, admin.ComponentCards, caller, newAdmin); err != nil {
		if errors.Is(err, admin.ErrNotAdmin) {
			return ErrNotAuthorized
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit admin transfer: %w", err)
	}

	r.logger.Info("card registry admin transferred",
		zap.String("from", string(caller)),
		zap.String("to", string(newAdmin)),
	)
	return nil
}

// Admin implements Registry.
func (r *PostgresRegistry) Admin(ctx context.Context) (principal.Principal, error) {
	return admin.Current(ctx, r.pool, admin.ComponentCards)
}
