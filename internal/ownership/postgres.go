package ownership

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmerrifield20/cardledger/internal/principal"
	"go.uber.org/zap"
)

// PostgresLedger persists ownership state to PostgreSQL. It implements Ledger.
//
// The history counter lives on the card_owners row, so locking that row
// serialises every transfer of one card while leaving other cards free.
type PostgresLedger struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresLedger creates a PostgresLedger backed by the given pool.
func NewPostgresLedger(pool *pgxpool.Pool, logger *zap.Logger) *PostgresLedger {
	return &PostgresLedger{pool: pool, logger: logger}
}

// RegisterOwnership implements Ledger.
func (l *PostgresLedger) RegisterOwnership(ctx context.Context, caller principal.Principal, cardID uint64) error {
	if !caller.Valid() {
		return principal.ErrInvalid
	}
	tag, err := l.pool.Exec(ctx,
		`INSERT INTO card_owners (card_id, owner, history_count) VALUES ($1, $2, 0)
		 ON CONFLICT (card_id) DO NOTHING`,
		int64(cardID), string(caller),
	)
	if err != nil {
		return fmt.Errorf("insert owner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyRegistered
	}

	l.logger.Debug("ownership registered",
		zap.Uint64("card_id", cardID),
		zap.String("owner", string(caller)),
	)
	return nil
}

// TransferOwnership implements Ledger.
// It locks the owner row, appends the history entry at the current count,
// then moves the owner and bumps the count, all in a single transaction.
func (l *PostgresLedger) TransferOwnership(ctx context.Context, caller principal.Principal, cardID uint64, newOwner principal.Principal, now uint64) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var (
		owner string
		count int64
	)
	err = tx.QueryRow(ctx,
		`SELECT owner, history_count FROM card_owners WHERE card_id = $1 FOR UPDATE`, int64(cardID),
	).Scan(&owner, &count)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCardNotFound
	}
	if err != nil {
		return fmt.Errorf("lock owner: %w", err)
	}
	if string(caller) != owner {
		return ErrNotOwner
	}
	if !newOwner.Valid() {
		return principal.ErrInvalid
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO ownership_history (card_id, seq, previous_owner, new_owner, transfer_date)
		 VALUES ($1, $2, $3, $4, $5)`,
		int64(cardID), count, owner, string(newOwner), int64(now),
	); err != nil {
		return fmt.Errorf("append history: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE card_owners SET owner = $2, history_count = $3 WHERE card_id = $1`,
		int64(cardID), string(newOwner), count+1,
	); err != nil {
		return fmt.Errorf("update owner: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transfer tx: %w", err)
	}

	l.logger.Debug("ownership transferred",
		zap.Uint64("card_id", cardID),
		zap.Int64("seq", count),
		zap.String("from", owner),
		zap.String("to", string(newOwner)),
	)
	return nil
}

// Owner implements Ledger.
func (l *PostgresLedger) Owner(ctx context.Context, cardID uint64) (OwnerRecord, bool, error) {
	var owner string
	err := l.pool.QueryRow(ctx,
		`SELECT owner FROM card_owners WHERE card_id = $1`, int64(cardID),
	).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return OwnerRecord{}, false, nil
	}
	if err != nil {
		return OwnerRecord{}, false, fmt.Errorf("get owner %d: %w", cardID, err)
	}
	return OwnerRecord{CardID: cardID, Owner: principal.Principal(owner)}, true, nil
}

// HistoryEntry implements Ledger.
func (l *PostgresLedger) HistoryEntry(ctx context.Context, cardID, index uint64) (HistoryEntry, bool, error) {
	var (
		prev, next string
		date       int64
	)
	err := l.pool.QueryRow(ctx,
		`SELECT previous_owner, new_owner, transfer_date
		 FROM ownership_history WHERE card_id = $1 AND seq = $2`,
		int64(cardID), int64(index),
	).Scan(&prev, &next, &date)
	if errors.Is(err, pgx.ErrNoRows) {
		return HistoryEntry{}, false, nil
	}
	if err != nil {
		return HistoryEntry{}, false, fmt.Errorf("get history %d/%d: %w", cardID, index, err)
	}
	return HistoryEntry{
		CardID:        cardID,
		Index:         index,
		PreviousOwner: principal.Principal(prev),
		NewOwner:      principal.Principal(next),
		TransferDate:  uint64(date),
	}, true, nil
}

// HistoryCount implements Ledger.
func (l *PostgresLedger) HistoryCount(ctx context.Context, cardID uint64) (uint64, error) {
	var count int64
	err := l.pool.QueryRow(ctx,
		`SELECT history_count FROM card_owners WHERE card_id = $1`, int64(cardID),
	).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get history count %d: %w", cardID, err)
	}
	return uint64(count), nil
}

// History implements Ledger.
func (l *PostgresLedger) History(ctx context.Context, cardID uint64) ([]HistoryEntry, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT seq, previous_owner, new_owner, transfer_date
		 FROM ownership_history WHERE card_id = $1 ORDER BY seq ASC`, int64(cardID),
	)
	if err != nil {
		return nil, fmt.Errorf("query history %d: %w", cardID, err)
	}
	defer rows.Close()

	out := []HistoryEntry{}
	for rows.Next() {
		var (
			seq, date  int64
			prev, next string
		)
		if err := rows.Scan(&seq, &prev, &next, &date); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, HistoryEntry{
			CardID:        cardID,
			Index:         uint64(seq),
			PreviousOwner: principal.Principal(prev),
			NewOwner:      principal.Principal(next),
			TransferDate:  uint64(date),
		})
	}
	return out, rows.Err()
}
