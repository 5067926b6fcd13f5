package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// advisoryLockKey serialises concurrent Append calls across ledger instances.
const advisoryLockKey = int64(1_268_903_117)

const selectEntry = `SELECT idx, entry_id, timestamp, height, component, action, actor, subject,
	data_hash, prev_hash, hash FROM ledger_journal`

// PostgresJournal persists the audit chain to PostgreSQL. The genesis row is
// created by the initial migration.
type PostgresJournal struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgres creates a PostgresJournal backed by the given connection pool.
func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) *PostgresJournal {
	return &PostgresJournal{pool: pool, logger: logger}
}

// Append implements Journal.
// It takes a transaction-scoped advisory lock, reads the chain tail, and
// inserts the new entry in the same transaction.
func (j *PostgresJournal) Append(ctx context.Context, rec Record) (*Entry, error) {
	tx, err := j.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", advisoryLockKey); err != nil {
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	var (
		prevIdx  int
		prevHash string
	)
	if err := tx.QueryRow(ctx,
		"SELECT idx, hash FROM ledger_journal ORDER BY idx DESC LIMIT 1",
	).Scan(&prevIdx, &prevHash); err != nil {
		return nil, fmt.Errorf("read journal tail: %w", err)
	}

	entry, err := newEntry(prevIdx, prevHash, rec)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO ledger_journal
		   (idx, entry_id, timestamp, height, component, action, actor, subject, data_hash, prev_hash, hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.Index, entry.ID, entry.Timestamp, int64(entry.Height),
		entry.Component, entry.Action, entry.Actor, entry.Subject,
		entry.DataHash, entry.PrevHash, entry.Hash,
	); err != nil {
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit journal tx: %w", err)
	}

	j.logger.Debug("journal entry appended",
		zap.Int("idx", entry.Index),
		zap.String("action", entry.Action),
		zap.String("subject", entry.Subject),
	)
	return entry, nil
}

func scanEntry(row pgx.Row) (*Entry, error) {
	e := &Entry{}
	var height int64
	if err := row.Scan(
		&e.Index, &e.ID, &e.Timestamp, &height, &e.Component, &e.Action,
		&e.Actor, &e.Subject, &e.DataHash, &e.PrevHash, &e.Hash,
	); err != nil {
		return nil, err
	}
	e.Height = uint64(height)
	e.Timestamp = e.Timestamp.UTC()
	return e, nil
}

// Get implements Journal.
func (j *PostgresJournal) Get(ctx context.Context, index int) (*Entry, error) {
	e, err := scanEntry(j.pool.QueryRow(ctx, selectEntry+" WHERE idx = $1", index))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("index %d: %w", index, ErrEntryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get journal entry %d: %w", index, err)
	}
	return e, nil
}

// Len implements Journal.
func (j *PostgresJournal) Len(ctx context.Context) (int, error) {
	var n int
	if err := j.pool.QueryRow(ctx, "SELECT COUNT(*) FROM ledger_journal").Scan(&n); err != nil {
		return 0, fmt.Errorf("count journal entries: %w", err)
	}
	return n, nil
}

// Verify implements Journal. It streams all rows ordered by idx and validates
// the hash chain. O(n) in journal length.
func (j *PostgresJournal) Verify(ctx context.Context) error {
	rows, err := j.pool.Query(ctx, selectEntry+" ORDER BY idx ASC")
	if err != nil {
		return fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var prev *Entry
	for rows.Next() {
		curr, err := scanEntry(rows)
		if err != nil {
			return fmt.Errorf("scan journal row: %w", err)
		}
		if prev == nil {
			if curr.Hash != GenesisHash {
				return fmt.Errorf("genesis entry has wrong hash: got %q", curr.Hash)
			}
			prev = curr
			continue
		}
		if err := checkLink(prev, curr); err != nil {
			return err
		}
		prev = curr
	}
	return rows.Err()
}

// Root implements Journal.
func (j *PostgresJournal) Root(ctx context.Context) (string, error) {
	var hash string
	if err := j.pool.QueryRow(ctx,
		"SELECT hash FROM ledger_journal ORDER BY idx DESC LIMIT 1",
	).Scan(&hash); err != nil {
		return "", fmt.Errorf("get journal root: %w", err)
	}
	return hash, nil
}

// Query implements Journal.
func (j *PostgresJournal) Query(ctx context.Context, f Filter) ([]*Entry, error) {
	where := []string{"idx > $1"}
	args := []any{f.After}
	for _, c := range []struct{ col, val string }{
		{"component", f.Component},
		{"action", f.Action},
		{"actor", f.Actor},
		{"subject", f.Subject},
	} {
		if c.val == "" {
			continue
		}
		args = append(args, c.val)
		where = append(where, fmt.Sprintf("%s = $%d", c.col, len(args)))
	}
	args = append(args, f.limit())
	q := fmt.Sprintf("%s WHERE %s ORDER BY idx LIMIT $%d", selectEntry, strings.Join(where, " AND "), len(args))

	rows, err := j.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	out := make([]*Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Counts implements Journal.
func (j *PostgresJournal) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := j.pool.Query(ctx,
		`SELECT component, COUNT(*) FROM ledger_journal WHERE idx > 0 GROUP BY component`)
	if err != nil {
		return nil, fmt.Errorf("count journal entries by component: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			component string
			n         int
		)
		if err := rows.Scan(&component, &n); err != nil {
			return nil, fmt.Errorf("scan component count: %w", err)
		}
		counts[component] = n
	}
	return counts, rows.Err()
}
