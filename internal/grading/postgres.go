package grading

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

// PostgresRegistry persists the allowlist and grading records to PostgreSQL.
// It implements Registry.
type PostgresRegistry struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresRegistry creates a PostgresRegistry backed by the given pool.
// Call Bootstrap once before use.
func NewPostgresRegistry(pool *pgxpool.Pool, logger *zap.Logger) *PostgresRegistry {
	return &PostgresRegistry{pool: pool, logger: logger}
}

// Bootstrap seeds the admin row if it does not exist yet.
func (r *PostgresRegistry) Bootstrap(ctx context.Context, bootstrapAdmin principal.Principal) error {
	return admin.Bootstrap(ctx, r.pool, admin.ComponentGrading, bootstrapAdmin)
}

// withAdmin runs fn in a transaction that holds the admin row lock and has
// already verified caller.
func (r *PostgresRegistry) withAdmin(ctx context.Context, caller principal.Principal, fn func(pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := admin.RequireTx(ctx, tx, admin.ComponentGrading, caller); err != nil {
		if errors.Is(err, admin.ErrNotAdmin) {
			return ErrNotAuthorized
		}
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// AddGrader implements Registry.
func (r *PostgresRegistry) AddGrader(ctx context.Context, caller, grader principal.Principal) error {
	err := r.withAdmin(ctx, caller, func(tx pgx.Tx) error {
		if !grader.Valid() {
			return principal.ErrInvalid
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO graders (principal) VALUES ($1) ON CONFLICT (principal) DO NOTHING`,
			string(grader),
		); err != nil {
			return fmt.Errorf("insert grader: %w", err)
		}
		return nil
	})
	if err == nil {
		r.logger.Info("grader added", zap.String("grader", string(grader)))
	}
	return err
}

// RemoveGrader implements Registry.
func (r *PostgresRegistry) RemoveGrader(ctx context.Context, caller, grader principal.Principal) error {
	err := r.withAdmin(ctx, caller, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM graders WHERE principal = $1`, string(grader)); err != nil {
			return fmt.Errorf("delete grader: %w", err)
		}
		return nil
	})
	if err == nil {
		r.logger.Info("grader removed", zap.String("grader", string(grader)))
	}
	return err
}

// IsVerifiedGrader implements Registry.
func (r *PostgresRegistry) IsVerifiedGrader(ctx context.Context, grader principal.Principal) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM graders WHERE principal = $1)`, string(grader),
	).Scan(&ok); err != nil {
		return false, fmt.Errorf("check grader: %w", err)
	}
	return ok, nil
}

// Graders implements Registry.
func (r *PostgresRegistry) Graders(ctx context.Context) ([]principal.Principal, error) {
	rows, err := r.pool.Query(ctx, `SELECT principal FROM graders ORDER BY principal ASC`)
	if err != nil {
		return nil, fmt.Errorf("list graders: %w", err)
	}
	defer rows.Close()

	out := []principal.Principal{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan grader: %w", err)
		}
		out = append(out, principal.Principal(p))
	}
	return out, rows.Err()
}

// GradeCard implements Registry.
// The grader row is share-locked so a concurrent RemoveGrader cannot commit
// between the allowlist check and the insert.
func (r *PostgresRegistry) GradeCard(ctx context.Context, caller principal.Principal, cardID uint64, grade uint32, notes string, now uint64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var found string
	err = tx.QueryRow(ctx,
		`SELECT principal FROM graders WHERE principal = $1 FOR SHARE`, string(caller),
	).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotVerifiedGrader
	}
	if err != nil {
		return fmt.Errorf("check grader: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO gradings (card_id, grade, grader, grading_date, notes)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (card_id) DO NOTHING`,
		int64(cardID), int64(grade), string(caller), int64(now), notes,
	)
	if err != nil {
		return fmt.Errorf("insert grading: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyGraded
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit grading tx: %w", err)
	}

	r.logger.Debug("card graded",
		zap.Uint64("card_id", cardID),
		zap.Uint32("grade", grade),
		zap.String("grader", string(caller)),
	)
	return nil
}

// GetGrading implements Registry.
func (r *PostgresRegistry) GetGrading(ctx context.Context, cardID uint64) (Record, bool, error) {
	var (
		grade, date int64
		grader      string
		notes       string
	)
	err := r.pool.QueryRow(ctx,
		`SELECT grade, grader, grading_date, notes FROM gradings WHERE card_id = $1`, int64(cardID),
	).Scan(&grade, &grader, &date, &notes)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get grading %d: %w", cardID, err)
	}
	return Record{
		CardID:      cardID,
		Grade:       uint32(grade),
		Grader:      principal.Principal(grader),
		GradingDate: uint64(date),
		Notes:       notes,
	}, true, nil
}

// TransferAdmin implements Registry.
func (r *PostgresRegistry) TransferAdmin(ctx context.Context, caller, newAdmin principal.Principal) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := admin.TransferTx(ctx, tx, admin.ComponentGrading, caller, newAdmin); err != nil {
		if errors.Is(err, admin.ErrNotAdmin) {
			return ErrNotAuthorized
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit admin transfer: %w", err)
	}

	r.logger.Info("grading registry admin transferred",
		zap.String("from", string(caller)),
		zap.String("to", string(newAdmin)),
	)
	return nil
}

// Admin implements Registry.
func (r *PostgresRegistry) Admin(ctx context.Context) (principal.Principal, error) {
	return admin.Current(ctx, r.pool, admin.ComponentGrading)
}
