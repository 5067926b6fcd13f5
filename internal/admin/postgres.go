package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmerrifield20/cardledger/internal/principal"
)

// Component names used as registry_admins keys.
const (
	ComponentCards   = "cards"
	ComponentGrading = "grading"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Bootstrap seeds the admin row for component. An existing row is left
// untouched so a handoff made before a restart is not undone.
func Bootstrap(ctx context.Context, q Querier, component string, p principal.Principal) error {
	if !p.Valid() {
		return ErrInvalidPrincipal
	}
	if _, err := q.Exec(ctx,
		`INSERT INTO registry_admins (component, principal) VALUES ($1, $2)
		 ON CONFLICT (component) DO NOTHING`,
		component, string(p),
	); err != nil {
		return fmt.Errorf("bootstrap %s admin: %w", component, err)
	}
	return nil
}

// Current reads the admin for component without locking.
func Current(ctx context.Context, q Querier, component string) (principal.Principal, error) {
	var holder string
	if err := q.QueryRow(ctx,
		`SELECT principal FROM registry_admins WHERE component = $1`, component,
	).Scan(&holder); err != nil {
		return "", fmt.Errorf("read %s admin: %w", component, err)
	}
	return principal.Principal(holder), nil
}

// LockTx reads the admin for component and holds its row lock until tx ends,
// so a concurrent transfer cannot slip between the check and the mutation.
func LockTx(ctx context.Context, tx pgx.Tx, component string) (principal.Principal, error) {
	var holder string
	err := tx.QueryRow(ctx,
		`SELECT principal FROM registry_admins WHERE component = $1 FOR UPDATE`, component,
	).Scan(&holder)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%s admin not bootstrapped", component)
	}
	if err != nil {
		return "", fmt.Errorf("lock %s admin: %w", component, err)
	}
	return principal.Principal(holder), nil
}

// RequireTx returns ErrNotAdmin unless caller holds component's authority.
func RequireTx(ctx context.Context, tx pgx.Tx, component string, caller principal.Principal) error {
	holder, err := LockTx(ctx, tx, component)
	if err != nil {
		return err
	}
	if !caller.Valid() || caller != holder {
		return ErrNotAdmin
	}
	return nil
}

// TransferTx moves component's authority from caller to newAdmin.
func TransferTx(ctx context.Context, tx pgx.Tx, component string, caller, newAdmin principal.Principal) error {
	if err := RequireTx(ctx, tx, component, caller); err != nil {
		return err
	}
	if !newAdmin.Valid() {
		return ErrInvalidPrincipal
	}
	if _, err := tx.Exec(ctx,
		`UPDATE registry_admins SET principal = $2 WHERE component = $1`,
		component, string(newAdmin),
	); err != nil {
		return fmt.Errorf("transfer %s admin: %w", component, err)
	}
	return nil
}
