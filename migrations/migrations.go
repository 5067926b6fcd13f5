// Package migrations embeds the SQL schema and applies it.
//
// Applied versions are tracked in a schema_migrations table with the same
// layout as golang-migrate (bigint version + dirty flag), so the two tools are
// interchangeable.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed *.sql
var files embed.FS

// Result reports what Apply did.
type Result struct {
	Applied []string
	Skipped []string
}

// Apply runs every embedded migration that is not yet recorded as clean.
// logf, if non-nil, receives one line per file.
func Apply(ctx context.Context, db *pgxpool.Pool, logf func(format string, args ...any)) (Result, error) {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	var res Result

	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version bigint NOT NULL,
			dirty   boolean NOT NULL,
			PRIMARY KEY (version)
		)`); err != nil {
		return res, fmt.Errorf("create schema_migrations: %w", err)
	}

	names, err := Files()
	if err != nil {
		return res, err
	}

	for _, f := range names {
		ver, err := versionFromFile(f)
		if err != nil {
			return res, fmt.Errorf("parse version from %s: %w", f, err)
		}

		var exists bool
		if err := db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1 AND dirty = false)`,
			ver,
		).Scan(&exists); err != nil {
			return res, fmt.Errorf("check %s: %w", f, err)
		}
		if exists {
			logf("  skip  %s (already applied)", f)
			res.Skipped = append(res.Skipped, f)
			continue
		}

		sql, err := fs.ReadFile(files, f)
		if err != nil {
			return res, fmt.Errorf("read %s: %w", f, err)
		}

		// Mark dirty=true before applying so a crash is visible.
		if _, err := db.Exec(ctx,
			`INSERT INTO schema_migrations (version, dirty) VALUES ($1, true)
			 ON CONFLICT (version) DO UPDATE SET dirty = true`, ver,
		); err != nil {
			return res, fmt.Errorf("mark dirty %s: %w", f, err)
		}

		if _, err := db.Exec(ctx, string(sql)); err != nil {
			return res, fmt.Errorf("apply %s: %w", f, err)
		}

		if _, err := db.Exec(ctx,
			`UPDATE schema_migrations SET dirty = false WHERE version = $1`, ver,
		); err != nil {
			return res, fmt.Errorf("mark clean %s: %w", f, err)
		}

		logf("  apply %s", f)
		res.Applied = append(res.Applied, f)
	}
	return res, nil
}

// Files returns the embedded up-migrations in version order.
func Files() ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// versionFromFile extracts the leading integer from a migration filename.
// "001_init.up.sql" → 1
func versionFromFile(filename string) (int64, error) {
	prefix, _, ok := strings.Cut(filename, "_")
	if !ok {
		return 0, fmt.Errorf("unexpected filename format")
	}
	return strconv.ParseInt(prefix, 10, 64)
}
