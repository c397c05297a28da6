package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one versioned schema step, applied inside its own transaction
type migration struct {
	version     int
	description string
	apply       func(ctx context.Context, tx *sql.Tx) error
}

var migrations = []migration{
	{version: 1, description: "runs and measurements tables", apply: execStatement(createTables)},
	{version: 2, description: "run metadata and threshold columns", apply: addRunColumns},
	{version: 3, description: "measurement indices", apply: execStatement(createIndices)},
}

const createTables = `
	CREATE TABLE IF NOT EXISTS runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		run_name    TEXT    NOT NULL,
		run_ts      TEXT    NOT NULL,
		source_file TEXT    NOT NULL DEFAULT '',
		notes       TEXT
	);

	CREATE TABLE IF NOT EXISTS measurements (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id        INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		users_load    INTEGER NOT NULL,
		endpoint_name TEXT    NOT NULL,
		avg_ms        REAL    NOT NULL,
		min_ms        REAL    NOT NULL,
		max_ms        REAL    NOT NULL
	);
`

const createIndices = `
	CREATE INDEX IF NOT EXISTS idx_measurements_run_id ON measurements(run_id);
	CREATE INDEX IF NOT EXISTS idx_measurements_run_load_endpoint ON measurements(run_id, users_load, endpoint_name);
	CREATE INDEX IF NOT EXISTS idx_runs_baseline ON runs(is_baseline);
`

// runColumns are added one by one so databases created by earlier releases, which may
// already hold some of them, migrate cleanly
var runColumns = []struct {
	name       string
	definition string
}{
	{"is_baseline", "is_baseline INTEGER NOT NULL DEFAULT 0"},
	{"release_name", "release_name TEXT"},
	{"environment", "environment TEXT"},
	{"commit_sha", "commit_sha TEXT"},
	{"test_type", "test_type TEXT"},
	{"sla_avg_ms", "sla_avg_ms REAL"},
	{"sla_max_ms", "sla_max_ms REAL"},
	{"regression_pct", "regression_pct REAL"},
	{"is_excluded", "is_excluded INTEGER NOT NULL DEFAULT 0"},
}

func execStatement(statement string) func(ctx context.Context, tx *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, statement)
		return err
	}
}

func addRunColumns(ctx context.Context, tx *sql.Tx) error {
	existing, err := tableColumns(ctx, tx, "runs")
	if err != nil {
		return err
	}

	for _, col := range runColumns {
		if existing[col.name] {
			continue
		}

		_, err = tx.ExecContext(ctx, "ALTER TABLE runs ADD COLUMN "+col.definition)
		if err != nil {
			return fmt.Errorf("failed to add column %s: %w", col.name, err)
		}
	}

	return nil
}

func tableColumns(ctx context.Context, tx *sql.Tx, table string) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}

	return cols, rows.Err()
}

// runMigrations applies, in order, every migration not yet recorded in schema_migrations
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		applied, err := isMigrationApplied(ctx, db, m.version)
		if err != nil {
			return err
		}
		if applied {
			log.Trace("migration already applied", "version", m.version)
			continue
		}

		log.Debug("applying migration", "version", m.version, "description", m.description)
		err = applyMigration(ctx, db, m)
		if err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", m.version, err)
		}
	}

	return nil
}

func isMigrationApplied(ctx context.Context, db *sql.DB, version int) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %d: %w", version, err)
	}

	return count > 0, nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	err = m.apply(ctx, tx)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version)
	if err != nil {
		return err
	}

	return tx.Commit()
}
