package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iulianpascalau/load-dashboard/services/dashboard/common"
	_ "github.com/mattn/go-sqlite3"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const inMemoryPath = ":memory:"

var log = logger.GetOrCreate("storage")

// sqliteStorage is the sqlite implementation of the runs store
type sqliteStorage struct {
	runReader
	db *sql.DB
}

// NewSQLiteStorage opens (or creates) the database and brings its schema up to date
func NewSQLiteStorage(dbPath string) (*sqliteStorage, error) {
	err := prepareDirectories(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial empty DB file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// a single connection serializes writers and keeps an in-memory database alive
	db.SetMaxOpenConns(1)

	err = runMigrations(context.Background(), db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Debug("sqlite storage ready", "path", dbPath)

	return &sqliteStorage{
		runReader: runReader{q: db},
		db:        db,
	}, nil
}

func prepareDirectories(dbPath string) error {
	if dbPath == inMemoryPath {
		return nil
	}

	return os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
}

// View runs handler against a read snapshot; every query issued through the provided
// reader observes the same state of the store
func (s *sqliteStorage) View(ctx context.Context, handler func(reader common.RunReader) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return handler(&runReader{q: tx})
}

// CreateRun inserts the run and all its measurements atomically and returns the new run id.
// A run flagged as baseline demotes every other run in the same transaction.
func (s *sqliteStorage) CreateRun(ctx context.Context, run common.Run, measurements []common.Measurement) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if run.IsBaseline {
		_, err = tx.ExecContext(ctx, "UPDATE runs SET is_baseline = 0 WHERE is_baseline = 1")
		if err != nil {
			return 0, fmt.Errorf("failed to clear previous baseline: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (
			run_name, run_ts, source_file, notes, is_baseline, is_excluded,
			release_name, environment, commit_sha, test_type,
			sla_avg_ms, sla_max_ms, regression_pct
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.RunName, formatRunTimestamp(run.RunTS), run.SourceFile, run.Notes, run.IsBaseline, run.IsExcluded,
		run.ReleaseName, run.Environment, run.CommitSHA, run.TestType,
		run.SLAAvgMs, run.SLAMaxMs, run.RegressionPct,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO measurements ("+measurementColumnsList+") VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare measurements insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, m := range measurements {
		_, err = stmt.ExecContext(ctx, runID, m.UsersLoad, m.EndpointName, m.AvgMs, m.MinMs, m.MaxMs)
		if err != nil {
			return 0, fmt.Errorf("failed to insert measurement %s@%d: %w", m.EndpointName, m.UsersLoad, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, err
	}

	return runID, nil
}

// PromoteBaseline makes runID the only baseline run
func (s *sqliteStorage) PromoteBaseline(ctx context.Context, runID int64) error {
	return s.mutateRun(ctx, runID, func(tx *sql.Tx, _ bool) error {
		_, err := tx.ExecContext(ctx, "UPDATE runs SET is_baseline = CASE WHEN id = ? THEN 1 ELSE 0 END", runID)
		return err
	})
}

// SetExcluded toggles the excluded flag. The baseline run can not be excluded.
func (s *sqliteStorage) SetExcluded(ctx context.Context, runID int64, excluded bool) error {
	return s.mutateRun(ctx, runID, func(tx *sql.Tx, isBaseline bool) error {
		if excluded && isBaseline {
			return fmt.Errorf("%w: cannot exclude the baseline run %d, promote another run first", common.ErrInvalidState, runID)
		}

		_, err := tx.ExecContext(ctx, "UPDATE runs SET is_excluded = ? WHERE id = ?", excluded, runID)
		return err
	})
}

// DeleteRun removes a run and, through the foreign key cascade, its measurements. The
// baseline run can not be deleted.
func (s *sqliteStorage) DeleteRun(ctx context.Context, runID int64) error {
	return s.mutateRun(ctx, runID, func(tx *sql.Tx, isBaseline bool) error {
		if isBaseline {
			return fmt.Errorf("%w: cannot delete the baseline run %d, promote another run first", common.ErrInvalidState, runID)
		}

		_, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", runID)
		return err
	})
}

// UpdateThresholds replaces the SLA and regression thresholds of a run
func (s *sqliteStorage) UpdateThresholds(ctx context.Context, runID int64, thresholds common.Thresholds) error {
	return s.mutateRun(ctx, runID, func(tx *sql.Tx, _ bool) error {
		_, err := tx.ExecContext(ctx, "UPDATE runs SET sla_avg_ms = ?, sla_max_ms = ?, regression_pct = ? WHERE id = ?",
			thresholds.SLAAvgMs, thresholds.SLAMaxMs, thresholds.RegressionPct, runID)
		return err
	})
}

// mutateRun loads the run state and calls mutate inside one transaction, so that the guard
// checks and the mutation can not interleave with other writers
func (s *sqliteStorage) mutateRun(ctx context.Context, runID int64, mutate func(tx *sql.Tx, isBaseline bool) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var isBaseline bool
	err = tx.QueryRowContext(ctx, "SELECT is_baseline FROM runs WHERE id = ?", runID).Scan(&isBaseline)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: run %d", common.ErrNotFound, runID)
	}
	if err != nil {
		return err
	}

	err = mutate(tx, isBaseline)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Close closes the database
func (s *sqliteStorage) Close() error {
	return s.db.Close()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *sqliteStorage) IsInterfaceNil() bool {
	return s == nil
}
