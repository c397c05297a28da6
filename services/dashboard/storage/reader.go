package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iulianpascalau/load-dashboard/services/dashboard/common"
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const runColumnsList = `id, run_name, run_ts, source_file, notes, is_baseline, is_excluded,
	release_name, environment, commit_sha, test_type, sla_avg_ms, sla_max_ms, regression_pct`

const measurementColumnsList = `run_id, users_load, endpoint_name, avg_ms, min_ms, max_ms`

// measurementsOrder keeps duplicate (endpoint, load) pairs in insertion order
const measurementsOrder = ` ORDER BY users_load ASC, endpoint_name ASC, rowid ASC`

// runReader serves the read queries either straight from the database or from a snapshot transaction
type runReader struct {
	q queryer
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(scanner rowScanner) (common.Run, error) {
	var run common.Run
	var runTS string
	var notes, release, environment, commit, testType sql.NullString
	var slaAvg, slaMax, regressionPct sql.NullFloat64

	err := scanner.Scan(
		&run.ID, &run.RunName, &runTS, &run.SourceFile, &notes, &run.IsBaseline, &run.IsExcluded,
		&release, &environment, &commit, &testType, &slaAvg, &slaMax, &regressionPct,
	)
	if err != nil {
		return common.Run{}, err
	}

	run.RunTS, err = parseRunTimestamp(runTS)
	if err != nil {
		return common.Run{}, fmt.Errorf("run %d: %w", run.ID, err)
	}

	run.Notes = nullableString(notes)
	run.ReleaseName = nullableString(release)
	run.Environment = nullableString(environment)
	run.CommitSHA = nullableString(commit)
	run.TestType = nullableString(testType)
	run.SLAAvgMs = nullableFloat(slaAvg)
	run.SLAMaxMs = nullableFloat(slaMax)
	run.RegressionPct = nullableFloat(regressionPct)

	return run, nil
}

func formatRunTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}

func parseRunTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid run timestamp %q: %w", value, err)
	}

	return ts.UTC(), nil
}

func nullableString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}

	s := value.String
	return &s
}

func nullableFloat(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}

	f := value.Float64
	return &f
}

func (r *runReader) queryRuns(ctx context.Context, query string, args ...interface{}) ([]common.Run, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("runs query failed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	runs := make([]common.Run, 0)
	for rows.Next() {
		run, errScan := scanRun(rows)
		if errScan != nil {
			return nil, errScan
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// ListRuns returns all runs, newest first
func (r *runReader) ListRuns(ctx context.Context) ([]common.Run, error) {
	return r.queryRuns(ctx, "SELECT "+runColumnsList+" FROM runs ORDER BY datetime(run_ts) DESC, id DESC")
}

// GetRun returns the run with the provided id
func (r *runReader) GetRun(ctx context.Context, runID int64) (*common.Run, error) {
	row := r.q.QueryRowContext(ctx, "SELECT "+runColumnsList+" FROM runs WHERE id = ?", runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %d", common.ErrNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	return &run, nil
}

// GetRuns returns the existing runs among the provided ids
func (r *runReader) GetRuns(ctx context.Context, runIDs []int64) (map[int64]common.Run, error) {
	result := make(map[int64]common.Run, len(runIDs))
	if len(runIDs) == 0 {
		return result, nil
	}

	placeholders, args := inClause(runIDs)
	runs, err := r.queryRuns(ctx, "SELECT "+runColumnsList+" FROM runs WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}

	for _, run := range runs {
		result[run.ID] = run
	}

	return result, nil
}

// GetBaseline returns the current baseline or nil
func (r *runReader) GetBaseline(ctx context.Context) (*common.Run, error) {
	runs, err := r.queryRuns(ctx, "SELECT "+runColumnsList+" FROM runs WHERE is_baseline = 1 ORDER BY id LIMIT 1")
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}

	return &runs[0], nil
}

// GetMeasurements returns the filtered measurements of one run
func (r *runReader) GetMeasurements(ctx context.Context, runID int64, filter common.MeasurementFilter) ([]common.Measurement, error) {
	return r.GetMeasurementsForRuns(ctx, []int64{runID}, filter)
}

// GetMeasurementsForRuns returns the filtered measurements of several runs
func (r *runReader) GetMeasurementsForRuns(ctx context.Context, runIDs []int64, filter common.MeasurementFilter) ([]common.Measurement, error) {
	if len(runIDs) == 0 {
		return make([]common.Measurement, 0), nil
	}

	placeholders, args := inClause(runIDs)
	query := "SELECT " + measurementColumnsList + " FROM measurements WHERE run_id IN (" + placeholders + ")"
	if filter.UsersLoad != nil {
		query += " AND users_load = ?"
		args = append(args, *filter.UsersLoad)
	}
	if filter.EndpointName != nil && len(*filter.EndpointName) > 0 {
		query += " AND endpoint_name = ?"
		args = append(args, *filter.EndpointName)
	}

	return r.queryMeasurements(ctx, query+measurementsOrder, args...)
}

// GetRunKPI computes the measurement aggregates of a run
func (r *runReader) GetRunKPI(ctx context.Context, runID int64) (common.RunKPI, error) {
	var kpi common.RunKPI
	var avg, minMs, maxMs sql.NullFloat64

	err := r.q.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT endpoint_name),
			COUNT(DISTINCT users_load),
			AVG(avg_ms),
			MIN(min_ms),
			MAX(max_ms)
		FROM measurements
		WHERE run_id = ?
	`, runID).Scan(&kpi.RowsCount, &kpi.EndpointsCount, &kpi.LoadsCount, &avg, &minMs, &maxMs)
	if err != nil {
		return common.RunKPI{}, fmt.Errorf("kpi query failed: %w", err)
	}

	kpi.OverallAvgMs = nullableFloat(avg)
	kpi.OverallMinMs = nullableFloat(minMs)
	kpi.OverallMaxMs = nullableFloat(maxMs)

	return kpi, nil
}

// GetSlowest returns the measurements of a run with the highest average latency
func (r *runReader) GetSlowest(ctx context.Context, runID int64, limit int) ([]common.Measurement, error) {
	return r.queryMeasurements(ctx, "SELECT "+measurementColumnsList+` FROM measurements
		WHERE run_id = ?
		ORDER BY avg_ms DESC, rowid ASC
		LIMIT ?`, runID, limit)
}

func (r *runReader) queryMeasurements(ctx context.Context, query string, args ...interface{}) ([]common.Measurement, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("measurements query failed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	results := make([]common.Measurement, 0)
	for rows.Next() {
		var m common.Measurement
		err = rows.Scan(&m.RunID, &m.UsersLoad, &m.EndpointName, &m.AvgMs, &m.MinMs, &m.MaxMs)
		if err != nil {
			return nil, err
		}
		results = append(results, m)
	}

	return results, rows.Err()
}

func inClause(ids []int64) (string, []interface{}) {
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}
