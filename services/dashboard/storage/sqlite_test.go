package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/iulianpascalau/load-dashboard/services/dashboard/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(v string) *string {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

func newTestStorage(t *testing.T) *sqliteStorage {
	s, err := NewSQLiteStorage(inMemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func createRun(t *testing.T, s *sqliteStorage, name string, ts time.Time, baseline bool, measurements ...common.Measurement) int64 {
	id, err := s.CreateRun(context.Background(), common.Run{
		RunName:    name,
		RunTS:      ts,
		SourceFile: name + ".xlsx",
		IsBaseline: baseline,
	}, measurements)
	require.NoError(t, err)

	return id
}

func baselineIDs(t *testing.T, s *sqliteStorage) []int64 {
	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)

	ids := make([]int64, 0)
	for _, r := range runs {
		if r.IsBaseline {
			ids = append(ids, r.ID)
		}
	}

	return ids
}

func TestSQLiteStorage_CreateAndGetRun(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	require.False(t, s.IsInterfaceNil())
	ctx := context.Background()

	ts := time.Date(2026, 1, 21, 22, 15, 0, 0, time.FixedZone("EET", 2*3600))
	rows := []common.Measurement{
		{UsersLoad: 50, EndpointName: "search", AvgMs: 120.5, MinMs: 30, MaxMs: 900},
		{UsersLoad: 10, EndpointName: "login", AvgMs: 80, MinMs: 20.25, MaxMs: 300},
		{UsersLoad: 10, EndpointName: "home", AvgMs: 40, MinMs: 10, MaxMs: 100},
	}
	id, err := s.CreateRun(ctx, common.Run{
		RunName:       "2026-01-21_Nightly",
		RunTS:         ts,
		SourceFile:    "nightly.xlsx",
		Notes:         strPtr("first run"),
		ReleaseName:   strPtr("R1-2026.01"),
		Environment:   strPtr("Perf"),
		CommitSHA:     strPtr("abc123"),
		TestType:      strPtr("Load"),
		SLAAvgMs:      floatPtr(100),
		SLAMaxMs:      floatPtr(800),
		RegressionPct: floatPtr(12.5),
	}, rows)
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	run, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-21_Nightly", run.RunName)
	assert.True(t, run.RunTS.Equal(ts))
	assert.Equal(t, time.UTC, run.RunTS.Location())
	assert.Equal(t, "2026-01-21 20:15 UTC", run.DisplayTime())
	assert.Equal(t, "nightly.xlsx", run.SourceFile)
	assert.Equal(t, "first run", *run.Notes)
	assert.Equal(t, "R1-2026.01", *run.ReleaseName)
	assert.Equal(t, "Perf", *run.Environment)
	assert.Equal(t, "abc123", *run.CommitSHA)
	assert.Equal(t, "Load", *run.TestType)
	assert.Equal(t, 100.0, *run.SLAAvgMs)
	assert.Equal(t, 800.0, *run.SLAMaxMs)
	assert.Equal(t, 12.5, *run.RegressionPct)
	assert.False(t, run.IsBaseline)
	assert.False(t, run.IsExcluded)

	measurements, err := s.GetMeasurements(ctx, id, common.MeasurementFilter{})
	require.NoError(t, err)
	require.Len(t, measurements, len(rows))
	// ordered by (load, endpoint)
	assert.Equal(t, "home", measurements[0].EndpointName)
	assert.Equal(t, "login", measurements[1].EndpointName)
	assert.Equal(t, "search", measurements[2].EndpointName)
	assert.Equal(t, common.Measurement{RunID: id, UsersLoad: 10, EndpointName: "login", AvgMs: 80, MinMs: 20.25, MaxMs: 300}, measurements[1])

	_, err = s.GetRun(ctx, id+100)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStorage_OptionalFieldsStayNull(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	id := createRun(t, s, "bare", time.Now(), false)

	run, err := s.GetRun(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, run.Notes)
	assert.Nil(t, run.ReleaseName)
	assert.Nil(t, run.SLAAvgMs)
	assert.Nil(t, run.SLAMaxMs)
	assert.Nil(t, run.RegressionPct)
}

func TestSQLiteStorage_ListRunsOrder(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	older := createRun(t, s, "older", base, false)
	newest := createRun(t, s, "newest", base.Add(48*time.Hour), false)
	middle := createRun(t, s, "middle", base.Add(24*time.Hour), false)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, newest, runs[0].ID)
	assert.Equal(t, middle, runs[1].ID)
	assert.Equal(t, older, runs[2].ID)
}

func TestSQLiteStorage_MeasurementFilters(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()
	first := createRun(t, s, "first", time.Now(), false,
		common.Measurement{UsersLoad: 10, EndpointName: "login", AvgMs: 1},
		common.Measurement{UsersLoad: 20, EndpointName: "login", AvgMs: 2},
		common.Measurement{UsersLoad: 20, EndpointName: "search", AvgMs: 3},
	)
	second := createRun(t, s, "second", time.Now(), false,
		common.Measurement{UsersLoad: 20, EndpointName: "login", AvgMs: 4},
	)

	load := 20
	endpoint := "login"

	byLoad, err := s.GetMeasurements(ctx, first, common.MeasurementFilter{UsersLoad: &load})
	require.NoError(t, err)
	assert.Len(t, byLoad, 2)

	byBoth, err := s.GetMeasurements(ctx, first, common.MeasurementFilter{UsersLoad: &load, EndpointName: &endpoint})
	require.NoError(t, err)
	require.Len(t, byBoth, 1)
	assert.Equal(t, 2.0, byBoth[0].AvgMs)

	acrossRuns, err := s.GetMeasurementsForRuns(ctx, []int64{first, second}, common.MeasurementFilter{EndpointName: &endpoint})
	require.NoError(t, err)
	assert.Len(t, acrossRuns, 3)

	none, err := s.GetMeasurements(ctx, second+10, common.MeasurementFilter{})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSQLiteStorage_DuplicatePairsKeepInsertionOrder(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	id := createRun(t, s, "dups", time.Now(), false,
		common.Measurement{UsersLoad: 10, EndpointName: "login", AvgMs: 30},
		common.Measurement{UsersLoad: 10, EndpointName: "login", AvgMs: 10},
		common.Measurement{UsersLoad: 10, EndpointName: "login", AvgMs: 20},
	)

	rows, err := s.GetMeasurements(context.Background(), id, common.MeasurementFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 30.0, rows[0].AvgMs)
	assert.Equal(t, 10.0, rows[1].AvgMs)
	assert.Equal(t, 20.0, rows[2].AvgMs)
}

func TestSQLiteStorage_KPIAndSlowest(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()

	rows := make([]common.Measurement, 0)
	for i := 1; i <= 12; i++ {
		rows = append(rows, common.Measurement{
			UsersLoad:    10 * (i%3 + 1),
			EndpointName: []string{"a", "b", "c", "d"}[i%4],
			AvgMs:        float64(i * 10),
			MinMs:        float64(i),
			MaxMs:        float64(i * 100),
		})
	}
	id := createRun(t, s, "kpi", time.Now(), false, rows...)

	kpi, err := s.GetRunKPI(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 12, kpi.RowsCount)
	assert.Equal(t, 4, kpi.EndpointsCount)
	assert.Equal(t, 3, kpi.LoadsCount)
	assert.InDelta(t, 65.0, *kpi.OverallAvgMs, 1e-9)
	assert.Equal(t, 1.0, *kpi.OverallMinMs)
	assert.Equal(t, 1200.0, *kpi.OverallMaxMs)

	slowest, err := s.GetSlowest(ctx, id, 10)
	require.NoError(t, err)
	require.Len(t, slowest, 10)
	assert.Equal(t, 120.0, slowest[0].AvgMs)
	assert.Equal(t, 30.0, slowest[9].AvgMs)

	empty := createRun(t, s, "empty", time.Now(), false)
	kpi, err = s.GetRunKPI(ctx, empty)
	require.NoError(t, err)
	assert.Equal(t, 0, kpi.RowsCount)
	assert.Nil(t, kpi.OverallAvgMs)
	assert.Nil(t, kpi.OverallMinMs)
	assert.Nil(t, kpi.OverallMaxMs)
}

func TestSQLiteStorage_PromoteBaseline(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()
	first := createRun(t, s, "first", time.Now(), true)
	second := createRun(t, s, "second", time.Now(), false)
	third := createRun(t, s, "third", time.Now(), false)

	assert.Equal(t, []int64{first}, baselineIDs(t, s))

	for _, id := range []int64{second, third, third, first, second} {
		require.NoError(t, s.PromoteBaseline(ctx, id))
		assert.Equal(t, []int64{id}, baselineIDs(t, s))
	}

	baseline, err := s.GetBaseline(ctx)
	require.NoError(t, err)
	require.NotNil(t, baseline)
	assert.Equal(t, second, baseline.ID)

	err = s.PromoteBaseline(ctx, third+100)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, []int64{second}, baselineIDs(t, s))
}

func TestSQLiteStorage_CreateBaselineRunDemotesOthers(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	createRun(t, s, "first", time.Now(), true)
	second := createRun(t, s, "second", time.Now(), true)

	assert.Equal(t, []int64{second}, baselineIDs(t, s))
}

func TestSQLiteStorage_NoBaseline(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	createRun(t, s, "first", time.Now(), false)

	baseline, err := s.GetBaseline(context.Background())
	require.NoError(t, err)
	assert.Nil(t, baseline)
}

func TestSQLiteStorage_ExcludeInclude(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()
	baseline := createRun(t, s, "baseline", time.Now(), true)
	other := createRun(t, s, "other", time.Now(), false)

	t.Run("excluding the baseline should fail without changes", func(t *testing.T) {
		err := s.SetExcluded(ctx, baseline, true)
		assert.ErrorIs(t, err, common.ErrInvalidState)

		run, errGet := s.GetRun(ctx, baseline)
		require.NoError(t, errGet)
		assert.False(t, run.IsExcluded)
		assert.True(t, run.IsBaseline)
	})
	t.Run("including the baseline should work", func(t *testing.T) {
		assert.NoError(t, s.SetExcluded(ctx, baseline, false))
	})
	t.Run("exclude and include a regular run should work", func(t *testing.T) {
		require.NoError(t, s.SetExcluded(ctx, other, true))
		run, err := s.GetRun(ctx, other)
		require.NoError(t, err)
		assert.True(t, run.IsExcluded)

		require.NoError(t, s.SetExcluded(ctx, other, false))
		run, err = s.GetRun(ctx, other)
		require.NoError(t, err)
		assert.False(t, run.IsExcluded)
	})
	t.Run("missing run should error", func(t *testing.T) {
		assert.ErrorIs(t, s.SetExcluded(ctx, other+100, true), common.ErrNotFound)
		assert.ErrorIs(t, s.SetExcluded(ctx, other+100, false), common.ErrNotFound)
	})
}

func TestSQLiteStorage_DeleteRun(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()
	baseline := createRun(t, s, "baseline", time.Now(), true,
		common.Measurement{UsersLoad: 10, EndpointName: "login", AvgMs: 1},
	)
	other := createRun(t, s, "other", time.Now(), false,
		common.Measurement{UsersLoad: 10, EndpointName: "login", AvgMs: 2},
		common.Measurement{UsersLoad: 20, EndpointName: "login", AvgMs: 3},
	)

	err := s.DeleteRun(ctx, baseline)
	assert.ErrorIs(t, err, common.ErrInvalidState)
	_, err = s.GetRun(ctx, baseline)
	assert.NoError(t, err)

	require.NoError(t, s.DeleteRun(ctx, other))
	_, err = s.GetRun(ctx, other)
	assert.ErrorIs(t, err, common.ErrNotFound)

	var remaining int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM measurements WHERE run_id = ?", other).Scan(&remaining)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)

	err = s.DeleteRun(ctx, other)
	assert.ErrorIs(t, err, common.ErrNotFound)

	rows, err := s.GetMeasurements(ctx, baseline, common.MeasurementFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSQLiteStorage_UpdateThresholds(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()
	id := createRun(t, s, "run", time.Now(), false)

	err := s.UpdateThresholds(ctx, id, common.Thresholds{SLAAvgMs: floatPtr(150), RegressionPct: floatPtr(7.5)})
	require.NoError(t, err)

	run, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 150.0, *run.SLAAvgMs)
	assert.Nil(t, run.SLAMaxMs)
	assert.Equal(t, 7.5, *run.RegressionPct)

	require.NoError(t, s.UpdateThresholds(ctx, id, common.Thresholds{}))
	run, err = s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, run.SLAAvgMs)
	assert.Nil(t, run.RegressionPct)

	assert.ErrorIs(t, s.UpdateThresholds(ctx, id+1, common.Thresholds{}), common.ErrNotFound)
}

func TestSQLiteStorage_View(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t)
	ctx := context.Background()
	id := createRun(t, s, "run", time.Now(), true,
		common.Measurement{UsersLoad: 10, EndpointName: "login", AvgMs: 1},
	)

	err := s.View(ctx, func(reader common.RunReader) error {
		run, err := reader.GetRun(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "run", run.RunName)

		baseline, err := reader.GetBaseline(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, baseline.ID)

		runs, err := reader.GetRuns(ctx, []int64{id, id + 1})
		require.NoError(t, err)
		assert.Len(t, runs, 1)

		return nil
	})
	require.NoError(t, err)

	expectedErr := errors.New("handler error")
	err = s.View(ctx, func(reader common.RunReader) error {
		return expectedErr
	})
	assert.Equal(t, expectedErr, err)

	// the connection is released after the snapshot ends
	_, err = s.GetRun(ctx, id)
	assert.NoError(t, err)
}

func TestSQLiteStorage_ReopenKeepsData(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "nested", "runs.db")
	s, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)

	id, err := s.CreateRun(context.Background(), common.Run{RunName: "persisted", RunTS: time.Now()},
		[]common.Measurement{{UsersLoad: 1, EndpointName: "a", AvgMs: 1, MinMs: 1, MaxMs: 1}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// migrations are not applied twice
	s, err = NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() {
		_ = s.Close()
	}()

	run, err := s.GetRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "persisted", run.RunName)

	var applied int
	err = s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), applied)
}

func TestSQLiteStorage_MigratesLegacyRunsTable(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "legacy.db")
	legacy, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)

	// simulate a database holding only the original columns plus a partially migrated one
	_, err = legacy.db.Exec(`
		DROP TABLE measurements;
		DROP TABLE runs;
		DELETE FROM schema_migrations;
		CREATE TABLE runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_name    TEXT NOT NULL,
			run_ts      TEXT NOT NULL,
			source_file TEXT NOT NULL DEFAULT '',
			notes       TEXT,
			is_baseline INTEGER NOT NULL DEFAULT 0
		);
		INSERT INTO runs (run_name, run_ts, source_file, is_baseline) VALUES ('old', '2025-12-01T10:00:00+00:00', 'old.xlsx', 1);
	`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	s, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() {
		_ = s.Close()
	}()

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "old", runs[0].RunName)
	assert.True(t, runs[0].IsBaseline)
	assert.False(t, runs[0].IsExcluded)
	assert.Equal(t, "2025-12-01 10:00 UTC", runs[0].DisplayTime())
}
