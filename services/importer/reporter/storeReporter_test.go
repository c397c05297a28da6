package reporter

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	dashboardCommon "github.com/iulianpascalau/load-dashboard/services/dashboard/common"
	"github.com/iulianpascalau/load-dashboard/services/dashboard/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreReporter_Submit(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "data", "runs.db")
	reporter, err := NewStoreReporter(dbPath)
	require.NoError(t, err)
	assert.False(t, reporter.IsInterfaceNil())

	firstID, err := reporter.Submit(context.Background(), testBatch())
	require.NoError(t, err)
	assert.Greater(t, firstID, int64(0))

	second := testBatch()
	second.Run.RunName = "candidate"
	secondID, err := reporter.Submit(context.Background(), second)
	require.NoError(t, err)
	assert.Greater(t, secondID, firstID)

	require.NoError(t, reporter.Close())

	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() {
		_ = store.Close()
	}()

	run, err := store.GetRun(context.Background(), firstID)
	require.NoError(t, err)
	assert.Equal(t, "nightly", run.RunName)
	assert.Equal(t, "results.xlsx", run.SourceFile)
	assert.True(t, run.IsBaseline)

	measurements, err := store.GetMeasurements(context.Background(), secondID, dashboardCommon.MeasurementFilter{})
	require.NoError(t, err)
	require.Len(t, measurements, 2)
	assert.Equal(t, 120.5, measurements[0].AvgMs)
}

func TestStoreReporter_SubmitInvalidBatch(t *testing.T) {
	t.Parallel()

	reporter, err := NewStoreReporter(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer func() {
		_ = reporter.Close()
	}()

	batch := testBatch()
	batch.Measurements[0].MaxMs = -1

	runID, err := reporter.Submit(context.Background(), batch)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dashboardCommon.ErrInvalidArgument))
	assert.Zero(t, runID)
}
