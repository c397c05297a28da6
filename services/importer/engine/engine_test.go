package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	dashboardCommon "github.com/iulianpascalau/load-dashboard/services/dashboard/common"
	"github.com/iulianpascalau/load-dashboard/services/importer/common"
	"github.com/iulianpascalau/load-dashboard/services/importer/testsCommon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createMockArgs() ArgsImportEngine {
	return ArgsImportEngine{
		Reader:   &testsCommon.FileReaderStub{},
		Builder:  &testsCommon.MeasurementsBuilderStub{},
		Reporter: &testsCommon.ReporterStub{},
	}
}

func TestNewImportEngine(t *testing.T) {
	t.Parallel()

	t.Run("nil reader should error", func(t *testing.T) {
		args := createMockArgs()
		args.Reader = nil
		engine, err := NewImportEngine(args)

		assert.Nil(t, engine)
		assert.True(t, engine.IsInterfaceNil())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "nil file reader")
	})
	t.Run("nil builder should error", func(t *testing.T) {
		args := createMockArgs()
		args.Builder = nil
		engine, err := NewImportEngine(args)

		assert.Nil(t, engine)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "nil measurements builder")
	})
	t.Run("nil reporter should error", func(t *testing.T) {
		args := createMockArgs()
		args.Reporter = nil
		engine, err := NewImportEngine(args)

		assert.Nil(t, engine)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "nil reporter")
	})
	t.Run("should work", func(t *testing.T) {
		engine, err := NewImportEngine(createMockArgs())

		assert.NotNil(t, engine)
		assert.False(t, engine.IsInterfaceNil())
		assert.Nil(t, err)
		assert.Equal(t, defaultSubmitTimeout, engine.submitTimeout)
	})
}

func TestImportEngine_Import(t *testing.T) {
	t.Parallel()

	table := &common.Table{Headers: []string{"h"}}
	measurements := []dashboardCommon.Measurement{
		{UsersLoad: 50, EndpointName: "login", AvgMs: 100, MinMs: 50, MaxMs: 200},
	}
	stats := common.RowStats{Total: 3, Empty: 1, Invalid: 1, Valid: 1}
	runTS := time.Date(2026, 1, 21, 12, 0, 0, 0, time.FixedZone("EET", 2*3600))

	var submitted dashboardCommon.ImportBatch
	args := createMockArgs()
	args.SubmitTimeout = time.Second
	args.Reader = &testsCommon.FileReaderStub{
		ReadTableHandler: func(filePath string, sheet string) (*common.Table, error) {
			assert.Equal(t, "/tmp/results/nightly.xlsx", filePath)
			assert.Equal(t, "Summary", sheet)
			return table, nil
		},
	}
	args.Builder = &testsCommon.MeasurementsBuilderStub{
		BuildMeasurementsHandler: func(tbl *common.Table) ([]dashboardCommon.Measurement, common.RowStats, error) {
			assert.True(t, tbl == table)
			return measurements, stats, nil
		},
	}
	args.Reporter = &testsCommon.ReporterStub{
		SubmitHandler: func(ctx context.Context, batch dashboardCommon.ImportBatch) (int64, error) {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			submitted = batch
			return 12, nil
		},
	}

	engine, _ := NewImportEngine(args)
	result, err := engine.Import(context.Background(), common.ImportRequest{
		FilePath: "/tmp/results/nightly.xlsx",
		Sheet:    "Summary",
		Run: dashboardCommon.Run{
			RunName:    "  nightly ",
			RunTS:      runTS,
			IsBaseline: true,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, &common.ImportResult{RunID: 12, Measurements: 1, Stats: stats}, result)
	assert.Equal(t, "nightly", submitted.Run.RunName)
	assert.Equal(t, "nightly.xlsx", submitted.Run.SourceFile)
	assert.Equal(t, time.UTC, submitted.Run.RunTS.Location())
	assert.True(t, runTS.Equal(submitted.Run.RunTS))
	assert.True(t, submitted.Run.IsBaseline)
	assert.Equal(t, measurements, submitted.Measurements)
}

func TestImportEngine_ImportErrors(t *testing.T) {
	t.Parallel()

	expectedErr := errors.New("expected error")
	request := common.ImportRequest{
		FilePath: "results.csv",
		Run:      dashboardCommon.Run{RunName: "run"},
	}

	t.Run("empty run name", func(t *testing.T) {
		args := createMockArgs()
		args.Reader = &testsCommon.FileReaderStub{
			ReadTableHandler: func(filePath string, sheet string) (*common.Table, error) {
				assert.Fail(t, "should not read the file")
				return nil, nil
			},
		}
		engine, _ := NewImportEngine(args)

		result, err := engine.Import(context.Background(), common.ImportRequest{FilePath: "results.csv"})
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "run name is required")
	})
	t.Run("reader fails", func(t *testing.T) {
		args := createMockArgs()
		args.Reader = &testsCommon.FileReaderStub{
			ReadTableHandler: func(filePath string, sheet string) (*common.Table, error) {
				return nil, expectedErr
			},
		}
		engine, _ := NewImportEngine(args)

		result, err := engine.Import(context.Background(), request)
		assert.Nil(t, result)
		assert.Equal(t, expectedErr, err)
	})
	t.Run("builder fails", func(t *testing.T) {
		submitCalled := false
		args := createMockArgs()
		args.Builder = &testsCommon.MeasurementsBuilderStub{
			BuildMeasurementsHandler: func(table *common.Table) ([]dashboardCommon.Measurement, common.RowStats, error) {
				return nil, common.RowStats{}, expectedErr
			},
		}
		args.Reporter = &testsCommon.ReporterStub{
			SubmitHandler: func(ctx context.Context, batch dashboardCommon.ImportBatch) (int64, error) {
				submitCalled = true
				return 1, nil
			},
		}
		engine, _ := NewImportEngine(args)

		result, err := engine.Import(context.Background(), request)
		assert.Nil(t, result)
		assert.Equal(t, expectedErr, err)
		assert.False(t, submitCalled)
	})
	t.Run("reporter fails", func(t *testing.T) {
		args := createMockArgs()
		args.Reporter = &testsCommon.ReporterStub{
			SubmitHandler: func(ctx context.Context, batch dashboardCommon.ImportBatch) (int64, error) {
				return 0, expectedErr
			},
		}
		engine, _ := NewImportEngine(args)

		result, err := engine.Import(context.Background(), request)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, expectedErr))
		assert.Contains(t, err.Error(), `failed to submit run "run"`)
	})
}

func TestParseRunTimestamp(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 8, 15, 30, 999, time.FixedZone("X", -5*3600))

	tests := []struct {
		value    string
		expected time.Time
	}{
		{"", time.Date(2026, 3, 1, 13, 15, 30, 0, time.UTC)},
		{"   ", time.Date(2026, 3, 1, 13, 15, 30, 0, time.UTC)},
		{"2026-01-21T10:30:00Z", time.Date(2026, 1, 21, 10, 30, 0, 0, time.UTC)},
		{"2026-01-21T10:30:00+02:00", time.Date(2026, 1, 21, 8, 30, 0, 0, time.UTC)},
		{"2026-01-21T10:30:00.5Z", time.Date(2026, 1, 21, 10, 30, 0, 500000000, time.UTC)},
		{"2026-01-21T10:30:00", time.Date(2026, 1, 21, 10, 30, 0, 0, time.UTC)},
		{"2026-01-21 10:30:00", time.Date(2026, 1, 21, 10, 30, 0, 0, time.UTC)},
		{"2026-01-21 10:30", time.Date(2026, 1, 21, 10, 30, 0, 0, time.UTC)},
		{"2026-01-21", time.Date(2026, 1, 21, 0, 0, 0, 0, time.UTC)},
		{"2026/01/21 10:30", time.Date(2026, 1, 21, 10, 30, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		ts, err := ParseRunTimestamp(tt.value, now)
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.expected, ts, tt.value)
	}

	_, err := ParseRunTimestamp("yesterday", now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized run timestamp")
}
