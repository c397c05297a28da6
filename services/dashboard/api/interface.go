package api

import (
	"context"

	"github.com/iulianpascalau/load-dashboard/services/dashboard/common"
)

// RunsEngine defines the operations served over HTTP
type RunsEngine interface {
	ListRuns(ctx context.Context) ([]common.RunView, error)
	RunData(ctx context.Context, runID int64, filter common.MeasurementFilter) ([]common.Measurement, error)
	RunSummary(ctx context.Context, runID int64) (*common.RunSummary, error)
	ExecSummary(ctx context.Context, runID int64) (*common.ExecSummary, error)
	Compare(ctx context.Context, req common.CompareRequest) (*common.CompareResult, error)
	PromoteBaseline(ctx context.Context, runID int64) error
	Exclude(ctx context.Context, runID int64) error
	Include(ctx context.Context, runID int64) error
	Delete(ctx context.Context, runID int64) error
	UpdateThresholds(ctx context.Context, runID int64, thresholds common.Thresholds) error
	ImportRun(ctx context.Context, batch common.ImportBatch) (int64, error)
	IsInterfaceNil() bool
}
