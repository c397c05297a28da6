package testsCommon

import (
	"context"

	"github.com/iulianpascalau/load-dashboard/services/dashboard/common"
)

// EngineStub -
type EngineStub struct {
	ListRunsHandler         func(ctx context.Context) ([]common.RunView, error)
	RunDataHandler          func(ctx context.Context, runID int64, filter common.MeasurementFilter) ([]common.Measurement, error)
	RunSummaryHandler       func(ctx context.Context, runID int64) (*common.RunSummary, error)
	ExecSummaryHandler      func(ctx context.Context, runID int64) (*common.ExecSummary, error)
	CompareHandler          func(ctx context.Context, req common.CompareRequest) (*common.CompareResult, error)
	PromoteBaselineHandler  func(ctx context.Context, runID int64) error
	ExcludeHandler          func(ctx context.Context, runID int64) error
	IncludeHandler          func(ctx context.Context, runID int64) error
	DeleteHandler           func(ctx context.Context, runID int64) error
	UpdateThresholdsHandler func(ctx context.Context, runID int64, thresholds common.Thresholds) error
	ImportRunHandler        func(ctx context.Context, batch common.ImportBatch) (int64, error)
}

// ListRuns -
func (stub *EngineStub) ListRuns(ctx context.Context) ([]common.RunView, error) {
	if stub.ListRunsHandler != nil {
		return stub.ListRunsHandler(ctx)
	}

	return make([]common.RunView, 0), nil
}

// RunData -
func (stub *EngineStub) RunData(ctx context.Context, runID int64, filter common.MeasurementFilter) ([]common.Measurement, error) {
	if stub.RunDataHandler != nil {
		return stub.RunDataHandler(ctx, runID, filter)
	}

	return make([]common.Measurement, 0), nil
}

// RunSummary -
func (stub *EngineStub) RunSummary(ctx context.Context, runID int64) (*common.RunSummary, error) {
	if stub.RunSummaryHandler != nil {
		return stub.RunSummaryHandler(ctx, runID)
	}

	return &common.RunSummary{}, nil
}

// ExecSummary -
func (stub *EngineStub) ExecSummary(ctx context.Context, runID int64) (*common.ExecSummary, error) {
	if stub.ExecSummaryHandler != nil {
		return stub.ExecSummaryHandler(ctx, runID)
	}

	return &common.ExecSummary{Status: "GREEN"}, nil
}

// Compare -
func (stub *EngineStub) Compare(ctx context.Context, req common.CompareRequest) (*common.CompareResult, error) {
	if stub.CompareHandler != nil {
		return stub.CompareHandler(ctx, req)
	}

	return &common.CompareResult{}, nil
}

// PromoteBaseline -
func (stub *EngineStub) PromoteBaseline(ctx context.Context, runID int64) error {
	if stub.PromoteBaselineHandler != nil {
		return stub.PromoteBaselineHandler(ctx, runID)
	}

	return nil
}

// Exclude -
func (stub *EngineStub) Exclude(ctx context.Context, runID int64) error {
	if stub.ExcludeHandler != nil {
		return stub.ExcludeHandler(ctx, runID)
	}

	return nil
}

// Include -
func (stub *EngineStub) Include(ctx context.Context, runID int64) error {
	if stub.IncludeHandler != nil {
		return stub.IncludeHandler(ctx, runID)
	}

	return nil
}

// Delete -
func (stub *EngineStub) Delete(ctx context.Context, runID int64) error {
	if stub.DeleteHandler != nil {
		return stub.DeleteHandler(ctx, runID)
	}

	return nil
}

// UpdateThresholds -
func (stub *EngineStub) UpdateThresholds(ctx context.Context, runID int64, thresholds common.Thresholds) error {
	if stub.UpdateThresholdsHandler != nil {
		return stub.UpdateThresholdsHandler(ctx, runID, thresholds)
	}

	return nil
}

// ImportRun -
func (stub *EngineStub) ImportRun(ctx context.Context, batch common.ImportBatch) (int64, error) {
	if stub.ImportRunHandler != nil {
		return stub.ImportRunHandler(ctx, batch)
	}

	return 1, nil
}

// IsInterfaceNil -
func (stub *EngineStub) IsInterfaceNil() bool {
	return stub == nil
}
