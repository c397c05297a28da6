package testsCommon

import (
	"context"

	"github.com/iulianpascalau/load-dashboard/services/dashboard/common"
)

// StoreStub -
type StoreStub struct {
	ListRunsHandler               func(ctx context.Context) ([]common.Run, error)
	GetRunHandler                 func(ctx context.Context, runID int64) (*common.Run, error)
	GetRunsHandler                func(ctx context.Context, runIDs []int64) (map[int64]common.Run, error)
	GetBaselineHandler            func(ctx context.Context) (*common.Run, error)
	GetMeasurementsHandler        func(ctx context.Context, runID int64, filter common.MeasurementFilter) ([]common.Measurement, error)
	GetMeasurementsForRunsHandler func(ctx context.Context, runIDs []int64, filter common.MeasurementFilter) ([]common.Measurement, error)
	GetRunKPIHandler              func(ctx context.Context, runID int64) (common.RunKPI, error)
	GetSlowestHandler             func(ctx context.Context, runID int64, limit int) ([]common.Measurement, error)
	ViewHandler                   func(ctx context.Context, handler func(reader common.RunReader) error) error
	CreateRunHandler              func(ctx context.Context, run common.Run, measurements []common.Measurement) (int64, error)
	PromoteBaselineHandler        func(ctx context.Context, runID int64) error
	SetExcludedHandler            func(ctx context.Context, runID int64, excluded bool) error
	DeleteRunHandler              func(ctx context.Context, runID int64) error
	UpdateThresholdsHandler       func(ctx context.Context, runID int64, thresholds common.Thresholds) error
	CloseHandler                  func() error
}

// ListRuns -
func (stub *StoreStub) ListRuns(ctx context.Context) ([]common.Run, error) {
	if stub.ListRunsHandler != nil {
		return stub.ListRunsHandler(ctx)
	}

	return make([]common.Run, 0), nil
}

// GetRun -
func (stub *StoreStub) GetRun(ctx context.Context, runID int64) (*common.Run, error) {
	if stub.GetRunHandler != nil {
		return stub.GetRunHandler(ctx, runID)
	}

	return &common.Run{ID: runID}, nil
}

// GetRuns -
func (stub *StoreStub) GetRuns(ctx context.Context, runIDs []int64) (map[int64]common.Run, error) {
	if stub.GetRunsHandler != nil {
		return stub.GetRunsHandler(ctx, runIDs)
	}

	return make(map[int64]common.Run), nil
}

// GetBaseline -
func (stub *StoreStub) GetBaseline(ctx context.Context) (*common.Run, error) {
	if stub.GetBaselineHandler != nil {
		return stub.GetBaselineHandler(ctx)
	}

	return nil, nil
}

// GetMeasurements -
func (stub *StoreStub) GetMeasurements(ctx context.Context, runID int64, filter common.MeasurementFilter) ([]common.Measurement, error) {
	if stub.GetMeasurementsHandler != nil {
		return stub.GetMeasurementsHandler(ctx, runID, filter)
	}

	return make([]common.Measurement, 0), nil
}

// GetMeasurementsForRuns -
func (stub *StoreStub) GetMeasurementsForRuns(ctx context.Context, runIDs []int64, filter common.MeasurementFilter) ([]common.Measurement, error) {
	if stub.GetMeasurementsForRunsHandler != nil {
		return stub.GetMeasurementsForRunsHandler(ctx, runIDs, filter)
	}

	return make([]common.Measurement, 0), nil
}

// GetRunKPI -
func (stub *StoreStub) GetRunKPI(ctx context.Context, runID int64) (common.RunKPI, error) {
	if stub.GetRunKPIHandler != nil {
		return stub.GetRunKPIHandler(ctx, runID)
	}

	return common.RunKPI{}, nil
}

// GetSlowest -
func (stub *StoreStub) GetSlowest(ctx context.Context, runID int64, limit int) ([]common.Measurement, error) {
	if stub.GetSlowestHandler != nil {
		return stub.GetSlowestHandler(ctx, runID, limit)
	}

	return make([]common.Measurement, 0), nil
}

// View -
func (stub *StoreStub) View(ctx context.Context, handler func(reader common.RunReader) error) error {
	if stub.ViewHandler != nil {
		return stub.ViewHandler(ctx, handler)
	}

	return handler(stub)
}

// CreateRun -
func (stub *StoreStub) CreateRun(ctx context.Context, run common.Run, measurements []common.Measurement) (int64, error) {
	if stub.CreateRunHandler != nil {
		return stub.CreateRunHandler(ctx, run, measurements)
	}

	return 1, nil
}

// PromoteBaseline -
func (stub *StoreStub) PromoteBaseline(ctx context.Context, runID int64) error {
	if stub.PromoteBaselineHandler != nil {
		return stub.PromoteBaselineHandler(ctx, runID)
	}

	return nil
}

// SetExcluded -
func (stub *StoreStub) SetExcluded(ctx context.Context, runID int64, excluded bool) error {
	if stub.SetExcludedHandler != nil {
		return stub.SetExcludedHandler(ctx, runID, excluded)
	}

	return nil
}

// DeleteRun -
func (stub *StoreStub) DeleteRun(ctx context.Context, runID int64) error {
	if stub.DeleteRunHandler != nil {
		return stub.DeleteRunHandler(ctx, runID)
	}

	return nil
}

// UpdateThresholds -
func (stub *StoreStub) UpdateThresholds(ctx context.Context, runID int64, thresholds common.Thresholds) error {
	if stub.UpdateThresholdsHandler != nil {
		return stub.UpdateThresholdsHandler(ctx, runID, thresholds)
	}

	return nil
}

// Close -
func (stub *StoreStub) Close() error {
	if stub.CloseHandler != nil {
		return stub.CloseHandler()
	}

	return nil
}

// IsInterfaceNil -
func (stub *StoreStub) IsInterfaceNil() bool {
	return stub == nil
}
