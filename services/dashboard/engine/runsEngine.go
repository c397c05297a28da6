package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/iulianpascalau/load-dashboard/services/dashboard/analysis"
	"github.com/iulianpascalau/load-dashboard/services/dashboard/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

// SlowestLimit is the number of slowest measurements returned in a run summary
const SlowestLimit = 10

var log = logger.GetOrCreate("engine")

var errNilStorage = errors.New("nil storage")

// ArgsRunsEngine defines the arguments needed to create a runs engine
type ArgsRunsEngine struct {
	Storage  Storage
	TimeFunc func() time.Time
}

type runsEngine struct {
	storage  Storage
	timeFunc func() time.Time
}

// NewRunsEngine creates the component that serves the registry mutations and the analysis reports
func NewRunsEngine(args ArgsRunsEngine) (*runsEngine, error) {
	if check.IfNil(args.Storage) {
		return nil, errNilStorage
	}

	timeFunc := args.TimeFunc
	if timeFunc == nil {
		timeFunc = time.Now
	}

	return &runsEngine{
		storage:  args.Storage,
		timeFunc: timeFunc,
	}, nil
}

// ListRuns returns all runs, newest first
func (e *runsEngine) ListRuns(ctx context.Context) ([]common.RunView, error) {
	runs, err := e.storage.ListRuns(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]common.RunView, 0, len(runs))
	for _, run := range runs {
		views = append(views, common.NewRunView(run))
	}

	return views, nil
}

// RunData returns the filtered measurements of a run. An unknown run yields an empty list.
func (e *runsEngine) RunData(ctx context.Context, runID int64, filter common.MeasurementFilter) ([]common.Measurement, error) {
	if filter.UsersLoad != nil && *filter.UsersLoad <= 0 {
		return nil, fmt.Errorf("%w: load must be positive", common.ErrInvalidArgument)
	}

	return e.storage.GetMeasurements(ctx, runID, filter)
}

// RunSummary returns the run metadata, its KPI aggregates and the slowest measurements
func (e *runsEngine) RunSummary(ctx context.Context, runID int64) (*common.RunSummary, error) {
	var summary *common.RunSummary
	err := e.storage.View(ctx, func(reader common.RunReader) error {
		run, err := reader.GetRun(ctx, runID)
		if err != nil {
			return err
		}

		kpi, err := reader.GetRunKPI(ctx, runID)
		if err != nil {
			return err
		}

		slowest, err := reader.GetSlowest(ctx, runID, SlowestLimit)
		if err != nil {
			return err
		}

		summary = &common.RunSummary{
			Run:     common.NewRunView(*run),
			KPI:     kpi,
			Slowest: slowest,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// ExecSummary evaluates a run against its SLA thresholds and the current baseline
func (e *runsEngine) ExecSummary(ctx context.Context, runID int64) (*common.ExecSummary, error) {
	var summary common.ExecSummary
	err := e.storage.View(ctx, func(reader common.RunReader) error {
		candidate, err := reader.GetRun(ctx, runID)
		if err != nil {
			return err
		}

		candidateMeasurements, err := reader.GetMeasurements(ctx, runID, common.MeasurementFilter{})
		if err != nil {
			return err
		}

		baseline, err := reader.GetBaseline(ctx)
		if err != nil {
			return err
		}

		var baselineMeasurements []common.Measurement
		if baseline != nil && baseline.ID != candidate.ID {
			baselineMeasurements, err = reader.GetMeasurements(ctx, baseline.ID, common.MeasurementFilter{})
			if err != nil {
				return err
			}
		}

		summary = analysis.BuildExecSummary(*candidate, candidateMeasurements, baseline, baselineMeasurements)

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("exec summary computed", "run id", runID, "status", summary.Status,
		"sla fails", summary.SLAFailCount, "regressions", summary.RegressionsCount)

	return &summary, nil
}

// Compare builds the comparison matrix of up to 4 runs
func (e *runsEngine) Compare(ctx context.Context, req common.CompareRequest) (*common.CompareResult, error) {
	err := analysis.ValidateCompareRequest(req)
	if err != nil {
		return nil, err
	}

	filter := common.MeasurementFilter{
		UsersLoad:    req.UsersLoad,
		EndpointName: req.EndpointName,
	}

	var result common.CompareResult
	err = e.storage.View(ctx, func(reader common.RunReader) error {
		runs, errGet := reader.GetRuns(ctx, req.RunIDs)
		if errGet != nil {
			return errGet
		}

		measurements, errGet := reader.GetMeasurementsForRuns(ctx, req.RunIDs, filter)
		if errGet != nil {
			return errGet
		}

		result = analysis.BuildMatrix(req.RunIDs, runs, measurements)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// PromoteBaseline makes the run the only baseline
func (e *runsEngine) PromoteBaseline(ctx context.Context, runID int64) error {
	err := e.storage.PromoteBaseline(ctx, runID)
	if err != nil {
		return err
	}

	log.Info("baseline promoted", "run id", runID)

	return nil
}

// Exclude marks the run as excluded. The baseline can not be excluded.
func (e *runsEngine) Exclude(ctx context.Context, runID int64) error {
	err := e.storage.SetExcluded(ctx, runID, true)
	if err != nil {
		return err
	}

	log.Info("run excluded", "run id", runID)

	return nil
}

// Include clears the excluded flag of the run
func (e *runsEngine) Include(ctx context.Context, runID int64) error {
	err := e.storage.SetExcluded(ctx, runID, false)
	if err != nil {
		return err
	}

	log.Info("run included", "run id", runID)

	return nil
}

// Delete removes the run and its measurements. The baseline can not be deleted.
func (e *runsEngine) Delete(ctx context.Context, runID int64) error {
	err := e.storage.DeleteRun(ctx, runID)
	if err != nil {
		return err
	}

	log.Info("run deleted", "run id", runID)

	return nil
}

// UpdateThresholds replaces the SLA and regression thresholds of a run; nil values clear them
func (e *runsEngine) UpdateThresholds(ctx context.Context, runID int64, thresholds common.Thresholds) error {
	err := checkThreshold("sla_avg_ms", thresholds.SLAAvgMs)
	if err != nil {
		return err
	}
	err = checkThreshold("sla_max_ms", thresholds.SLAMaxMs)
	if err != nil {
		return err
	}
	err = checkThreshold("regression_pct", thresholds.RegressionPct)
	if err != nil {
		return err
	}

	err = e.storage.UpdateThresholds(ctx, runID, thresholds)
	if err != nil {
		return err
	}

	log.Info("run thresholds updated", "run id", runID)

	return nil
}

// ImportRun validates and stores a new run with its measurements
func (e *runsEngine) ImportRun(ctx context.Context, batch common.ImportBatch) (int64, error) {
	err := ValidateImportBatch(batch)
	if err != nil {
		return 0, err
	}

	run := batch.Run
	run.RunName = strings.TrimSpace(run.RunName)
	if run.RunTS.IsZero() {
		run.RunTS = e.timeFunc()
	}
	run.RunTS = run.RunTS.UTC()
	// a freshly imported run is never excluded
	run.IsExcluded = false

	runID, err := e.storage.CreateRun(ctx, run, batch.Measurements)
	if err != nil {
		return 0, err
	}

	log.Info("run imported", "run id", runID, "name", run.RunName,
		"measurements", len(batch.Measurements), "baseline", run.IsBaseline)

	return runID, nil
}

// ValidateImportBatch checks the run metadata and every measurement of an import batch
func ValidateImportBatch(batch common.ImportBatch) error {
	if len(strings.TrimSpace(batch.Run.RunName)) == 0 {
		return fmt.Errorf("%w: empty run name", common.ErrInvalidArgument)
	}

	err := checkThreshold("sla_avg_ms", batch.Run.SLAAvgMs)
	if err != nil {
		return err
	}
	err = checkThreshold("sla_max_ms", batch.Run.SLAMaxMs)
	if err != nil {
		return err
	}
	err = checkThreshold("regression_pct", batch.Run.RegressionPct)
	if err != nil {
		return err
	}

	for idx, m := range batch.Measurements {
		if m.UsersLoad <= 0 {
			return fmt.Errorf("%w: measurement %d has a non positive users load %d", common.ErrInvalidArgument, idx, m.UsersLoad)
		}
		if len(strings.TrimSpace(m.EndpointName)) == 0 {
			return fmt.Errorf("%w: measurement %d has an empty endpoint name", common.ErrInvalidArgument, idx)
		}
		if !isValidLatency(m.AvgMs) || !isValidLatency(m.MinMs) || !isValidLatency(m.MaxMs) {
			return fmt.Errorf("%w: measurement %d (%s@%d) has an invalid latency", common.ErrInvalidArgument, idx, m.EndpointName, m.UsersLoad)
		}
	}

	return nil
}

func isValidLatency(value float64) bool {
	return value >= 0 && !math.IsInf(value, 0) && !math.IsNaN(value)
}

func checkThreshold(name string, value *float64) error {
	if value == nil {
		return nil
	}
	if !isValidLatency(*value) {
		return fmt.Errorf("%w: %s must be a non negative number", common.ErrInvalidArgument, name)
	}

	return nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *runsEngine) IsInterfaceNil() bool {
	return e == nil
}
