package common

import "context"

// RunReader defines the read queries over runs and measurements. Implementations returned
// inside a snapshot serve every query from the same consistent view of the store.
type RunReader interface {
	// ListRuns returns all runs ordered by run timestamp descending
	ListRuns(ctx context.Context) ([]Run, error)

	// GetRun returns the run with the provided id or an error wrapping ErrNotFound
	GetRun(ctx context.Context, runID int64) (*Run, error)

	// GetRuns returns the existing runs among the provided ids, keyed by id
	GetRuns(ctx context.Context, runIDs []int64) (map[int64]Run, error)

	// GetBaseline returns the current baseline run or nil if none is set
	GetBaseline(ctx context.Context) (*Run, error)

	// GetMeasurements returns the filtered measurements of a run ordered by (load, endpoint)
	GetMeasurements(ctx context.Context, runID int64, filter MeasurementFilter) ([]Measurement, error)

	// GetMeasurementsForRuns returns the filtered measurements of several runs
	GetMeasurementsForRuns(ctx context.Context, runIDs []int64, filter MeasurementFilter) ([]Measurement, error)

	// GetRunKPI returns the aggregates over all measurements of a run
	GetRunKPI(ctx context.Context, runID int64) (RunKPI, error)

	// GetSlowest returns at most limit measurements of a run ordered by average latency descending
	GetSlowest(ctx context.Context, runID int64, limit int) ([]Measurement, error)
}
