package engine

import (
	"context"

	"github.com/iulianpascalau/load-dashboard/services/dashboard/common"
)

// Storage defines the persistence operations required by the runs engine
type Storage interface {
	common.RunReader

	// View runs the handler against a read-only snapshot of the store
	View(ctx context.Context, handler func(reader common.RunReader) error) error

	// CreateRun inserts a run with all its measurements and returns the new run id
	CreateRun(ctx context.Context, run common.Run, measurements []common.Measurement) (int64, error)

	// PromoteBaseline makes the provided run the only baseline
	PromoteBaseline(ctx context.Context, runID int64) error

	// SetExcluded toggles the excluded flag of a run
	SetExcluded(ctx context.Context, runID int64, excluded bool) error

	// DeleteRun removes a run together with its measurements
	DeleteRun(ctx context.Context, runID int64) error

	// UpdateThresholds replaces the SLA and regression thresholds of a run
	UpdateThresholds(ctx context.Context, runID int64, thresholds common.Thresholds) error

	// Close shuts down the database connection
	Close() error

	IsInterfaceNil() bool
}
