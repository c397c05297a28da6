package engine

import (
	"context"

	dashboardCommon "github.com/iulianpascalau/load-dashboard/services/dashboard/common"
	"github.com/iulianpascalau/load-dashboard/services/importer/common"
)

// FileReader defines the interface for loading the raw table of a result file
type FileReader interface {
	ReadTable(filePath string, sheet string) (*common.Table, error)
	IsInterfaceNil() bool
}

// MeasurementsBuilder defines the interface for turning a raw table into clean measurements
type MeasurementsBuilder interface {
	BuildMeasurements(table *common.Table) ([]dashboardCommon.Measurement, common.RowStats, error)
	IsInterfaceNil() bool
}

// Reporter defines the interface for submitting an import batch to the run registry
type Reporter interface {
	// Submit stores the batch and returns the id assigned to the new run
	Submit(ctx context.Context, batch dashboardCommon.ImportBatch) (int64, error)
	IsInterfaceNil() bool
}
