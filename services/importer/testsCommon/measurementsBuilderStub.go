package testsCommon

import (
	dashboardCommon "github.com/iulianpascalau/load-dashboard/services/dashboard/common"
	"github.com/iulianpascalau/load-dashboard/services/importer/common"
)

// MeasurementsBuilderStub -
type MeasurementsBuilderStub struct {
	BuildMeasurementsHandler func(table *common.Table) ([]dashboardCommon.Measurement, common.RowStats, error)
}

// BuildMeasurements -
func (stub *MeasurementsBuilderStub) BuildMeasurements(table *common.Table) ([]dashboardCommon.Measurement, common.RowStats, error) {
	if stub.BuildMeasurementsHandler != nil {
		return stub.BuildMeasurementsHandler(table)
	}

	return make([]dashboardCommon.Measurement, 0), common.RowStats{}, nil
}

// IsInterfaceNil -
func (stub *MeasurementsBuilderStub) IsInterfaceNil() bool {
	return stub == nil
}
