package testsCommon

import (
	"context"

	dashboardCommon "github.com/iulianpascalau/load-dashboard/services/dashboard/common"
)

// ReporterStub -
type ReporterStub struct {
	SubmitHandler func(ctx context.Context, batch dashboardCommon.ImportBatch) (int64, error)
	CloseHandler  func() error
}

// Submit -
func (stub *ReporterStub) Submit(ctx context.Context, batch dashboardCommon.ImportBatch) (int64, error) {
	if stub.SubmitHandler != nil {
		return stub.SubmitHandler(ctx, batch)
	}

	return 1, nil
}

// Close -
func (stub *ReporterStub) Close() error {
	if stub.CloseHandler != nil {
		return stub.CloseHandler()
	}

	return nil
}

// IsInterfaceNil -
func (stub *ReporterStub) IsInterfaceNil() bool {
	return stub == nil
}
