package reporter

import (
	"context"
	"time"

	dashboardCommon "github.com/iulianpascalau/load-dashboard/services/dashboard/common"
	"github.com/iulianpascalau/load-dashboard/services/dashboard/engine"
	"github.com/iulianpascalau/load-dashboard/services/dashboard/storage"
)

type runImporter interface {
	ImportRun(ctx context.Context, batch dashboardCommon.ImportBatch) (int64, error)
}

type storeReporter struct {
	store    engine.Storage
	importer runImporter
}

// NewStoreReporter creates a reporter that writes import batches straight into the SQLite database
// used by the dashboard. The schema is created or migrated when needed.
func NewStoreReporter(dbPath string) (*storeReporter, error) {
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	runsEngine, err := engine.NewRunsEngine(engine.ArgsRunsEngine{
		Storage:  store,
		TimeFunc: time.Now,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &storeReporter{
		store:    store,
		importer: runsEngine,
	}, nil
}

// Submit validates and stores the batch as a new run
func (r *storeReporter) Submit(ctx context.Context, batch dashboardCommon.ImportBatch) (int64, error) {
	runID, err := r.importer.ImportRun(ctx, batch)
	if err != nil {
		return 0, err
	}

	log.Debug("successfully stored import batch", "run id", runID, "measurements", len(batch.Measurements))

	return runID, nil
}

// Close closes the underlying database
func (r *storeReporter) Close() error {
	return r.store.Close()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (r *storeReporter) IsInterfaceNil() bool {
	return r == nil
}
