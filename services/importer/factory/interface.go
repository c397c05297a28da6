package factory

import (
	"context"

	"github.com/iulianpascalau/load-dashboard/services/importer/common"
	"github.com/iulianpascalau/load-dashboard/services/importer/engine"
)

// Engine defines the importer's operations
type Engine interface {
	Import(ctx context.Context, req common.ImportRequest) (*common.ImportResult, error)
	IsInterfaceNil() bool
}

// ClosableReporter is a reporter holding resources that must be released
type ClosableReporter interface {
	engine.Reporter
	Close() error
}
