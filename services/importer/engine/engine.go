package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iulianpascalau/load-dashboard/services/importer/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("engine")

const defaultSubmitTimeout = 30 * time.Second

// ArgsImportEngine defines the arguments needed to create an import engine
type ArgsImportEngine struct {
	Reader        FileReader
	Builder       MeasurementsBuilder
	Reporter      Reporter
	SubmitTimeout time.Duration
}

// importEngine reads a result file, cleans its rows and submits them as a new run
type importEngine struct {
	reader        FileReader
	builder       MeasurementsBuilder
	reporter      Reporter
	submitTimeout time.Duration
}

// NewImportEngine creates a new engine instance
func NewImportEngine(args ArgsImportEngine) (*importEngine, error) {
	if check.IfNil(args.Reader) {
		return nil, errors.New("nil file reader")
	}
	if check.IfNil(args.Builder) {
		return nil, errors.New("nil measurements builder")
	}
	if check.IfNil(args.Reporter) {
		return nil, errors.New("nil reporter")
	}

	submitTimeout := args.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = defaultSubmitTimeout
	}

	return &importEngine{
		reader:        args.Reader,
		builder:       args.Builder,
		reporter:      args.Reporter,
		submitTimeout: submitTimeout,
	}, nil
}

// Import loads the result file of the request and stores its valid rows as a new run
func (e *importEngine) Import(ctx context.Context, req common.ImportRequest) (*common.ImportResult, error) {
	if len(strings.TrimSpace(req.Run.RunName)) == 0 {
		return nil, errors.New("run name is required")
	}

	table, err := e.reader.ReadTable(req.FilePath, req.Sheet)
	if err != nil {
		return nil, err
	}

	measurements, stats, err := e.builder.BuildMeasurements(table)
	if err != nil {
		return nil, err
	}

	log.Debug("result file cleaned", "file", req.FilePath, "rows", stats.Total,
		"empty", stats.Empty, "invalid", stats.Invalid, "valid", stats.Valid)
	if stats.Invalid > 0 {
		log.Warn("some rows were dropped because they hold unusable values", "dropped", stats.Invalid)
	}

	batch := dashboardBatch(req, measurements)

	submitCtx, cancel := context.WithTimeout(ctx, e.submitTimeout)
	defer cancel()

	runID, err := e.reporter.Submit(submitCtx, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to submit run %q: %w", req.Run.RunName, err)
	}

	return &common.ImportResult{
		RunID:        runID,
		Measurements: len(measurements),
		Stats:        stats,
	}, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *importEngine) IsInterfaceNil() bool {
	return e == nil
}
