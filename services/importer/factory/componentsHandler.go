package factory

import (
	"errors"
	"time"

	"github.com/iulianpascalau/load-dashboard/services/importer/config"
	"github.com/iulianpascalau/load-dashboard/services/importer/engine"
	"github.com/iulianpascalau/load-dashboard/services/importer/reader"
	"github.com/iulianpascalau/load-dashboard/services/importer/reporter"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("factory")

type componentsHandler struct {
	reader   engine.FileReader
	builder  engine.MeasurementsBuilder
	reporter ClosableReporter
	engine   Engine
}

// NewComponentsHandler creates a new components handler. A database path selects the direct
// SQLite sink, otherwise the batch is posted to the report endpoint.
func NewComponentsHandler(cfg config.Config) (*componentsHandler, error) {
	rep, err := createReporter(cfg)
	if err != nil {
		return nil, err
	}

	fileReader := reader.NewFileReader(reader.ArgsFileReader{
		JSONRowsPath: cfg.JSONRowsPath,
	})
	normalizer := reader.NewColumnNormalizer(cfg.HeaderAliases)

	eng, err := engine.NewImportEngine(engine.ArgsImportEngine{
		Reader:        fileReader,
		Builder:       normalizer,
		Reporter:      rep,
		SubmitTimeout: time.Duration(cfg.ReportTimeoutInSeconds) * time.Second,
	})
	if err != nil {
		_ = rep.Close()
		return nil, err
	}

	return &componentsHandler{
		reader:   fileReader,
		builder:  normalizer,
		reporter: rep,
		engine:   eng,
	}, nil
}

func createReporter(cfg config.Config) (ClosableReporter, error) {
	if len(cfg.DatabasePath) > 0 {
		log.Debug("using the direct database sink", "path", cfg.DatabasePath)
		storeReporter, err := reporter.NewStoreReporter(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}

		return storeReporter, nil
	}
	if len(cfg.ReportEndpoint) > 0 {
		log.Debug("using the HTTP sink", "endpoint", cfg.ReportEndpoint)
		return reporter.NewHTTPReporter(cfg.ReportEndpoint, time.Duration(cfg.ReportTimeoutInSeconds)*time.Second), nil
	}

	return nil, errors.New("no sink configured: set a database path or a report endpoint")
}

// GetReader returns the file reader component
func (ch *componentsHandler) GetReader() engine.FileReader {
	return ch.reader
}

// GetBuilder returns the measurements builder component
func (ch *componentsHandler) GetBuilder() engine.MeasurementsBuilder {
	return ch.builder
}

// GetReporter returns the reporter component
func (ch *componentsHandler) GetReporter() engine.Reporter {
	return ch.reporter
}

// GetEngine returns the engine component
func (ch *componentsHandler) GetEngine() Engine {
	return ch.engine
}

// Close closes the inner components
func (ch *componentsHandler) Close() {
	err := ch.reporter.Close()
	if err != nil {
		log.Warn("failed to close the reporter", "error", err)
	}
}
