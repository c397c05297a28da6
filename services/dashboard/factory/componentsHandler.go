package factory

import (
	"github.com/iulianpascalau/load-dashboard/services/dashboard/api"
	"github.com/iulianpascalau/load-dashboard/services/dashboard/config"
	"github.com/iulianpascalau/load-dashboard/services/dashboard/engine"
	"github.com/iulianpascalau/load-dashboard/services/dashboard/storage"
)

type componentsHandler struct {
	store  engine.Storage
	engine api.RunsEngine
	server Server
}

// NewComponentsHandler creates a new components handler
func NewComponentsHandler(cfg config.Config) (*componentsHandler, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	runsEngine, err := engine.NewRunsEngine(engine.ArgsRunsEngine{
		Storage: store,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	serverArgs := api.ArgsWebServer{
		ListenAddress:  cfg.ListenAddress,
		StaticDir:      cfg.StaticDir,
		EnableMetrics:  cfg.EnableMetrics,
		Engine:         runsEngine,
		GeneralHandler: api.CORSMiddleware,
	}

	server, err := api.NewServer(serverArgs)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &componentsHandler{
		store:  store,
		engine: runsEngine,
		server: server,
	}, nil
}

// GetStore returns the storage component
func (ch *componentsHandler) GetStore() engine.Storage {
	return ch.store
}

// GetEngine returns the runs engine
func (ch *componentsHandler) GetEngine() api.RunsEngine {
	return ch.engine
}

// GetServer returns the server component
func (ch *componentsHandler) GetServer() Server {
	return ch.server
}

// Start starts the inner components
func (ch *componentsHandler) Start() {
	ch.server.Start()
}

// Close closes the inner components
func (ch *componentsHandler) Close() {
	_ = ch.server.Close()
	_ = ch.store.Close()
}
