package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("api")

type server struct {
	router         *gin.Engine
	httpServer     *http.Server
	engine         RunsEngine
	metrics        *serverMetrics
	listenAddr     string
	staticDir      string
	generalHandler func(http.Handler) http.Handler
	wg             sync.WaitGroup
}

// ArgsWebServer defines the web server arguments
type ArgsWebServer struct {
	ListenAddress  string
	StaticDir      string
	EnableMetrics  bool
	Engine         RunsEngine
	GeneralHandler func(http.Handler) http.Handler
}

// NewServer initializes the Gin engine and mounts all routes
func NewServer(args ArgsWebServer) (*server, error) {
	if check.IfNil(args.Engine) {
		return nil, errors.New("engine is required")
	}
	if args.GeneralHandler == nil {
		return nil, errors.New("nil http handler")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestID())

	s := &server{
		router:         router,
		engine:         args.Engine,
		listenAddr:     args.ListenAddress,
		staticDir:      args.StaticDir,
		generalHandler: args.GeneralHandler,
	}

	if args.EnableMetrics {
		s.metrics = newServerMetrics()
		router.Use(s.metrics.middleware())
		router.GET("/metrics", gin.WrapH(s.metrics.handler()))
	}

	s.setupRoutes()
	return s, nil
}

func (s *server) setupRoutes() {
	api := s.router.Group("/api")

	runs := api.Group("/runs")
	{
		runs.GET("", s.handleListRuns)
		runs.POST("", s.handleImportRun)
		runs.POST("/:id/set_baseline", s.handleSetBaseline)
		runs.POST("/:id/exclude", s.handleExclude)
		runs.POST("/:id/include", s.handleInclude)
		runs.DELETE("/:id", s.handleDelete)
		runs.POST("/:id/delete", s.handleDelete)
		runs.PUT("/:id/thresholds", s.handleUpdateThresholds)
	}

	run := api.Group("/run")
	{
		run.GET("/:id/data", s.handleRunData)
		run.GET("/:id/summary", s.handleRunSummary)
		run.GET("/:id/exec_summary", s.handleExecSummary)
	}

	api.POST("/compare", s.handleCompare)

	// Serve static files from the frontend build if configured
	if s.staticDir != "" {
		log.Info("serving static files", "dir", s.staticDir)
		s.router.Static("/static", path.Join(s.staticDir, "static"))
		s.router.StaticFile("/favicon.ico", path.Join(s.staticDir, "favicon.ico"))

		// NoRoute for SPA fallback
		s.router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				c.JSON(http.StatusNotFound, gin.H{"error": "api route not found"})
				return
			}
			c.File(path.Join(s.staticDir, "index.html"))
		})
	}
}

// Start listens and serves connections
func (s *server) Start() {
	handler := s.generalHandler(s.router)

	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: handler,
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		return
	}
	s.listenAddr = ln.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("starting HTTP server", "address", s.listenAddr)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}()
}

// Address returns the actual listen address
func (s *server) Address() string {
	return s.listenAddr
}

// Close gracefully stops the server
func (s *server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.wg.Wait()

	return nil
}
