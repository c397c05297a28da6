package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/iulianpascalau/load-dashboard/commonGo"
	dashboardCommon "github.com/iulianpascalau/load-dashboard/services/dashboard/common"
	"github.com/iulianpascalau/load-dashboard/services/importer/common"
	"github.com/iulianpascalau/load-dashboard/services/importer/config"
	"github.com/iulianpascalau/load-dashboard/services/importer/engine"
	"github.com/iulianpascalau/load-dashboard/services/importer/factory"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/urfave/cli"
)

const (
	defaultLogsPath      = "logs"
	logFilePrefix        = "importer"
	envFile              = "./.env"
	envDatabasePath      = "LOAD_DASHBOARD_DB"
	defaultReportTimeout = 30
	defaultImportTimeout = 5 * time.Minute
)

// appVersion should be populated at build time using ldflags
// Usage examples:
// Linux/macOS:
//
//	go build -v -ldflags="-X main.appVersion=$(git describe --all | cut -c7-32)
var appVersion = "undefined"
var fileLogging commonGo.FileLoggingHandler

var (
	importerHelpTemplate = `NAME:
   {{.Name}} - {{.Usage}}
USAGE:
   {{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}
   {{if len .Authors}}
AUTHOR:
   {{range .Authors}}{{ . }}{{end}}
   {{end}}{{if .Commands}}
GLOBAL OPTIONS:
   {{range .VisibleFlags}}{{.}}
   {{end}}
VERSION:
   {{.Version}}
   {{end}}
`

	log = logger.GetOrCreate("main")

	// logLevel defines the logger level
	logLevel = cli.StringFlag{
		Name: "log-level",
		Usage: "This flag specifies the logger `level(s)`. It can contain multiple comma-separated value. For example" +
			", if set to *:INFO the logs for all packages will have the INFO level. However, if set to *:INFO,reader:DEBUG" +
			" the logs for all packages will have the INFO level, excepting the reader package which will receive a DEBUG" +
			" log level.",
		Value: "*:" + logger.LogInfo.String(),
	}
	// logFile is used when the log output needs to be logged in a file
	logSaveFile = cli.BoolFlag{
		Name:  "log-save",
		Usage: "Boolean option for enabling log saving. If set, it will automatically save all the logs into a file.",
	}
	// workingDirectory defines a flag for the path for the working directory.
	workingDirectory = cli.StringFlag{
		Name:  "working-directory",
		Usage: "This flag specifies the `directory` where the importer will store logs.",
		Value: "",
	}
	// configFile defines the path to the TOML configuration. A missing file means defaults.
	configFile = cli.StringFlag{
		Name:  "config",
		Usage: "The `filepath` of the TOML configuration file. Defaults are used if the file does not exist.",
		Value: "./config.toml",
	}
	resultFile = cli.StringFlag{
		Name:  "file",
		Usage: "Path to the `.xlsx, .csv or .json` result file",
	}
	sheet = cli.StringFlag{
		Name:  "sheet",
		Usage: "Excel `sheet` name. The first sheet is used when not set.",
	}
	databasePath = cli.StringFlag{
		Name:  "db",
		Usage: "Path to the SQLite `database`. When set, the run is written directly into it.",
	}
	reportEndpoint = cli.StringFlag{
		Name:  "endpoint",
		Usage: "Dashboard ingestion `url`, for example http://127.0.0.1:8000/api/runs",
	}
	runName = cli.StringFlag{
		Name:  "run-name",
		Usage: "Name for this run (e.g. 2026-01-21_Nightly)",
	}
	runTimestamp = cli.StringFlag{
		Name:  "run-ts",
		Usage: "Run `timestamp`. Timestamps without a zone are UTC. Defaults to now.",
	}
	notes = cli.StringFlag{
		Name:  "notes",
		Usage: "Optional notes",
	}
	baseline = cli.BoolFlag{
		Name:  "baseline",
		Usage: "Mark this run as the baseline, clearing the previous one",
	}
	release = cli.StringFlag{
		Name:  "release",
		Usage: "Release name (e.g. R1-2026.01)",
	}
	environment = cli.StringFlag{
		Name:  "env",
		Usage: "Environment (e.g. QA, Perf, Stage)",
	}
	commitSHA = cli.StringFlag{
		Name:  "commit",
		Usage: "Commit SHA",
	}
	testType = cli.StringFlag{
		Name:  "test-type",
		Usage: "Load, Stress, Soak or Spike",
	}
	slaAvgMs = cli.Float64Flag{
		Name:  "sla-avg-ms",
		Usage: "Average latency SLA threshold in ms",
	}
	slaMaxMs = cli.Float64Flag{
		Name:  "sla-max-ms",
		Usage: "Max latency SLA threshold in ms",
	}
	regressionPct = cli.Float64Flag{
		Name:  "regression-pct",
		Usage: "Regression threshold in percent (e.g. 15)",
	}
)

func main() {
	app := cli.NewApp()
	cli.AppHelpTemplate = importerHelpTemplate
	app.Name = "Load test results importer"
	app.Version = fmt.Sprintf("%s/%s/%s-%s", appVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	app.Usage = "This tool imports a load-test result file as a new run of the dashboard"
	app.Flags = []cli.Flag{
		logLevel,
		logSaveFile,
		workingDirectory,
		configFile,
		resultFile,
		sheet,
		databasePath,
		reportEndpoint,
		runName,
		runTimestamp,
		notes,
		baseline,
		release,
		environment,
		commitSHA,
		testType,
		slaAvgMs,
		slaMaxMs,
		regressionPct,
	}
	app.Authors = []cli.Author{
		{
			Name:  "Iulian Pascalau",
			Email: "iulian.pascalau@gmail.com",
		},
	}

	app.Action = run

	defer func() {
		if fileLogging != nil {
			_ = fileLogging.Close()
		}
	}()

	err := app.Run(os.Args)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	err := logger.SetLogLevel(ctx.GlobalString(logLevel.Name))
	if err != nil {
		return err
	}

	fileLogging, err = commonGo.AttachFileLogger(log, defaultLogsPath, logFilePrefix,
		ctx.GlobalBool(logSaveFile.Name), ctx.GlobalString(workingDirectory.Name))
	if err != nil {
		return err
	}

	if len(ctx.GlobalString(resultFile.Name)) == 0 {
		return errors.New("the --file flag is required")
	}
	if len(strings.TrimSpace(ctx.GlobalString(runName.Name))) == 0 {
		return errors.New("the --run-name flag is required")
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	req, err := createImportRequest(ctx)
	if err != nil {
		return err
	}

	components, err := factory.NewComponentsHandler(*cfg)
	if err != nil {
		return err
	}
	defer components.Close()

	importCtx, cancel := context.WithTimeout(context.Background(), defaultImportTimeout)
	defer cancel()

	result, err := components.GetEngine().Import(importCtx, req)
	if err != nil {
		return err
	}

	log.Info("run imported",
		"run id", result.RunID,
		"name", req.Run.RunName,
		"run ts", req.Run.RunTS.Format(time.RFC3339),
		"measurements", result.Measurements,
		"dropped rows", result.Stats.Invalid,
		"baseline", req.Run.IsBaseline)

	return nil
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := &config.Config{
		ReportTimeoutInSeconds: defaultReportTimeout,
	}

	configPath := ctx.GlobalString(configFile.Name)
	_, err := os.Stat(configPath)
	if err == nil {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		log.Debug("config file not found, using defaults", "path", configPath)
	}

	overrides, err := commonGo.ReadEnvOverrides(envFile, envDatabasePath)
	if err != nil {
		return nil, err
	}
	if dbPath, found := overrides[envDatabasePath]; found {
		cfg.DatabasePath = dbPath
	}

	// flags win over the configured sinks
	if ctx.GlobalIsSet(reportEndpoint.Name) {
		cfg.ReportEndpoint = ctx.GlobalString(reportEndpoint.Name)
		cfg.DatabasePath = ""
	}
	if ctx.GlobalIsSet(databasePath.Name) {
		cfg.DatabasePath = ctx.GlobalString(databasePath.Name)
	}

	return cfg, nil
}

func createImportRequest(ctx *cli.Context) (common.ImportRequest, error) {
	runTS, err := engine.ParseRunTimestamp(ctx.GlobalString(runTimestamp.Name), time.Now())
	if err != nil {
		return common.ImportRequest{}, err
	}

	return common.ImportRequest{
		FilePath: ctx.GlobalString(resultFile.Name),
		Sheet:    ctx.GlobalString(sheet.Name),
		Run: dashboardCommon.Run{
			RunName:       ctx.GlobalString(runName.Name),
			RunTS:         runTS,
			Notes:         optionalString(ctx, notes.Name),
			IsBaseline:    ctx.GlobalBool(baseline.Name),
			ReleaseName:   optionalString(ctx, release.Name),
			Environment:   optionalString(ctx, environment.Name),
			CommitSHA:     optionalString(ctx, commitSHA.Name),
			TestType:      optionalString(ctx, testType.Name),
			SLAAvgMs:      optionalFloat(ctx, slaAvgMs.Name),
			SLAMaxMs:      optionalFloat(ctx, slaMaxMs.Name),
			RegressionPct: optionalFloat(ctx, regressionPct.Name),
		},
	}, nil
}

func optionalString(ctx *cli.Context, name string) *string {
	value := strings.TrimSpace(ctx.GlobalString(name))
	if len(value) == 0 {
		return nil
	}

	return &value
}

func optionalFloat(ctx *cli.Context, name string) *float64 {
	if !ctx.GlobalIsSet(name) {
		return nil
	}

	value := ctx.GlobalFloat64(name)
	return &value
}
