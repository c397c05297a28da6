package common

import "time"

// DisplayTimeLayout is the layout used for the human readable run timestamp
const DisplayTimeLayout = "2006-01-02 15:04 UTC"

// Run defines one performance-test execution and its metadata
type Run struct {
	ID            int64     `json:"id"`
	RunName       string    `json:"run_name"`
	RunTS         time.Time `json:"run_ts"`
	SourceFile    string    `json:"source_file"`
	Notes         *string   `json:"notes"`
	IsBaseline    bool      `json:"is_baseline"`
	IsExcluded    bool      `json:"is_excluded"`
	ReleaseName   *string   `json:"release_name"`
	Environment   *string   `json:"environment"`
	CommitSHA     *string   `json:"commit_sha"`
	TestType      *string   `json:"test_type"`
	SLAAvgMs      *float64  `json:"sla_avg_ms"`
	SLAMaxMs      *float64  `json:"sla_max_ms"`
	RegressionPct *float64  `json:"regression_pct"`
}

// DisplayTime returns the run timestamp formatted for display, always in UTC
func (r *Run) DisplayTime() string {
	return r.RunTS.UTC().Format(DisplayTimeLayout)
}

// Measurement is one (endpoint, users load) latency data point of a run
type Measurement struct {
	RunID        int64   `json:"run_id"`
	UsersLoad    int     `json:"users_load"`
	EndpointName string  `json:"endpoint_name"`
	AvgMs        float64 `json:"avg_ms"`
	MinMs        float64 `json:"min_ms"`
	MaxMs        float64 `json:"max_ms"`
}

// MeasurementFilter holds the optional filters applied on measurement queries
type MeasurementFilter struct {
	UsersLoad    *int
	EndpointName *string
}

// Thresholds groups the editable per-run evaluation thresholds
type Thresholds struct {
	SLAAvgMs      *float64 `json:"sla_avg_ms"`
	SLAMaxMs      *float64 `json:"sla_max_ms"`
	RegressionPct *float64 `json:"regression_pct"`
}

// RunKPI contains the aggregates computed over all measurements of a run. The latency
// aggregates are nil when the run has no measurements
type RunKPI struct {
	RowsCount      int      `json:"rows_count"`
	EndpointsCount int      `json:"endpoints_count"`
	LoadsCount     int      `json:"loads_count"`
	OverallAvgMs   *float64 `json:"overall_avg_ms"`
	OverallMinMs   *float64 `json:"overall_min_ms"`
	OverallMaxMs   *float64 `json:"overall_max_ms"`
}

// RunView is a run as returned to the presentation layer
type RunView struct {
	Run
	RunTSDisplay string `json:"run_ts_display"`
}

// NewRunView creates the presentation form of a run
func NewRunView(run Run) RunView {
	return RunView{
		Run:          run,
		RunTSDisplay: run.DisplayTime(),
	}
}

// RunSummary is the per-run summary with KPI aggregates and the slowest measurements
type RunSummary struct {
	Run     RunView       `json:"run"`
	KPI     RunKPI        `json:"kpi"`
	Slowest []Measurement `json:"slowest"`
}

// Risk is a single displayed regression
type Risk struct {
	Pct           float64 `json:"pct"`
	Endpoint      string  `json:"endpoint"`
	Load          int     `json:"load"`
	AvgMs         float64 `json:"avg_ms"`
	BaselineAvgMs float64 `json:"baseline_avg_ms"`
}

// ExecSummary is the executive summary report of a run
type ExecSummary struct {
	Status                 string   `json:"status"`
	SLAFailCount           int      `json:"sla_fail_count"`
	SLAAvgMs               *float64 `json:"sla_avg_ms"`
	SLAMaxMs               *float64 `json:"sla_max_ms"`
	RegressionThresholdPct float64  `json:"regression_threshold_pct"`
	RegressionsCount       int      `json:"regressions_count"`
	TopRisks               []Risk   `json:"top_risks"`
	BaselineRunID          *int64   `json:"baseline_run_id"`
}

// CompareRequest is the input of the comparison matrix
type CompareRequest struct {
	RunIDs       []int64 `json:"run_ids"`
	UsersLoad    *int    `json:"load"`
	EndpointName *string `json:"endpoint"`
}

// CompareRun is the reduced run metadata shown in a comparison
type CompareRun struct {
	ID           int64     `json:"id"`
	RunName      string    `json:"run_name"`
	RunTS        time.Time `json:"run_ts"`
	RunTSDisplay string    `json:"run_ts_display"`
	IsBaseline   bool      `json:"is_baseline"`
	IsExcluded   bool      `json:"is_excluded"`
}

// LatencyTriple holds the latencies of one run in a comparison row
type LatencyTriple struct {
	AvgMs float64 `json:"avg_ms"`
	MinMs float64 `json:"min_ms"`
	MaxMs float64 `json:"max_ms"`
}

// CompareRow is one (endpoint, load) row of the comparison matrix
type CompareRow struct {
	EndpointName string                  `json:"endpoint_name"`
	UsersLoad    int                     `json:"users_load"`
	ByRun        map[int64]LatencyTriple `json:"by_run"`
}

// CompareResult is the comparison matrix. Runs keeps the requested order, a nil entry
// marks a requested run id that does not exist
type CompareResult struct {
	Runs  []*CompareRun `json:"runs"`
	Items []CompareRow  `json:"items"`
}

// ImportBatch is a new run together with its validated measurements
type ImportBatch struct {
	Run          Run           `json:"run"`
	Measurements []Measurement `json:"measurements"`
}
