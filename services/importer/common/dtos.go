package common

import dashboardCommon "github.com/iulianpascalau/load-dashboard/services/dashboard/common"

// Table is the content of a result file: the header row and the raw cell values of every data row
type Table struct {
	Headers []string
	Rows    [][]string
}

// RowStats counts how the rows of a table were handled while building measurements
type RowStats struct {
	Total   int
	Empty   int
	Invalid int
	Valid   int
}

// ImportResult is the outcome of an import
type ImportResult struct {
	RunID        int64
	Measurements int
	Stats        RowStats
}

// ImportRequest describes a result file together with the metadata of the run it produces
type ImportRequest struct {
	FilePath string
	Sheet    string
	Run      dashboardCommon.Run
}
