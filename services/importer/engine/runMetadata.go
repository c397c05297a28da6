package engine

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	dashboardCommon "github.com/iulianpascalau/load-dashboard/services/dashboard/common"
	"github.com/iulianpascalau/load-dashboard/services/importer/common"
)

// layouts without a zone are read as UTC
var runTimestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
	"02 Jan 2006 15:04",
	"Jan 2 2006 15:04",
	"Jan 2, 2006",
}

// ParseRunTimestamp reads the run timestamp given on the command line. An empty value yields now.
// The result is always in UTC.
func ParseRunTimestamp(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) == 0 {
		return now.UTC().Truncate(time.Second), nil
	}

	for _, layout := range runTimestampLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized run timestamp %q, expected a value like 2026-01-21T10:30:00Z", value)
}

func dashboardBatch(req common.ImportRequest, measurements []dashboardCommon.Measurement) dashboardCommon.ImportBatch {
	run := req.Run
	run.RunName = strings.TrimSpace(run.RunName)
	run.SourceFile = filepath.Base(req.FilePath)
	run.RunTS = run.RunTS.UTC()

	return dashboardCommon.ImportBatch{
		Run:          run,
		Measurements: measurements,
	}
}
