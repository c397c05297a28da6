package analysis

import (
	"fmt"
	"sort"

	"github.com/iulianpascalau/load-dashboard/services/dashboard/common"
)

// MaxCompareRuns is the maximum number of runs shown side by side
const MaxCompareRuns = 4

// ValidateCompareRequest checks the number of requested runs and the filter values
func ValidateCompareRequest(req common.CompareRequest) error {
	if len(req.RunIDs) < 1 || len(req.RunIDs) > MaxCompareRuns {
		return fmt.Errorf("%w: run_ids must be a list of 1..%d run ids, got %d",
			common.ErrInvalidArgument, MaxCompareRuns, len(req.RunIDs))
	}
	for _, id := range req.RunIDs {
		if id <= 0 {
			return fmt.Errorf("%w: run ids must be positive integers, got %d", common.ErrInvalidArgument, id)
		}
	}
	if req.UsersLoad != nil && *req.UsersLoad <= 0 {
		return fmt.Errorf("%w: load must be a positive integer, got %d", common.ErrInvalidArgument, *req.UsersLoad)
	}

	return nil
}

// BuildMatrix assembles the comparison matrix. runs holds the metadata of the requested
// runs that exist; ids missing from it produce a nil slot in the result. measurements are
// grouped by (endpoint, load); when one run holds the same pair more than once the last
// one in slice order wins. Rows are sorted by load ascending then endpoint ascending.
func BuildMatrix(runIDs []int64, runs map[int64]common.Run, measurements []common.Measurement) common.CompareResult {
	result := common.CompareResult{
		Runs:  make([]*common.CompareRun, 0, len(runIDs)),
		Items: make([]common.CompareRow, 0),
	}

	for _, id := range runIDs {
		run, found := runs[id]
		if !found {
			result.Runs = append(result.Runs, nil)
			continue
		}

		result.Runs = append(result.Runs, &common.CompareRun{
			ID:           run.ID,
			RunName:      run.RunName,
			RunTS:        run.RunTS,
			RunTSDisplay: run.DisplayTime(),
			IsBaseline:   run.IsBaseline,
			IsExcluded:   run.IsExcluded,
		})
	}

	rows := make(map[matchKey]*common.CompareRow)
	for _, m := range measurements {
		if _, found := runs[m.RunID]; !found {
			continue
		}

		key := matchKey{endpoint: m.EndpointName, load: m.UsersLoad}
		row, exists := rows[key]
		if !exists {
			row = &common.CompareRow{
				EndpointName: m.EndpointName,
				UsersLoad:    m.UsersLoad,
				ByRun:        make(map[int64]common.LatencyTriple),
			}
			rows[key] = row
		}

		row.ByRun[m.RunID] = common.LatencyTriple{
			AvgMs: m.AvgMs,
			MinMs: m.MinMs,
			MaxMs: m.MaxMs,
		}
	}

	for _, row := range rows {
		result.Items = append(result.Items, *row)
	}

	sort.Slice(result.Items, func(i, j int) bool {
		if result.Items[i].UsersLoad != result.Items[j].UsersLoad {
			return result.Items[i].UsersLoad < result.Items[j].UsersLoad
		}

		return result.Items[i].EndpointName < result.Items[j].EndpointName
	})

	return result
}
