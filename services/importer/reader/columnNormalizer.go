package reader

import (
	"math"
	"strconv"
	"strings"

	dashboardCommon "github.com/iulianpascalau/load-dashboard/services/dashboard/common"
	"github.com/iulianpascalau/load-dashboard/services/importer/common"
)

const (
	columnUsersLoad    = "users_load"
	columnEndpointName = "endpoint_name"
	columnAvgMs        = "avg_ms"
	columnMinMs        = "min_ms"
	columnMaxMs        = "max_ms"
)

var requiredColumns = []string{columnUsersLoad, columnEndpointName, columnAvgMs, columnMinMs, columnMaxMs}

var defaultHeaderAliases = map[string]string{
	"users load":       columnUsersLoad,
	"user load":        columnUsersLoad,
	"users":            columnUsersLoad,
	"load":             columnUsersLoad,
	"endpoint name":    columnEndpointName,
	"endpoint":         columnEndpointName,
	"name":             columnEndpointName,
	"average response": columnAvgMs,
	"avg":              columnAvgMs,
	"avg ms":           columnAvgMs,
	"average":          columnAvgMs,
	"min":              columnMinMs,
	"minimum":          columnMinMs,
	"max":              columnMaxMs,
	"maximum":          columnMaxMs,
}

type columnNormalizer struct {
	aliases map[string]string
}

// NewColumnNormalizer creates the component that maps result file headers to measurement columns.
// The extra aliases are added on top of the built-in ones and win on conflicts.
func NewColumnNormalizer(extraAliases map[string]string) *columnNormalizer {
	aliases := make(map[string]string, len(defaultHeaderAliases)+len(extraAliases))
	for k, v := range defaultHeaderAliases {
		aliases[k] = v
	}
	for k, v := range extraAliases {
		aliases[headerKey(k)] = v
	}

	return &columnNormalizer{
		aliases: aliases,
	}
}

func headerKey(header string) string {
	return strings.Join(strings.Fields(strings.ToLower(header)), " ")
}

// NormalizeColumn trims, lowercases and collapses the whitespace of a header, then resolves it
// through the alias table. Unknown headers become snake_case.
func (n *columnNormalizer) NormalizeColumn(header string) string {
	key := headerKey(header)
	if alias, found := n.aliases[key]; found {
		return alias
	}

	return strings.ReplaceAll(key, " ", "_")
}

// BuildMeasurements validates the table columns and converts every usable row into a measurement.
// Empty rows and rows holding a blank endpoint or an unusable number are dropped.
func (n *columnNormalizer) BuildMeasurements(table *common.Table) ([]dashboardCommon.Measurement, common.RowStats, error) {
	stats := common.RowStats{}

	columns := make([]string, 0, len(table.Headers))
	positions := make(map[string]int)
	for idx, header := range table.Headers {
		column := n.NormalizeColumn(header)
		columns = append(columns, column)
		if _, found := positions[column]; !found {
			positions[column] = idx
		}
	}

	missing := make([]string, 0)
	for _, column := range requiredColumns {
		if _, found := positions[column]; !found {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, stats, &errMissingColumns{
			missing: missing,
			found:   columns,
		}
	}

	measurements := make([]dashboardCommon.Measurement, 0, len(table.Rows))
	for _, row := range table.Rows {
		stats.Total++
		if isEmptyRow(row) {
			stats.Empty++
			continue
		}

		m, ok := buildMeasurement(row, positions)
		if !ok {
			stats.Invalid++
			log.Trace("row dropped", "row", strings.Join(row, "|"))
			continue
		}

		stats.Valid++
		measurements = append(measurements, m)
	}

	return measurements, stats, nil
}

func buildMeasurement(row []string, positions map[string]int) (dashboardCommon.Measurement, bool) {
	m := dashboardCommon.Measurement{
		EndpointName: cell(row, positions[columnEndpointName]),
	}
	if len(m.EndpointName) == 0 {
		return m, false
	}

	var ok bool
	m.UsersLoad, ok = parseUsersLoad(cell(row, positions[columnUsersLoad]))
	if !ok {
		return m, false
	}

	m.AvgMs, ok = parseLatency(cell(row, positions[columnAvgMs]))
	if !ok {
		return m, false
	}
	m.MinMs, ok = parseLatency(cell(row, positions[columnMinMs]))
	if !ok {
		return m, false
	}
	m.MaxMs, ok = parseLatency(cell(row, positions[columnMaxMs]))

	return m, ok
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, value := range row {
		if len(strings.TrimSpace(value)) > 0 {
			return false
		}
	}

	return true
}

func parseNumber(value string) (float64, bool) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	return f, true
}

// parseUsersLoad accepts integral values written as floats, like 50.0
func parseUsersLoad(value string) (int, bool) {
	f, ok := parseNumber(value)
	if !ok || f != math.Trunc(f) || f <= 0 || f > math.MaxInt32 {
		return 0, false
	}

	return int(f), true
}

func parseLatency(value string) (float64, bool) {
	f, ok := parseNumber(value)
	if !ok || f < 0 {
		return 0, false
	}

	return f, true
}

// IsInterfaceNil returns true if the value under the interface is nil
func (n *columnNormalizer) IsInterfaceNil() bool {
	return n == nil
}
