package analysis

import (
	"math"
	"sort"

	"github.com/iulianpascalau/load-dashboard/services/dashboard/common"
)

// DefaultRegressionPct is the regression threshold used when a run does not define its own
const DefaultRegressionPct = 15.0

// TopRisksLimit is the number of regressions exposed in an executive summary
const TopRisksLimit = 3

// Regression is a candidate measurement whose average latency degraded against the baseline
type Regression struct {
	Pct           float64
	Endpoint      string
	Load          int
	AvgMs         float64
	BaselineAvgMs float64
}

type matchKey struct {
	endpoint string
	load     int
}

// RegressionThreshold returns the run's own regression percent, or DefaultRegressionPct
func RegressionThreshold(run common.Run) float64 {
	if run.RegressionPct != nil {
		return *run.RegressionPct
	}

	return DefaultRegressionPct
}

// DetectRegressions matches the candidate measurements against the baseline ones by
// (endpoint, load) and returns the matches whose percent increase of the average latency
// reaches thresholdPct, sorted by percent descending.
//
// When the baseline holds the same (endpoint, load) pair more than once, the last one in
// slice order wins. Ties on percent keep the candidate slice order.
func DetectRegressions(candidate []common.Measurement, baseline []common.Measurement, thresholdPct float64) []Regression {
	if len(candidate) == 0 || len(baseline) == 0 {
		return make([]Regression, 0)
	}

	baselineAvg := make(map[matchKey]float64, len(baseline))
	for _, b := range baseline {
		baselineAvg[matchKey{endpoint: b.EndpointName, load: b.UsersLoad}] = b.AvgMs
	}

	regressions := make([]Regression, 0)
	for _, m := range candidate {
		base, found := baselineAvg[matchKey{endpoint: m.EndpointName, load: m.UsersLoad}]
		if !found || base <= 0 {
			continue
		}

		pct := (m.AvgMs - base) / base * 100.0
		if pct < thresholdPct {
			continue
		}

		regressions = append(regressions, Regression{
			Pct:           pct,
			Endpoint:      m.EndpointName,
			Load:          m.UsersLoad,
			AvgMs:         m.AvgMs,
			BaselineAvgMs: base,
		})
	}

	sort.SliceStable(regressions, func(i, j int) bool {
		return regressions[i].Pct > regressions[j].Pct
	})

	return regressions
}

// TopRisks converts at most limit leading regressions into display risks with the percent
// rounded to one decimal
func TopRisks(regressions []Regression, limit int) []common.Risk {
	if limit > len(regressions) {
		limit = len(regressions)
	}
	if limit < 0 {
		limit = 0
	}

	risks := make([]common.Risk, 0, limit)
	for _, r := range regressions[:limit] {
		risks = append(risks, common.Risk{
			Pct:           roundToOneDecimal(r.Pct),
			Endpoint:      r.Endpoint,
			Load:          r.Load,
			AvgMs:         r.AvgMs,
			BaselineAvgMs: r.BaselineAvgMs,
		})
	}

	return risks
}

func roundToOneDecimal(value float64) float64 {
	return math.RoundToEven(value*10) / 10
}
