package analysis

import "github.com/iulianpascalau/load-dashboard/services/dashboard/common"

// SLAResult is the outcome of evaluating a run's measurements against its SLA thresholds
type SLAResult struct {
	FailCount int
	AvgMs     *float64
	MaxMs     *float64
}

// EvaluateSLA counts the measurements breaching the configured thresholds. The average
// threshold is checked first; a measurement breaching it is not checked against the max
// threshold, so each measurement counts at most once.
func EvaluateSLA(slaAvgMs *float64, slaMaxMs *float64, measurements []common.Measurement) SLAResult {
	result := SLAResult{
		AvgMs: slaAvgMs,
		MaxMs: slaMaxMs,
	}

	for _, m := range measurements {
		if slaAvgMs != nil && m.AvgMs > *slaAvgMs {
			result.FailCount++
			continue
		}
		if slaMaxMs != nil && m.MaxMs > *slaMaxMs {
			result.FailCount++
		}
	}

	return result
}
