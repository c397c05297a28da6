package analysis

import "github.com/iulianpascalau/load-dashboard/services/dashboard/common"

// BuildExecSummary composes the SLA evaluation, the regression detection and the status
// classification of a candidate run. baseline may be nil; it is ignored when it is the
// candidate itself.
func BuildExecSummary(
	candidate common.Run,
	candidateMeasurements []common.Measurement,
	baseline *common.Run,
	baselineMeasurements []common.Measurement,
) common.ExecSummary {
	sla := EvaluateSLA(candidate.SLAAvgMs, candidate.SLAMaxMs, candidateMeasurements)
	threshold := RegressionThreshold(candidate)

	var baselineRunID *int64
	regressions := make([]Regression, 0)
	if baseline != nil && baseline.ID != candidate.ID {
		id := baseline.ID
		baselineRunID = &id
		regressions = DetectRegressions(candidateMeasurements, baselineMeasurements, threshold)
	}

	return common.ExecSummary{
		Status:                 string(ClassifyStatus(sla.FailCount, len(regressions))),
		SLAFailCount:           sla.FailCount,
		SLAAvgMs:               sla.AvgMs,
		SLAMaxMs:               sla.MaxMs,
		RegressionThresholdPct: threshold,
		RegressionsCount:       len(regressions),
		TopRisks:               TopRisks(regressions, TopRisksLimit),
		BaselineRunID:          baselineRunID,
	}
}
