package analysis

// Status is the tri-state health status of a run
type Status string

const (
	// StatusGreen means no SLA failures and no regressions
	StatusGreen Status = "GREEN"
	// StatusAmber means at least one SLA failure or regression
	StatusAmber Status = "AMBER"
	// StatusRed means more than RedThreshold SLA failures or regressions
	StatusRed Status = "RED"
)

// RedThreshold is the count of SLA failures (or regressions) above which a run is RED.
// It is a fixed constant, not a configuration value.
const RedThreshold = 10

// ClassifyStatus folds the SLA failure count and the regressions count into a Status
func ClassifyStatus(slaFailCount int, regressionsCount int) Status {
	if slaFailCount > RedThreshold || regressionsCount > RedThreshold {
		return StatusRed
	}
	if slaFailCount > 0 || regressionsCount > 0 {
		return StatusAmber
	}

	return StatusGreen
}
