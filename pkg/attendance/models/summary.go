package models

// RunSummary counts delivery outcomes for one run.
type RunSummary struct {
	// RunID identifies the run in the failure log.
	RunID string `json:"run_id"`
	// Sent is the number of reports the relay accepted.
	Sent int `json:"sent"`
	// Failed is the number of rejected or errored deliveries.
	Failed int `json:"failed"`
	// Skipped is the number of malformed rows that were not sent.
	Skipped int `json:"skipped"`
}

// Processed returns the number of rows that reached an outcome.
func (s RunSummary) Processed() int {
	return s.Sent + s.Failed + s.Skipped
}
