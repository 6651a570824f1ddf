package qjob

import "github.com/rfonseca/qjob/meta"

// ExecutionResult represents the decoded measurement data for one kernel
// execution within a job.
type ExecutionResult struct {
	// Label identifies which batched execution these samples belong to.
	Label string `json:"label"`
	// Samples maps a measured bitstring to the number of shots that observed
	// it.
	Samples map[string]int `json:"samples"`
}

// ResultSet represents the decoded terminal output of one job. It is
// immutable once constructed.
type ResultSet struct {
	meta.TypeMeta `json:",inline"`
	JobID         string            `json:"jobID"`
	Executions    []ExecutionResult `json:"executions"`
}

// NewResultSet returns a ResultSet for the specified job.
func NewResultSet(jobID string, executions []ExecutionResult) *ResultSet {
	return &ResultSet{
		TypeMeta: meta.TypeMeta{
			APIVersion: meta.APIVersion,
			Kind:       "ResultSet",
		},
		JobID:      jobID,
		Executions: executions,
	}
}
