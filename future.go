package qjob

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rfonseca/qjob/meta"
)

// JobHandle is the durable record of a job in flight: enough state to
// reconstruct a waiting client in a new process and resume polling to
// completion without resubmission. A handle is submission-complete if and
// only if JobID is non-empty, and terminal if and only if Resolved is true,
// in which case Result is always present. Serializing a handle and handing
// it to another process transfers ownership; the original in-memory instance
// must not continue polling.
type JobHandle struct {
	meta.TypeMeta `json:",inline"`
	// Driver is the registry name of the driver variant that submitted the
	// job, used to reconstruct an equivalent driver on resumption.
	Driver string `json:"driver"`
	JobID  string `json:"jobId"`
	// GetPath is the URL polled for job status.
	GetPath string `json:"getPath"`
	// Headers is a snapshot of the request headers in effect at submission
	// time. It is informational; polling always uses freshly built headers.
	Headers map[string]string `json:"headers"`
	// PollingInterval is the poll spacing hint captured at submission time.
	PollingInterval time.Duration `json:"pollingInterval"`
	Resolved        bool          `json:"resolved"`
	Result          *ResultSet    `json:"result,omitempty"`
}

// NewJobHandle returns an unresolved JobHandle for a freshly submitted job.
func NewJobHandle(
	driverName string,
	jobID string,
	getPath string,
	headers map[string]string,
	pollingInterval time.Duration,
) *JobHandle {
	return &JobHandle{
		TypeMeta: meta.TypeMeta{
			APIVersion: meta.APIVersion,
			Kind:       "JobHandle",
		},
		Driver:          driverName,
		JobID:           jobID,
		GetPath:         getPath,
		Headers:         headers,
		PollingInterval: pollingInterval,
	}
}

// Serialize encodes the handle as self-contained, human-inspectable JSON
// suitable for writing to a file and reading back in another process.
func (j *JobHandle) Serialize() ([]byte, error) {
	handleBytes, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "error marshaling job handle")
	}
	return handleBytes, nil
}

// DeserializeJobHandle reconstructs a JobHandle from its serialized form.
// The caller must look up the driver variant named by the handle's Driver
// field and initialize it before resuming polling.
func DeserializeJobHandle(handleBytes []byte) (*JobHandle, error) {
	handle := &JobHandle{}
	if err := json.Unmarshal(handleBytes, handle); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling job handle")
	}
	if handle.Kind != "JobHandle" {
		return nil, meta.NewErrProtocol(
			"kind",
			"serialized data does not describe a job handle",
		)
	}
	if handle.Resolved && handle.Result == nil {
		return nil, meta.NewErrProtocol(
			"result",
			"resolved job handle is missing its result",
		)
	}
	return handle, nil
}
