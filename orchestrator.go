package qjob

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rfonseca/qjob/internal/restmachinery"
)

// Orchestrator drives any Driver through a full job lifecycle: submit,
// obtain a job id, poll on the driver's cadence until the job is terminal,
// and decode final results. It carries no per-job state; all of that lives
// in JobHandles.
type Orchestrator struct {
	client *restmachinery.BaseClient
}

// NewOrchestrator returns an Orchestrator.
func NewOrchestrator(allowInsecure bool) *Orchestrator {
	return &Orchestrator{
		client: &restmachinery.BaseClient{
			HTTPClient: &http.Client{
				Transport: &http.Transport{
					TLSClientConfig: &tls.Config{
						InsecureSkipVerify: allowInsecure,
					},
				},
			},
		},
	}
}

// Submit batches the provided executions into one job, submits it through
// the provided (already initialized) driver, and returns an unresolved
// JobHandle for the accepted job.
func (o *Orchestrator) Submit(
	ctx context.Context,
	driver Driver,
	executions []KernelExecution,
) (*JobHandle, error) {
	jobRequest, err := driver.CreateJob(executions)
	if err != nil {
		return nil, err
	}
	respBodyBytes, err := o.client.SubmitRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:     http.MethodPost,
			URL:        jobRequest.SubmitURL,
			Headers:    jobRequest.Headers,
			ReqBodyObj: jobRequest.Payload,
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "error submitting job")
	}
	jobID, err := driver.ExtractJobID(respBodyBytes)
	if err != nil {
		return nil, err
	}
	getPath, err := driver.GetJobPathFromResponse(respBodyBytes)
	if err != nil {
		return nil, err
	}
	return NewJobHandle(
		driver.Name(),
		jobID,
		getPath,
		driver.Headers(),
		driver.NextResultPollingInterval(respBodyBytes),
	), nil
}

// AwaitCompletion polls the provided handle's job until it reaches a
// terminal state, then decodes and returns its results, marking the handle
// resolved. A *meta.ErrJobExecution from the driver ends polling
// immediately and leaves the handle unresolved; terminal failures are never
// retried. The loop itself has no deadline and will poll a still-pending
// job indefinitely; callers wanting a timeout should bound ctx.
func (o *Orchestrator) AwaitCompletion(
	ctx context.Context,
	driver Driver,
	handle *JobHandle,
) (*ResultSet, error) {
	if handle.Resolved {
		return handle.Result, nil
	}
	if handle.JobID == "" {
		return nil, errors.New(
			"cannot await a job handle that has no job id",
		)
	}
	for {
		// Headers are rebuilt before every poll so that a token refreshed
		// mid-poll is honored on the next request.
		respBodyBytes, err := o.client.SubmitRequest(
			ctx,
			restmachinery.OutboundRequest{
				Method:  http.MethodGet,
				URL:     handle.GetPath,
				Headers: driver.Headers(),
			},
		)
		if err != nil {
			return nil, errors.Wrapf(err, "error polling job %q", handle.JobID)
		}
		done, err := driver.JobIsDone(respBodyBytes)
		if err != nil {
			return nil, err
		}
		if done {
			result, err := driver.ProcessResults(respBodyBytes, handle.JobID)
			if err != nil {
				return nil, err
			}
			handle.Resolved = true
			handle.Result = result
			return result, nil
		}
		select {
		case <-time.After(driver.NextResultPollingInterval(respBodyBytes)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// AwaitAsync begins awaiting the provided handle's job on its own goroutine
// so the caller's main flow of control continues concurrently. Exactly one
// value is eventually delivered on one of the two returned channels unless
// ctx is canceled first.
func (o *Orchestrator) AwaitAsync(
	ctx context.Context,
	driver Driver,
	handle *JobHandle,
) (<-chan *ResultSet, <-chan error) {
	resultCh := make(chan *ResultSet)
	errCh := make(chan error)
	go func() {
		result, err := o.AwaitCompletion(ctx, driver, handle)
		if err != nil {
			select {
			case errCh <- err:
			case <-ctx.Done():
			}
			return
		}
		select {
		case resultCh <- result:
		case <-ctx.Done():
		}
	}()
	return resultCh, errCh
}

// Resume picks up waiting on a deserialized handle, typically in a process
// other than the one that submitted the job. A handle that is already
// resolved returns its stored result with no network activity at all.
// Otherwise the driver variant named by the handle is looked up, freshly
// initialized (which repeats the credential exchange), and polled to
// completion.
func (o *Orchestrator) Resume(
	ctx context.Context,
	registry *DriverRegistry,
	config BackendConfig,
	handle *JobHandle,
) (*ResultSet, error) {
	if handle.Resolved {
		return handle.Result, nil
	}
	driver, err := registry.Get(handle.Driver)
	if err != nil {
		return nil, err
	}
	if err := driver.Initialize(ctx, config); err != nil {
		return nil, err
	}
	return o.AwaitCompletion(ctx, driver, handle)
}
