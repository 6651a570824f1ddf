package qjob

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rfonseca/qjob/meta"
	"github.com/stretchr/testify/require"
)

// fakeDriver speaks the same tri-state status protocol as a real driver
// variant, minus credentials, so orchestrator behavior can be exercised
// against plain httptest servers.
type fakeDriver struct {
	baseURL string
	mu      sync.Mutex
	auth    string
}

func (f *fakeDriver) Name() string {
	return "fake"
}

func (f *fakeDriver) Initialize(
	ctx context.Context,
	config BackendConfig,
) error {
	f.baseURL = config.Value("base_url")
	f.setAuth("Bearer initial")
	return nil
}

func (f *fakeDriver) setAuth(auth string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = auth
}

func (f *fakeDriver) Headers() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if f.auth != "" {
		headers["Authorization"] = f.auth
	}
	return headers
}

func (f *fakeDriver) CreateJob(
	executions []KernelExecution,
) (*JobRequest, error) {
	codes := make([]string, len(executions))
	for i, execution := range executions {
		codes[i] = execution.Code
	}
	return &JobRequest{
		SubmitURL: fmt.Sprintf("%s/api/jobs", f.baseURL),
		Headers:   f.Headers(),
		Payload:   codes,
	}, nil
}

func (f *fakeDriver) ExtractJobID(submitResponse []byte) (string, error) {
	resp := struct {
		ID string `json:"id"`
	}{}
	if err := json.Unmarshal(submitResponse, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", meta.NewErrProtocol(
			"id",
			"submission response contained no job id",
		)
	}
	return resp.ID, nil
}

func (f *fakeDriver) GetJobPath(jobID string) string {
	return fmt.Sprintf("%s/api/jobs/%s", f.baseURL, jobID)
}

func (f *fakeDriver) GetJobPathFromResponse(
	submitResponse []byte,
) (string, error) {
	jobID, err := f.ExtractJobID(submitResponse)
	if err != nil {
		return "", err
	}
	return f.GetJobPath(jobID), nil
}

func (f *fakeDriver) JobIsDone(pollResponse []byte) (bool, error) {
	status := struct {
		ID         string `json:"id"`
		Status     string `json:"status"`
		StatusCode int    `json:"status_code"`
	}{}
	if err := json.Unmarshal(pollResponse, &status); err != nil {
		return false, err
	}
	if status.Status != "finished" {
		return false, nil
	}
	if status.StatusCode != 0 {
		return false, meta.NewErrJobExecution(status.ID, status.StatusCode)
	}
	return true, nil
}

func (f *fakeDriver) NextResultPollingInterval(
	pollResponse []byte,
) time.Duration {
	return time.Millisecond
}

func (f *fakeDriver) ProcessResults(
	terminalResponse []byte,
	jobID string,
) (*ResultSet, error) {
	resp := struct {
		Results []ExecutionResult `json:"results"`
	}{}
	if err := json.Unmarshal(terminalResponse, &resp); err != nil {
		return nil, err
	}
	return NewResultSet(jobID, resp.Results), nil
}

func (f *fakeDriver) RefreshToken(ctx context.Context, force bool) error {
	f.setAuth("Bearer refreshed")
	return nil
}

func TestOrchestratorSubmit(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodPost, r.Method)
				require.Equal(t, "/api/jobs", r.URL.Path)
				require.Equal(
					t,
					"application/json",
					r.Header.Get("Content-Type"),
				)
				fmt.Fprintln(w, `{"id": "job-42"}`)
			},
		),
	)
	defer server.Close()

	driver := &fakeDriver{}
	err := driver.Initialize(
		context.Background(),
		BackendConfig{"base_url": server.URL},
	)
	require.NoError(t, err)

	handle, err := NewOrchestrator(false).Submit(
		context.Background(),
		driver,
		[]KernelExecution{{Name: "ghz", Code: "..."}},
	)
	require.NoError(t, err)
	require.Equal(t, "fake", handle.Driver)
	require.Equal(t, "job-42", handle.JobID)
	require.Equal(
		t,
		fmt.Sprintf("%s/api/jobs/job-42", server.URL),
		handle.GetPath,
	)
	require.False(t, handle.Resolved)
	require.Nil(t, handle.Result)
}

func TestOrchestratorEndToEnd(t *testing.T) {
	var pollCount int
	mux := http.NewServeMux()
	mux.HandleFunc(
		"/api/jobs",
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			fmt.Fprintln(w, `{"id": "job-42"}`)
		},
	)
	mux.HandleFunc(
		"/api/jobs/job-42",
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			pollCount++
			if pollCount == 1 {
				fmt.Fprintln(w, `{"status": "running", "status_code": 0}`)
				return
			}
			fmt.Fprintln(
				w,
				`{"status": "finished", "status_code": 0,` +
					` "results": [{"label": "ghz",` +
					` "samples": {"000": 506, "111": 494}}]}`,
			)
		},
	)
	server := httptest.NewServer(mux)
	defer server.Close()

	driver := &fakeDriver{}
	err := driver.Initialize(
		context.Background(),
		BackendConfig{"base_url": server.URL},
	)
	require.NoError(t, err)

	orchestrator := NewOrchestrator(false)
	handle, err := orchestrator.Submit(
		context.Background(),
		driver,
		[]KernelExecution{{Name: "ghz", Code: "..."}},
	)
	require.NoError(t, err)

	result, err := orchestrator.AwaitCompletion(
		context.Background(),
		driver,
		handle,
	)
	require.NoError(t, err)
	require.Equal(t, 2, pollCount)
	require.True(t, handle.Resolved)
	require.Equal(t, result, handle.Result)
	require.Equal(t, "job-42", result.JobID)
	require.Len(t, result.Executions, 1)
	require.Equal(t, 506, result.Executions[0].Samples["000"])
}

func TestOrchestratorExecutionFailure(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintln(
					w,
					`{"id": "job-42", "status": "finished", "status_code": 3}`,
				)
			},
		),
	)
	defer server.Close()

	driver := &fakeDriver{}
	err := driver.Initialize(
		context.Background(),
		BackendConfig{"base_url": server.URL},
	)
	require.NoError(t, err)

	handle := NewJobHandle(
		driver.Name(),
		"job-42",
		driver.GetJobPath("job-42"),
		driver.Headers(),
		time.Millisecond,
	)
	_, err = NewOrchestrator(false).AwaitCompletion(
		context.Background(),
		driver,
		handle,
	)
	require.Error(t, err)
	execErr, ok := errors.Cause(err).(*meta.ErrJobExecution)
	require.True(t, ok)
	require.Equal(t, 3, execErr.StatusCode)
	require.Equal(t, "job-42", execErr.JobID)
	// A terminal failure never marks the handle done
	require.False(t, handle.Resolved)
	require.Nil(t, handle.Result)
}

func TestAwaitCompletionResolvedHandle(t *testing.T) {
	result := NewResultSet(
		"job-42",
		[]ExecutionResult{{Label: "ghz", Samples: map[string]int{"0": 1}}},
	)
	handle := NewJobHandle("fake", "job-42", "", nil, time.Second)
	handle.Resolved = true
	handle.Result = result

	// The nil driver proves an already-resolved handle is a pure read path:
	// any network or driver activity would panic.
	got, err := NewOrchestrator(false).AwaitCompletion(
		context.Background(),
		nil,
		handle,
	)
	require.NoError(t, err)
	require.Equal(t, result, got)
}

func TestAwaitCompletionUsesFreshHeaders(t *testing.T) {
	driver := &fakeDriver{}
	var pollCount int
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				pollCount++
				switch pollCount {
				case 1:
					require.Equal(
						t,
						"Bearer initial",
						r.Header.Get("Authorization"),
					)
					driver.setAuth("Bearer refreshed")
					fmt.Fprintln(w, `{"status": "running", "status_code": 0}`)
				default:
					require.Equal(
						t,
						"Bearer refreshed",
						r.Header.Get("Authorization"),
					)
					fmt.Fprintln(
						w,
						`{"status": "finished", "status_code": 0, "results": []}`,
					)
				}
			},
		),
	)
	defer server.Close()

	err := driver.Initialize(
		context.Background(),
		BackendConfig{"base_url": server.URL},
	)
	require.NoError(t, err)

	handle := NewJobHandle(
		driver.Name(),
		"job-42",
		driver.GetJobPath("job-42"),
		driver.Headers(),
		time.Millisecond,
	)
	_, err = NewOrchestrator(false).AwaitCompletion(
		context.Background(),
		driver,
		handle,
	)
	require.NoError(t, err)
	require.Equal(t, 2, pollCount)
}

func TestAwaitAsync(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintln(
					w,
					`{"status": "finished", "status_code": 0, "results": []}`,
				)
			},
		),
	)
	defer server.Close()

	driver := &fakeDriver{}
	err := driver.Initialize(
		context.Background(),
		BackendConfig{"base_url": server.URL},
	)
	require.NoError(t, err)

	handle := NewJobHandle(
		driver.Name(),
		"job-42",
		driver.GetJobPath("job-42"),
		driver.Headers(),
		time.Millisecond,
	)
	resultCh, errCh := NewOrchestrator(false).AwaitAsync(
		context.Background(),
		driver,
		handle,
	)
	select {
	case result := <-resultCh:
		require.Equal(t, "job-42", result.JobID)
	case err := <-errCh:
		require.FailNow(t, "received unexpected error", err.Error())
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for async result")
	}
}

func TestOrchestratorResume(t *testing.T) {
	var pollCount int
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				pollCount++
				fmt.Fprintln(
					w,
					`{"status": "finished", "status_code": 0,` +
						` "results": [{"label": "ghz", "samples": {"11": 9}}]}`,
				)
			},
		),
	)
	defer server.Close()

	registry := NewDriverRegistry()
	registry.Register(
		"fake",
		func() Driver {
			return &fakeDriver{}
		},
	)

	// Simulate a handle recovered in a brand new process
	handleBytes, err := NewJobHandle(
		"fake",
		"job-42",
		fmt.Sprintf("%s/api/jobs/job-42", server.URL),
		map[string]string{"Content-Type": "application/json"},
		time.Millisecond,
	).Serialize()
	require.NoError(t, err)
	handle, err := DeserializeJobHandle(handleBytes)
	require.NoError(t, err)

	result, err := NewOrchestrator(false).Resume(
		context.Background(),
		registry,
		BackendConfig{"base_url": server.URL},
		handle,
	)
	require.NoError(t, err)
	require.Equal(t, 1, pollCount)
	require.True(t, handle.Resolved)
	require.Equal(t, 9, result.Executions[0].Samples["11"])
}

func TestResumeResolvedHandleIssuesNoRequests(t *testing.T) {
	var requestCount int
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				requestCount++
			},
		),
	)
	defer server.Close()

	result := NewResultSet("job-42", []ExecutionResult{})
	handle := NewJobHandle(
		"fake",
		"job-42",
		fmt.Sprintf("%s/api/jobs/job-42", server.URL),
		nil,
		time.Millisecond,
	)
	handle.Resolved = true
	handle.Result = result

	// The empty registry proves the driver is never even looked up
	got, err := NewOrchestrator(false).Resume(
		context.Background(),
		NewDriverRegistry(),
		BackendConfig{},
		handle,
	)
	require.NoError(t, err)
	require.Equal(t, result, got)
	require.Equal(t, 0, requestCount)
}
