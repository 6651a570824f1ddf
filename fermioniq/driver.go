package fermioniq

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rfonseca/qjob"
	"github.com/rfonseca/qjob/internal/restmachinery"
	"github.com/rfonseca/qjob/internal/version"
	"github.com/rfonseca/qjob/meta"
)

// Name is the name under which this driver should be registered.
const Name = "fermioniq"

// Submitted jobs never finish faster than this, so polling more often only
// wastes requests.
const pollingInterval = time.Second

const statusFinished = "finished"

type jobPayload struct {
	Circuit        [][2]string       `json:"circuit"`
	Config         []json.RawMessage `json:"config,omitempty"`
	NoiseModel     []json.RawMessage `json:"noise_model,omitempty"`
	VerbosityLevel int               `json:"verbosity_level"`
	ProjectID      string            `json:"project_id"`
}

type jobStatus struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
}

type driver struct {
	config qjob.BackendConfig
	tokens *tokenManager
	client *restmachinery.BaseClient
}

// New returns an uninitialized driver for the Fermioniq emulator service.
func New(allowInsecure bool) qjob.Driver {
	return &driver{
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

func (d *driver) Name() string {
	return Name
}

func (d *driver) Initialize(
	ctx context.Context,
	config qjob.BackendConfig,
) error {
	creds, err := credentialsFromEnvironment()
	if err != nil {
		return meta.NewErrConfiguration(err.Error())
	}
	d.config = resolveConfig(config)
	d.tokens = &tokenManager{
		client:   d.client,
		loginURL: fmt.Sprintf("%s/api/login", d.config.Value(cfgURLKey)),
		creds:    creds,
	}
	return d.tokens.refresh(ctx, true)
}

func (d *driver) Headers() map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
		"User-Agent":   fmt.Sprintf("qjob/%s", version.Version()),
	}
	if apiKey := d.config.Value(cfgAPIKeyKey); apiKey != "" {
		headers["x-functions-key"] = apiKey
	}
	if d.tokens != nil {
		if token := d.tokens.snapshot(); token.Populated() {
			headers["Authorization"] = fmt.Sprintf("Bearer %s", token.Token)
		}
	}
	return headers
}

func (d *driver) CreateJob(
	executions []qjob.KernelExecution,
) (*qjob.JobRequest, error) {
	if len(executions) == 0 {
		return nil, errors.New("no kernel executions to submit")
	}
	payload := jobPayload{
		VerbosityLevel: 1,
	}
	for _, execution := range executions {
		payload.Circuit = append(
			payload.Circuit,
			[2]string{execution.Format, execution.Code},
		)
		if d.config.Exists(cfgRemoteConfigKey) {
			payload.Config = append(
				payload.Config,
				json.RawMessage(d.config.Value(cfgRemoteConfigKey)),
			)
		}
		if d.config.Exists(cfgNoiseModelKey) {
			payload.NoiseModel = append(
				payload.NoiseModel,
				json.RawMessage(d.config.Value(cfgNoiseModelKey)),
			)
		}
	}
	return &qjob.JobRequest{
		SubmitURL: fmt.Sprintf("%s/api/jobs", d.config.Value(cfgURLKey)),
		Headers:   d.Headers(),
		Payload:   payload,
	}, nil
}

func (d *driver) ExtractJobID(submitResponse []byte) (string, error) {
	resp := struct {
		ID string `json:"id"`
	}{}
	if err := json.Unmarshal(submitResponse, &resp); err != nil {
		return "", errors.Wrap(err, "error unmarshaling submission response")
	}
	if resp.ID == "" {
		return "", meta.NewErrProtocol(
			"id",
			"submission response contained no job id",
		)
	}
	return resp.ID, nil
}

func (d *driver) GetJobPath(jobID string) string {
	return fmt.Sprintf("%s/api/jobs/%s", d.config.Value(cfgURLKey), jobID)
}

func (d *driver) GetJobPathFromResponse(
	submitResponse []byte,
) (string, error) {
	jobID, err := d.ExtractJobID(submitResponse)
	if err != nil {
		return "", err
	}
	return d.GetJobPath(jobID), nil
}

// JobIsDone collapses the service's two raw fields into the three states
// that matter: terminal success, terminal failure, and still in flight. A
// job that finished with a non-zero status code is a terminal failure, not
// a keep-polling state.
func (d *driver) JobIsDone(pollResponse []byte) (bool, error) {
	status := jobStatus{}
	if err := json.Unmarshal(pollResponse, &status); err != nil {
		return false, errors.Wrap(err, "error unmarshaling poll response")
	}
	if status.Status != statusFinished {
		return false, nil
	}
	if status.StatusCode != 0 {
		return false, meta.NewErrJobExecution(status.ID, status.StatusCode)
	}
	return true, nil
}

func (d *driver) NextResultPollingInterval(
	pollResponse []byte,
) time.Duration {
	return pollingInterval
}

func (d *driver) ProcessResults(
	terminalResponse []byte,
	jobID string,
) (*qjob.ResultSet, error) {
	resp := struct {
		Results []qjob.ExecutionResult `json:"results"`
	}{}
	if err := json.Unmarshal(terminalResponse, &resp); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling terminal response")
	}
	if resp.Results == nil {
		return nil, meta.NewErrProtocol(
			"results",
			fmt.Sprintf("terminal response for job %q contained no results", jobID),
		)
	}
	return qjob.NewResultSet(jobID, resp.Results), nil
}

func (d *driver) RefreshToken(ctx context.Context, force bool) error {
	if d.tokens == nil {
		return meta.NewErrConfiguration("the driver has not been initialized")
	}
	return d.tokens.refresh(ctx, force)
}
