package qjob

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// KernelExecution represents one compiled kernel to be executed remotely.
// The Code field is an opaque, already-compiled program payload; this layer
// never interprets it.
type KernelExecution struct {
	// Name is a human-readable label for the execution.
	Name string
	// Format identifies the encoding of the Code field, e.g. "openqasm2".
	Format string
	// Code is the compiled program payload.
	Code string
}

// JobRequest represents everything needed to submit one job to a remote
// service: where to POST, which headers to send, and the request body.
type JobRequest struct {
	SubmitURL string
	Headers   map[string]string
	Payload   interface{}
}

// Driver is the protocol adapter encapsulating one remote job-execution
// service's request/response shape. The Orchestrator drives any Driver
// through a full job lifecycle without special-casing variants.
type Driver interface {
	// Name returns the registry name of the driver variant.
	Name() string
	// Initialize resolves all required configuration and secrets into
	// internal state and performs one synchronous credential exchange to
	// obtain an initial token before returning. It returns a
	// *meta.ErrConfiguration if required secrets are missing (before any
	// network activity) or a *meta.ErrAuthentication if the credential
	// exchange itself fails.
	Initialize(ctx context.Context, config BackendConfig) error
	// Headers returns request headers as a deterministic function of the
	// current configuration and the current token. Headers are never cached
	// independently of the token, so a refreshed token is reflected
	// immediately.
	Headers() map[string]string
	// CreateJob batches all of the provided executions into one submission
	// request. It does not mutate driver state.
	CreateJob(executions []KernelExecution) (*JobRequest, error)
	// ExtractJobID reads the service-assigned job identifier out of a raw
	// submission response. It returns a *meta.ErrProtocol if the expected
	// field is absent.
	ExtractJobID(submitResponse []byte) (string, error)
	// GetJobPath deterministically constructs the URL for polling the
	// specified job.
	GetJobPath(jobID string) string
	// GetJobPathFromResponse constructs the polling URL directly from a raw
	// submission response. For the same job it yields a path identical to
	// GetJobPath's.
	GetJobPathFromResponse(submitResponse []byte) (string, error)
	// JobIsDone inspects a raw poll response and reports whether the job has
	// reached terminal success. A job that finished in a failure state
	// yields a *meta.ErrJobExecution carrying the remote status code; any
	// non-finished status yields (false, nil).
	JobIsDone(pollResponse []byte) (bool, error)
	// NextResultPollingInterval returns the minimum useful spacing before
	// the next poll.
	NextResultPollingInterval(pollResponse []byte) time.Duration
	// ProcessResults decodes a terminal response into a ResultSet. It must
	// be called only after JobIsDone has returned true for that response.
	ProcessResults(terminalResponse []byte, jobID string) (*ResultSet, error)
	// RefreshToken re-runs the credential exchange, replacing the stored
	// token atomically. At most one refresh is in flight per driver
	// instance; concurrent callers serialize. When force is false a token
	// that has not yet expired is left in place.
	RefreshToken(ctx context.Context, force bool) error
}

// DriverFactory is a function that returns a new, uninitialized Driver.
type DriverFactory func() Driver

// DriverRegistry maps driver names to factories. It is populated explicitly
// by the host application at startup rather than by module-load-time side
// effects, which keeps initialization order unsurprising and makes it easy
// to substitute fake drivers in tests.
type DriverRegistry struct {
	factories map[string]DriverFactory
}

// NewDriverRegistry returns an empty DriverRegistry.
func NewDriverRegistry() *DriverRegistry {
	return &DriverRegistry{
		factories: map[string]DriverFactory{},
	}
}

// Register adds a named driver factory to the registry, replacing any
// factory previously registered under the same name.
func (d *DriverRegistry) Register(name string, factory DriverFactory) {
	d.factories[name] = factory
}

// Get returns a new, uninitialized Driver for the specified name.
func (d *DriverRegistry) Get(name string) (Driver, error) {
	factory, ok := d.factories[name]
	if !ok {
		return nil, errors.Errorf("no driver is registered under name %q", name)
	}
	return factory(), nil
}
