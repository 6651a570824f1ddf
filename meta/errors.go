package meta

import "fmt"

// ErrConfiguration represents a required option or secret that was missing
// or malformed at driver initialization time. It is never retried.
type ErrConfiguration struct {
	TypeMeta `json:",inline"`
	Reason   string `json:"reason"`
}

func NewErrConfiguration(reason string) *ErrConfiguration {
	return &ErrConfiguration{
		TypeMeta: TypeMeta{
			APIVersion: APIVersion,
			Kind:       "ConfigurationError",
		},
		Reason: reason,
	}
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// ErrAuthentication represents a credential exchange that was rejected or
// unreachable. Fatal unless the caller explicitly retries the exchange.
type ErrAuthentication struct {
	TypeMeta `json:",inline"`
	Reason   string `json:"reason"`
}

func NewErrAuthentication(reason string) *ErrAuthentication {
	return &ErrAuthentication{
		TypeMeta: TypeMeta{
			APIVersion: APIVersion,
			Kind:       "AuthenticationError",
		},
		Reason: reason,
	}
}

func (e *ErrAuthentication) Error() string {
	return fmt.Sprintf("could not authenticate: %s", e.Reason)
}

// ErrProtocol represents a server response that violated the expected
// contract, e.g. a submission response missing its job id.
type ErrProtocol struct {
	TypeMeta `json:",inline"`
	// Field is the name of the missing or malformed response field.
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func NewErrProtocol(field, reason string) *ErrProtocol {
	return &ErrProtocol{
		TypeMeta: TypeMeta{
			APIVersion: APIVersion,
			Kind:       "ProtocolError",
		},
		Field:  field,
		Reason: reason,
	}
}

func (e *ErrProtocol) Error() string {
	return fmt.Sprintf(
		"protocol error involving response field %q: %s",
		e.Field,
		e.Reason,
	)
}

// ErrJobExecution represents a remote job that finished in a failure state.
// This is a domain-level failure, not a transport failure, and ends polling
// immediately.
type ErrJobExecution struct {
	TypeMeta `json:",inline"`
	JobID    string `json:"jobID,omitempty"`
	// StatusCode is the non-zero status code reported by the remote service.
	StatusCode int `json:"statusCode"`
}

func NewErrJobExecution(jobID string, statusCode int) *ErrJobExecution {
	return &ErrJobExecution{
		TypeMeta: TypeMeta{
			APIVersion: APIVersion,
			Kind:       "JobExecutionError",
		},
		JobID:      jobID,
		StatusCode: statusCode,
	}
}

func (e *ErrJobExecution) Error() string {
	if e.JobID == "" {
		return fmt.Sprintf("job finished with status code %d", e.StatusCode)
	}
	return fmt.Sprintf(
		"job %q finished with status code %d",
		e.JobID,
		e.StatusCode,
	)
}
