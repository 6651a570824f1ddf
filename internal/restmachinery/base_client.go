package restmachinery

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rfonseca/qjob/meta"
)

// BaseClient provides the plumbing that every request to a remote
// job-execution service has in common. Drivers and the orchestrator compose
// it rather than talking to net/http directly.
type BaseClient struct {
	HTTPClient *http.Client
}

// ExecuteRequest submits a request and unmarshals the response body into
// req.RespObj if one was provided.
func (b *BaseClient) ExecuteRequest(
	ctx context.Context,
	req OutboundRequest,
) error {
	respBodyBytes, err := b.SubmitRequest(ctx, req)
	if err != nil {
		return err
	}
	if req.RespObj != nil {
		if err := json.Unmarshal(respBodyBytes, req.RespObj); err != nil {
			return errors.Wrap(err, "error unmarshaling response body")
		}
	}
	return nil
}

// SubmitRequest submits a request and returns the raw response body so that
// callers needing driver-specific decoding can do their own.
func (b *BaseClient) SubmitRequest(
	ctx context.Context,
	req OutboundRequest,
) ([]byte, error) {
	var reqBodyReader io.Reader
	if req.ReqBodyObj != nil {
		switch rb := req.ReqBodyObj.(type) {
		case []byte:
			reqBodyReader = bytes.NewBuffer(rb)
		default:
			reqBodyBytes, err := json.Marshal(req.ReqBodyObj)
			if err != nil {
				return nil, errors.Wrap(err, "error marshaling request body")
			}
			reqBodyReader = bytes.NewBuffer(reqBodyBytes)
		}
	}

	r, err := http.NewRequest(req.Method, req.URL, reqBodyReader)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error creating request %s %s",
			req.Method,
			req.URL,
		)
	}
	r = r.WithContext(ctx)
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}

	resp, err := b.HTTPClient.Do(r)
	if err != nil {
		return nil, errors.Wrap(err, "error invoking remote service")
	}
	defer resp.Body.Close()

	if (req.SuccessCode == 0 && resp.StatusCode != http.StatusOK) ||
		(req.SuccessCode != 0 && resp.StatusCode != req.SuccessCode) {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, meta.NewErrAuthentication(
				"the remote service rejected the request's credentials",
			)
		default:
			return nil, errors.Errorf(
				"received %d from remote service",
				resp.StatusCode,
			)
		}
	}

	respBodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "error reading response body")
	}
	return respBodyBytes, nil
}
