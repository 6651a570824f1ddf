package fermioniq

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/rfonseca/qjob"
	"github.com/rfonseca/qjob/internal/restmachinery"
	"github.com/rfonseca/qjob/meta"
)

type loginRequest struct {
	AccessTokenID     string `json:"access_token_id"`
	AccessTokenSecret string `json:"access_token_secret"`
}

// tokenManager owns the bearer token shared by every request one driver
// instance issues. Refreshes are serialized by a mutex so two concurrent
// logins never race to overwrite the token; reads take a snapshot and may
// observe a token that is about to be replaced, which is acceptable since
// an unauthorized response simply triggers another refresh.
type tokenManager struct {
	client   *restmachinery.BaseClient
	loginURL string
	creds    credentials
	mu       sync.RWMutex
	token    qjob.AuthToken
}

func (t *tokenManager) refresh(ctx context.Context, force bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !force && t.token.Populated() && !t.token.Expired(time.Now()) {
		return nil
	}
	token := qjob.AuthToken{}
	if err := t.client.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPost,
			URL:    t.loginURL,
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
			ReqBodyObj: loginRequest{
				AccessTokenID:     t.creds.AccessTokenID,
				AccessTokenSecret: t.creds.AccessTokenSecret,
			},
			RespObj: &token,
		},
	); err != nil {
		if _, ok := err.(*meta.ErrAuthentication); ok {
			return err
		}
		return meta.NewErrAuthentication(err.Error())
	}
	if !token.Populated() {
		return meta.NewErrProtocol(
			"jwt_token",
			"login response contained no token",
		)
	}
	t.token = token
	return nil
}

func (t *tokenManager) snapshot() qjob.AuthToken {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}
