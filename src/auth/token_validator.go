package auth

import (
	"context"
	"time"

	"github.com/akgarg/urlshortener-gateway/src/discovery"
	"github.com/akgarg/urlshortener-gateway/src/reqctx"
)

type validateTokenRequest struct {
	UserID    string `json:"user_id"`
	AuthToken string `json:"auth_token"`
}

type httpTokenValidator struct {
	client rpcClient
	path   string
}

func (this *httpTokenValidator) Validate(ctx context.Context, userID string, token string, endpoints []discovery.Instance) bool {
	log := reqctx.Logger(ctx)
	body := validateTokenRequest{UserID: userID, AuthToken: token}

	for _, endpoint := range endpoints {
		url := endpoint.BaseURL() + this.path
		status, success, err := this.client.post(ctx, "Validate Token", url, body)
		if err != nil {
			log.Debugf("token validation against %s failed: %s", endpoint, err)
			continue
		}
		if status >= 500 {
			log.Debugf("token validation against %s answered %d", endpoint, status)
			continue
		}
		return status >= 200 && status < 300 && success
	}

	if ctx.Err() != nil {
		log.Debugf("token validation abandoned: %s", ctx.Err())
	}
	return false
}

// NewHttpTokenValidator posts {"user_id", "auth_token"} to path on each candidate endpoint.
// @param timeout bounds each call, including reading the reply.
func NewHttpTokenValidator(path string, timeout time.Duration) TokenValidator {
	return &httpTokenValidator{
		client: newRpcClient(timeout),
		path:   path,
	}
}
