package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/akgarg/urlshortener-gateway/src/discovery"
)

type verifyAdminRequest struct {
	UserID string `json:"user_id"`
}

type httpAdminVerifier struct {
	client   rpcClient
	resolver discovery.Resolver
	service  string
	path     string
}

func (this *httpAdminVerifier) VerifyAdmin(ctx context.Context, userID string) error {
	instances, err := this.resolver.Instances(ctx, this.service)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", this.service, err)
	}
	if len(instances) == 0 {
		return fmt.Errorf("resolving %s: %w", this.service, discovery.ErrNoInstances)
	}

	url := instances[0].BaseURL() + this.path
	status, success, err := this.client.post(ctx, "Verify Admin", url, verifyAdminRequest{UserID: userID})
	if err != nil {
		return err
	}

	switch {
	case status == http.StatusNotFound:
		return ErrAdminNotFound
	case status >= 200 && status < 300 && success:
		return nil
	case status >= 200 && status < 300:
		return ErrAdminNotFound
	default:
		return fmt.Errorf("admin verification answered %d", status)
	}
}

// NewHttpAdminVerifier posts {"user_id"} to path on the first discovered instance of service.
func NewHttpAdminVerifier(resolver discovery.Resolver, service string, path string, timeout time.Duration) AdminVerifier {
	return &httpAdminVerifier{
		client:   newRpcClient(timeout),
		resolver: resolver,
		service:  service,
		path:     path,
	}
}
