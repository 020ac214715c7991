package auth

import (
	"context"
	"errors"

	"github.com/akgarg/urlshortener-gateway/src/discovery"
)

const RequestIdHeader = "X-Request-ID"

// ErrAdminNotFound reports that the auth service does not know the user as an admin.
var ErrAdminNotFound = errors.New("admin not found")

// TokenValidator checks a bearer token with the auth service.
type TokenValidator interface {
	// Validate asks each endpoint in order until one gives a definitive answer.
	// @return true only if an endpoint confirmed the token belongs to userID.
	Validate(ctx context.Context, userID string, token string, endpoints []discovery.Instance) bool
}

// AdminVerifier resolves whether a user holds the admin role.
type AdminVerifier interface {
	// VerifyAdmin returns nil when the user is an admin, ErrAdminNotFound when the
	// auth service reports otherwise, or another error when the call failed.
	VerifyAdmin(ctx context.Context, userID string) error
}
