package filter

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/akgarg/urlshortener-gateway/src/auth"
	"github.com/akgarg/urlshortener-gateway/src/discovery"
	"github.com/akgarg/urlshortener-gateway/src/identity"
	"github.com/akgarg/urlshortener-gateway/src/stats"
)

const AuthorizationHeader = "Authorization"

// BearerToken extracts the token of a single "Bearer <token>" Authorization header.
// Any other scheme, a repeated header or a token with whitespace counts as absent.
func BearerToken(header http.Header) (string, bool) {
	values := header.Values(AuthorizationHeader)
	if len(values) != 1 {
		return "", false
	}

	token, ok := strings.CutPrefix(values[0], "Bearer ")
	if !ok || token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// TokenAuthentication admits only requests whose bearer token the auth service accepts
// for the caller's user id. The auth service instances are resolved for every request.
func TokenAuthentication(resolver discovery.Resolver, authService string, validator auth.TokenValidator, s stats.TokenStats) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, r := requestContext(r)

			userId := identity.UserID(r.Header)
			token, ok := BearerToken(r.Header)
			if !ok || userId == "" {
				s.Missing.Inc()
				rc.Log().Infof("token validation failed for %s: user id or bearer token missing", r.URL.Path)
				writeErrorResponse(w, unauthenticatedResponse)
				return
			}
			rc.UserID = userId

			endpoints, err := resolver.Instances(r.Context(), authService)
			if err != nil {
				s.Error.Inc()
				rc.Log().Warnf("resolving %s failed: %s", authService, err)
			}

			if !validator.Validate(r.Context(), userId, token, endpoints) {
				s.Invalid.Inc()
				rc.Log().Infof("token validation failed for %s", r.URL.Path)
				writeErrorResponse(w, unauthenticatedResponse)
				return
			}

			s.Valid.Inc()
			next.ServeHTTP(w, r)
		})
	}
}
