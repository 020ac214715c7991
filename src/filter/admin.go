package filter

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/akgarg/urlshortener-gateway/src/auth"
	"github.com/akgarg/urlshortener-gateway/src/config"
	"github.com/akgarg/urlshortener-gateway/src/identity"
	"github.com/akgarg/urlshortener-gateway/src/reqctx"
	"github.com/akgarg/urlshortener-gateway/src/stats"
)

// AdminAuthentication resolves the caller's admin role on admin endpoints and records
// it once in the request context. It never rejects; Authorization does.
func AdminAuthentication(gateway *config.GatewayConfig, verifier auth.AdminVerifier, s stats.AdminStats) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !gateway.IsAdminEndpoint(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			rc, r := requestContext(r)
			if _, checked := rc.AdminOutcome(); checked {
				next.ServeHTTP(w, r)
				return
			}

			userId := identity.UserID(r.Header)
			if userId == "" {
				s.Skipped.Inc()
				rc.Log().Debugf("admin endpoint %s %s called without user id", r.Method, r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}
			rc.UserID = userId

			outcome := reqctx.AdminNotFound
			err := verifier.VerifyAdmin(r.Context(), userId)
			switch {
			case err == nil:
				s.Granted.Inc()
				outcome = reqctx.AdminGranted
			case errors.Is(err, auth.ErrAdminNotFound):
				s.NotFound.Inc()
			default:
				s.Error.Inc()
				rc.Log().Warnf("admin verification of '%s' failed, treating as not found: %s", userId, err)
			}

			rc.SetAdminOutcome(outcome)
			rc.Log().Infof("admin check of '%s': %s", userId, outcome)
			next.ServeHTTP(w, r)
		})
	}
}

// Authorization admits only ADMIN principals on admin endpoints and everything else elsewhere.
func Authorization(gateway *config.GatewayConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !gateway.IsAdminEndpoint(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			rc, r := requestContext(r)
			outcome, checked := rc.AdminOutcome()
			switch {
			case !checked:
				rc.Log().Infof("rejecting unauthenticated %s %s", r.Method, r.URL.Path)
				WriteErrorEnvelope(w, r, http.StatusUnauthorized, AuthenticationRequired)
			case outcome != reqctx.AdminGranted:
				rc.Log().Infof("rejecting %s %s for non admin '%s'", r.Method, r.URL.Path, rc.UserID)
				WriteErrorEnvelope(w, r, http.StatusForbidden, ForbiddenMessage)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
