package filter

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/akgarg/urlshortener-gateway/src/config"
	"github.com/akgarg/urlshortener-gateway/src/identity"
	"github.com/akgarg/urlshortener-gateway/src/limiter"
	"github.com/akgarg/urlshortener-gateway/src/memcached"
	"github.com/akgarg/urlshortener-gateway/src/redis"
	"github.com/akgarg/urlshortener-gateway/src/stats"
)

type backendError struct {
	err error
}

func (e backendError) Error() string {
	return e.err.Error()
}

// One warning per interval while the store is down.
var backendWarnings = rate.Sometimes{Interval: 10 * time.Second}

// isRateLimited turns store failures raised by the backends into an error.
// Anything else, ContractError included, keeps unwinding.
func isRateLimited(ctx context.Context, engine limiter.Engine, routeClass string, pattern string, identifier string) (limited bool, finalError error) {
	defer func() {
		err := recover()
		if err == nil {
			return
		}

		switch t := err.(type) {
		case redis.RedisError:
			finalError = backendError{t}
		case memcached.MemcacheError:
			finalError = backendError{t}
		default:
			panic(err)
		}
	}()

	return engine.IsRateLimited(ctx, routeClass, pattern, identifier), nil
}

// RateLimit counts the request against its route's quota, keyed by the route pattern
// and the identifier the route's strategy selects.
func RateLimit(route *config.Route, engine limiter.Engine, s stats.BackendStats) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy, ok := engine.Policy(route.Class)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			rc, r := requestContext(r)
			var identifier string
			switch policy.Strategy {
			case config.StrategyUserId:
				identifier = identity.UserID(r.Header)
				if identifier == "" {
					rc.Log().Infof("rate limit on route %s needs a user id, none sent", route.Class)
					writeErrorResponse(w, userIdMissingResponse)
					return
				}
				rc.UserID = identifier
			default:
				identifier = identity.ClientIP(r)
				if identifier == "" {
					rc.Log().Infof("rate limit on route %s needs a client ip, none found", route.Class)
					writeErrorResponse(w, clientIpMissingResponse)
					return
				}
				rc.ClientIP = identifier
			}

			limited, err := isRateLimited(r.Context(), engine, route.Class, route.Pattern, identifier)
			if err != nil {
				s.Error.Inc()
				backendWarnings.Do(func() {
					rc.Log().Warnf("rate limit store failure, rejecting requests: %s", err)
				})
				WriteErrorEnvelope(w, r, http.StatusServiceUnavailable, ServiceUnavailableMessage)
				return
			}

			if limited {
				rc.Log().Infof("rate limit exceeded on route %s by '%s'", route.Class, identifier)
				writeErrorResponse(w, rateLimitExceededResponse)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
