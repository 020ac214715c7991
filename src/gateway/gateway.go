package gateway

import (
	"net/http"

	"github.com/gorilla/mux"
	logger "github.com/sirupsen/logrus"

	"github.com/akgarg/urlshortener-gateway/src/auth"
	"github.com/akgarg/urlshortener-gateway/src/config"
	"github.com/akgarg/urlshortener-gateway/src/discovery"
	"github.com/akgarg/urlshortener-gateway/src/filter"
	"github.com/akgarg/urlshortener-gateway/src/limiter"
	"github.com/akgarg/urlshortener-gateway/src/metrics"
	"github.com/akgarg/urlshortener-gateway/src/proxy"
	"github.com/akgarg/urlshortener-gateway/src/stats"
	"github.com/akgarg/urlshortener-gateway/src/utils"
)

// Auth bundles the auth service clients the admission stages call.
type Auth struct {
	ServiceName string
	Validator   auth.TokenValidator
	Verifier    auth.AdminVerifier
}

func notFound(w http.ResponseWriter, r *http.Request) {
	filter.WriteErrorEnvelope(w, r, http.StatusNotFound, filter.NotFoundMessage)
}

func routeMatcher(route *config.Route) mux.MatcherFunc {
	return func(r *http.Request, _ *mux.RouteMatch) bool {
		return utils.MatchAntPattern(route.Pattern, r.URL.Path)
	}
}

// NewRouter wires the admission pipeline in front of every route of gateway.
//
// Global stages run for every request in this order: correlation id, request logging,
// metrics, admin authentication, authorization. Each route then runs its rate limit,
// token authentication when the route requires a token, and finally the proxy.
// Routes are tried in table order, the first match wins. A path no route matches gets
// a 404 envelope.
func NewRouter(router *mux.Router, gateway *config.GatewayConfig, engine limiter.Engine, resolver discovery.Resolver,
	authClients Auth, forwarder *proxy.Forwarder, manager stats.Manager) *mux.Router {
	if router == nil {
		router = mux.NewRouter()
	}

	router.Use(
		filter.RequestId,
		filter.RequestLogging,
		metrics.NewServerReporter(manager).Middleware(),
		filter.AdminAuthentication(gateway, authClients.Verifier, manager.NewAdminStats()),
		filter.Authorization(gateway),
	)
	// Middleware only wraps matched routes; a table without a catch-all still answers
	// unmatched paths with a correlation id and a log line.
	router.NotFoundHandler = filter.RequestId(filter.RequestLogging(http.HandlerFunc(notFound)))

	backendStats := manager.NewBackendStats()
	tokenStats := manager.NewTokenStats()
	for i := range gateway.Routes {
		route := &gateway.Routes[i]

		var handler http.Handler = forwarder.Handler(route)
		if route.RequireToken {
			handler = filter.TokenAuthentication(resolver, authClients.ServiceName, authClients.Validator, tokenStats)(handler)
		}
		handler = filter.RateLimit(route, engine, backendStats)(handler)

		router.MatcherFunc(routeMatcher(route)).Name(route.Class).Handler(handler)
		logger.Debugf("registered route %s: %s -> %s", route.Class, route.Pattern, route.Service)
	}

	return router
}
