package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lyft/goruntime/loader"
	stats "github.com/lyft/gostats"
)

type Server interface {
	/**
	 * Starts the gateway and debug listeners and blocks until the server
	 * has been stopped and in-flight requests have drained.
	 */
	Start()

	/**
	 * Returns the root of the stats tree for the server
	 */
	Scope() stats.Scope

	/**
	 * Add an HTTP endpoint to the local debug port.
	 */
	AddDebugHttpEndpoint(path string, help string, handler http.HandlerFunc)

	/**
	 * Returns the router gateway routes are registered on. It sits behind
	 * the health check and sees every other path.
	 */
	GatewayRouter() *mux.Router

	/**
	 * Returns the runtime loader, nil when no runtime path is configured.
	 */
	Runtime() loader.IFace

	/**
	 * Returns the health checker for the server.
	 */
	HealthChecker() *HealthChecker

	/**
	 * Stops accepting requests and waits up to the shutdown grace period
	 * for in-flight requests.
	 */
	Stop()
}
