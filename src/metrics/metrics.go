package metrics

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/akgarg/urlshortener-gateway/src/stats"
	"github.com/akgarg/urlshortener-gateway/src/utils"
)

// ServerReporter records request counts, response times and rejections per route class.
type ServerReporter struct {
	manager stats.Manager
}

// NewServerReporter returns a ServerReporter object.
func NewServerReporter(manager stats.Manager) *ServerReporter {
	return &ServerReporter{
		manager: manager,
	}
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
		return route.GetName()
	}
	return "unmatched"
}

// Middleware is a mux middleware that reports metrics for the route serving each request.
func (r *ServerReporter) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			recorder := utils.NewStatusRecorder(w)

			next.ServeHTTP(recorder, req)

			s := r.manager.NewRouteStats(routeName(req))
			s.Requests.Inc()
			s.Duration.AddValue(float64(time.Since(start).Milliseconds()))
			switch recorder.Status() {
			case http.StatusBadRequest:
				s.BadRequest.Inc()
			case http.StatusUnauthorized:
				s.Unauthorized.Inc()
			case http.StatusForbidden:
				s.Forbidden.Inc()
			case http.StatusTooManyRequests:
				s.TooManyRequests.Inc()
			case http.StatusServiceUnavailable:
				s.ServiceUnavailable.Inc()
			}
		})
	}
}
