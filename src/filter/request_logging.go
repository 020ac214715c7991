package filter

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	logger "github.com/sirupsen/logrus"

	"github.com/akgarg/urlshortener-gateway/src/identity"
	"github.com/akgarg/urlshortener-gateway/src/utils"
)

// RequestLogging logs every request once its response is complete.
func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := utils.NewStatusRecorder(w)

		next.ServeHTTP(recorder, r)

		if !logger.IsLevelEnabled(logger.InfoLevel) {
			return
		}

		route := ""
		if current := mux.CurrentRoute(r); current != nil {
			route = current.GetName()
		}
		clientIp := identity.ClientIP(r)
		if clientIp == "" {
			clientIp = "0.0.0.0"
		}
		logger.WithFields(logger.Fields{
			"request_id":       w.Header().Get(RequestIdHeader),
			"route":            route,
			"method":           r.Method,
			"path":             r.URL.Path,
			"client_ip":        clientIp,
			"status_code":      recorder.Status(),
			"response_time_ms": time.Since(start).Milliseconds(),
		}).Info("request completed")
	})
}
