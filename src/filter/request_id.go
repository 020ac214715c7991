package filter

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/akgarg/urlshortener-gateway/src/reqctx"
)

// RequestId makes sure every request carries a correlation id: the caller's when it sent
// a non-empty one, a fresh uuid otherwise. The id is set on the request forwarded upstream
// and on the response, and a RequestContext holding it is attached to the request context.
func RequestId(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIdHeader)
		if strings.TrimSpace(id) == "" {
			id = uuid.NewString()
		}

		r.Header.Set(RequestIdHeader, id)
		w.Header().Set(RequestIdHeader, id)

		rc := reqctx.New(id)
		next.ServeHTTP(w, r.WithContext(reqctx.WithRequestContext(r.Context(), rc)))
	})
}

// requestContext returns the request's RequestContext, attaching a new one when a stage
// runs without RequestId in front of it.
func requestContext(r *http.Request) (*reqctx.RequestContext, *http.Request) {
	if rc := reqctx.FromContext(r.Context()); rc != nil {
		return rc, r
	}
	rc := reqctx.New(r.Header.Get(RequestIdHeader))
	return rc, r.WithContext(reqctx.WithRequestContext(r.Context(), rc))
}
