package proxy

import (
	"context"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akgarg/urlshortener-gateway/src/config"
	"github.com/akgarg/urlshortener-gateway/src/discovery"
	"github.com/akgarg/urlshortener-gateway/src/filter"
	"github.com/akgarg/urlshortener-gateway/src/reqctx"
)

type targetKey struct{}

// Forwarder sends admitted requests to an instance of their route's service.
type Forwarder struct {
	resolver  discovery.Resolver
	transport http.RoundTripper

	lock    sync.Mutex
	cursors map[string]*uint64
}

// NewForwarder returns a forwarder whose upstream calls, headers included, are bounded by timeout.
func NewForwarder(resolver discovery.Resolver, timeout time.Duration) *Forwarder {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}).DialContext
	transport.ResponseHeaderTimeout = timeout

	return &Forwarder{
		resolver:  resolver,
		transport: transport,
		cursors:   map[string]*uint64{},
	}
}

func (this *Forwarder) cursor(service string) *uint64 {
	this.lock.Lock()
	defer this.lock.Unlock()
	c, ok := this.cursors[service]
	if !ok {
		c = new(uint64)
		this.cursors[service] = c
	}
	return c
}

// pick rotates through instances, one per call.
func (this *Forwarder) pick(service string, instances []discovery.Instance) discovery.Instance {
	n := atomic.AddUint64(this.cursor(service), 1) - 1
	return instances[n%uint64(len(instances))]
}

func targetURL(instance discovery.Instance) *url.URL {
	return &url.URL{
		Scheme: instance.Scheme,
		Host:   net.JoinHostPort(instance.Host, strconv.Itoa(instance.Port)),
	}
}

func unavailable(w http.ResponseWriter, r *http.Request) {
	filter.WriteErrorEnvelope(w, r, http.StatusServiceUnavailable, filter.ServiceUnavailableMessage)
}

// Handler forwards to route's service, rewriting the path when the route declares a rewrite.
func (this *Forwarder) Handler(route *config.Route) http.Handler {
	reverseProxy := &httputil.ReverseProxy{
		Transport: this.transport,
		Rewrite: func(pr *httputil.ProxyRequest) {
			target := pr.In.Context().Value(targetKey{}).(*url.URL)
			pr.SetURL(target)
			pr.Out.URL.Path = route.Rewrite.Apply(pr.In.URL.Path)
			pr.Out.URL.RawPath = ""

			// Keep the caller's proxy chain.
			if xff, ok := pr.In.Header["X-Forwarded-For"]; ok {
				pr.Out.Header["X-Forwarded-For"] = xff
			}
			pr.SetXForwarded()
		},
		// The gateway's correlation id wins over whatever the upstream echoed.
		ModifyResponse: func(res *http.Response) error {
			if reqctx.CorrelationID(res.Request.Context()) != "" {
				res.Header.Del(filter.RequestIdHeader)
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			if r.Context().Err() == context.Canceled {
				reqctx.Logger(r.Context()).Debugf("caller went away during upstream call to %s", route.Service)
			} else {
				reqctx.Logger(r.Context()).Warnf("upstream call to %s failed: %s", route.Service, err)
			}
			unavailable(w, r)
		},
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		instances, err := this.resolver.Instances(r.Context(), route.Service)
		if err != nil || len(instances) == 0 {
			reqctx.Logger(r.Context()).Warnf("no instance of %s available: %v", route.Service, err)
			unavailable(w, r)
			return
		}

		if id := reqctx.CorrelationID(r.Context()); id != "" {
			w.Header().Set(filter.RequestIdHeader, id)
		}
		target := targetURL(this.pick(route.Service, instances))
		reverseProxy.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), targetKey{}, target)))
	})
}
