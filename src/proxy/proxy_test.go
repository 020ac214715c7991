package proxy_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akgarg/urlshortener-gateway/src/config"
	"github.com/akgarg/urlshortener-gateway/src/discovery"
	"github.com/akgarg/urlshortener-gateway/src/filter"
	"github.com/akgarg/urlshortener-gateway/src/proxy"
	mock_discovery "github.com/akgarg/urlshortener-gateway/test/mocks/discovery"
)

func instanceOf(t *testing.T, rawURL string) discovery.Instance {
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return discovery.Instance{Scheme: u.Scheme, Host: u.Hostname(), Port: port}
}

func routeOf(t *testing.T, class string) *config.Route {
	cfg := config.Default()
	for i := range cfg.Routes {
		if cfg.Routes[i].Class == class {
			return &cfg.Routes[i]
		}
	}
	t.Fatalf("no route %s", class)
	return nil
}

func TestForwardRewritesAuthRoute(t *testing.T) {
	assert := assert.New(t)
	controller := gomock.NewController(t)
	defer controller.Finish()

	var seenPath, seenQuery, seenRequestId, seenXff string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
		seenQuery = r.URL.RawQuery
		seenRequestId = r.Header.Get(filter.RequestIdHeader)
		seenXff = r.Header.Get("X-Forwarded-For")
		w.Header().Set(filter.RequestIdHeader, "upstream-id")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("created"))
	}))
	defer upstream.Close()

	resolver := mock_discovery.NewMockResolver(controller)
	resolver.EXPECT().Instances(gomock.Any(), "urlshortener-auth-service").Return([]discovery.Instance{instanceOf(t, upstream.URL)}, nil)

	handler := filter.RequestId(proxy.NewForwarder(resolver, time.Second).Handler(routeOf(t, "auth")))

	req := httptest.NewRequest("POST", "/api/v1/auth/login?next=home", nil)
	req.Header.Set(filter.RequestIdHeader, "abc-123")
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	assert.Equal(http.StatusCreated, recorder.Code)
	assert.Equal("created", recorder.Body.String())
	assert.Equal("/auth/v1/login", seenPath)
	assert.Equal("next=home", seenQuery)
	assert.Equal("abc-123", seenRequestId)
	assert.Equal("203.0.113.9, 192.0.2.1", seenXff)
	assert.Equal([]string{"abc-123"}, recorder.Header().Values(filter.RequestIdHeader))
}

func TestForwardKeepsPathWithoutRewrite(t *testing.T) {
	controller := gomock.NewController(t)
	defer controller.Finish()

	var seenPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenPath = r.URL.Path
	}))
	defer upstream.Close()

	resolver := mock_discovery.NewMockResolver(controller)
	resolver.EXPECT().Instances(gomock.Any(), "urlshortener-service").Return([]discovery.Instance{instanceOf(t, upstream.URL)}, nil)

	recorder := httptest.NewRecorder()
	proxy.NewForwarder(resolver, time.Second).Handler(routeOf(t, "url-shortener")).
		ServeHTTP(recorder, httptest.NewRequest("GET", "/api/v1/urlshortener/abc", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "/api/v1/urlshortener/abc", seenPath)
}

func TestForwardRoundRobin(t *testing.T) {
	controller := gomock.NewController(t)
	defer controller.Finish()

	var lock sync.Mutex
	hits := map[string]int{}
	newUpstream := func(name string) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lock.Lock()
			defer lock.Unlock()
			hits[name]++
		}))
	}
	a, b := newUpstream("a"), newUpstream("b")
	defer a.Close()
	defer b.Close()

	resolver := mock_discovery.NewMockResolver(controller)
	resolver.EXPECT().Instances(gomock.Any(), "urlshortener-service").
		Return([]discovery.Instance{instanceOf(t, a.URL), instanceOf(t, b.URL)}, nil).Times(4)

	handler := proxy.NewForwarder(resolver, time.Second).Handler(routeOf(t, "generic"))
	for i := 0; i < 4; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	}

	lock.Lock()
	defer lock.Unlock()
	assert.Equal(t, map[string]int{"a": 2, "b": 2}, hits)
}

func TestForwardUnreachableUpstream(t *testing.T) {
	assert := assert.New(t)
	controller := gomock.NewController(t)
	defer controller.Finish()

	closed := httptest.NewServer(http.NotFoundHandler())
	instance := instanceOf(t, closed.URL)
	closed.Close()

	resolver := mock_discovery.NewMockResolver(controller)
	resolver.EXPECT().Instances(gomock.Any(), "urlshortener-profile-service").Return([]discovery.Instance{instance}, nil)

	req := httptest.NewRequest("GET", "/api/v1/profiles/me", nil)
	req.Header.Set(filter.RequestIdHeader, "req-42")
	recorder := httptest.NewRecorder()
	filter.RequestId(proxy.NewForwarder(resolver, time.Second).Handler(routeOf(t, "profile"))).ServeHTTP(recorder, req)

	assert.Equal(http.StatusServiceUnavailable, recorder.Code)
	var body filter.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(503, body.StatusCode)
	assert.Equal("req-42", *body.RequestID)
	assert.Equal(filter.ServiceUnavailableMessage, body.ErrorMessage)
}

func TestForwardWithoutInstances(t *testing.T) {
	controller := gomock.NewController(t)
	defer controller.Finish()

	resolver := mock_discovery.NewMockResolver(controller)
	resolver.EXPECT().Instances(gomock.Any(), "urlshortener-payment-service").Return(nil, errors.New("no instances registered"))

	recorder := httptest.NewRecorder()
	proxy.NewForwarder(resolver, time.Second).Handler(routeOf(t, "payment")).
		ServeHTTP(recorder, httptest.NewRequest("GET", "/api/v1/payments/1", nil))

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}
