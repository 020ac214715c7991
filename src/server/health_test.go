package server_test

import (
	"net/http"
	"net/http/httptest"
	"os/signal"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akgarg/urlshortener-gateway/src/server"
)

func healthCode(hc *server.HealthChecker) (int, string) {
	recorder := httptest.NewRecorder()
	r, _ := http.NewRequest("GET", "http://1.2.3.4/healthcheck", nil)
	hc.ServeHTTP(recorder, r)
	return recorder.Code, recorder.Body.String()
}

func TestHealthCheck(t *testing.T) {
	defer signal.Reset(syscall.SIGTERM)
	assert := assert.New(t)

	hc := server.NewHealthChecker("gateway")

	code, body := healthCode(hc)
	assert.Equal(200, code)
	assert.Equal("OK", body)

	assert.NoError(hc.Fail(server.RedisHealthComponentName))
	code, _ = healthCode(hc)
	assert.Equal(500, code)
	assert.False(hc.IsHealthy())

	assert.NoError(hc.Ok(server.RedisHealthComponentName))
	code, _ = healthCode(hc)
	assert.Equal(200, code)
}

func TestHealthCheckNeedsAllComponents(t *testing.T) {
	defer signal.Reset(syscall.SIGTERM)
	assert := assert.New(t)

	hc := server.NewHealthChecker("gateway")
	hc.Fail(server.RedisHealthComponentName)
	hc.Fail(server.SigtermComponentName)

	hc.Ok(server.RedisHealthComponentName)
	assert.False(hc.IsHealthy())
}

func TestHealthCheckUnknownComponent(t *testing.T) {
	defer signal.Reset(syscall.SIGTERM)

	hc := server.NewHealthChecker("gateway")
	assert.EqualError(t, hc.Fail("config"), "Invalid component: config")
	assert.EqualError(t, hc.Ok("config"), "Invalid component: config")
	assert.True(t, hc.IsHealthy())
}
