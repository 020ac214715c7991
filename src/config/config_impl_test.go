package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectConfigPanic(t *testing.T, call func(), expectedError string) {
	t.Helper()
	assert := assert.New(t)
	defer func() {
		e := recover()
		assert.NotNil(e)
		assert.Equal(expectedError, e.(GatewayConfigError).Error())
	}()

	call()
}

func TestDefaultRouteTable(t *testing.T) {
	assert := assert.New(t)
	cfg := Default()

	assert.Len(cfg.Routes, 9)
	assert.Len(cfg.AdminRules, 4)

	cases := map[string]string{
		"/api/v1/payments/paypal/webhook/capture": "payment-webhook",
		"/api/v1/payments/checkout":               "payment",
		"/api/v1/subscriptions/packs/gold":        "subscription-packs",
		"/api/v1/subscriptions":                   "subscription",
		"/api/v1/urlshortener/abc":                "url-shortener",
		"/api/v1/statistics/urls":                 "statistics",
		"/api/v1/profiles/me":                     "profile",
		"/api/v1/auth/login":                      "auth",
		"/r/abc123":                               "generic",
	}
	for path, class := range cases {
		route, ok := cfg.Match(path)
		require.True(t, ok, path)
		assert.Equal(class, route.Class, path)
	}

	route, _ := cfg.Match("/api/v1/urlshortener/abc")
	assert.True(route.RequireToken)
	assert.Equal(StrategyUserId, route.RateLimit.Strategy)
	assert.Equal("10", route.RateLimit.RequestsPerWindow)

	route, _ = cfg.Match("/api/v1/auth/login")
	assert.False(route.RequireToken)
	assert.Equal(StrategyClientIp, route.RateLimit.Strategy)
	assert.Equal("urlshortener-auth-service", route.Service)
}

func TestAuthRewrite(t *testing.T) {
	assert := assert.New(t)
	route, ok := Default().Match("/api/v1/auth/login")
	require.True(t, ok)

	assert.Equal("/auth/v1/login", route.Rewrite.Apply("/api/v1/auth/login"))
	assert.Equal("/auth/v2/verify/otp", route.Rewrite.Apply("/api/v2/auth/verify/otp"))
	assert.Equal("/unrelated", route.Rewrite.Apply("/unrelated"))

	var none *Rewrite
	assert.Equal("/kept", none.Apply("/kept"))
}

func TestLoadErrors(t *testing.T) {
	expectConfigPanic(t, func() { Load("empty.yaml", "routes: []") }, "empty.yaml: config file declares no routes")

	expectConfigPanic(t, func() {
		Load("dup.yaml", `
routes:
  - name: a
    pattern: /a/**
    service: svc
  - name: a
    pattern: /b/**
    service: svc
`)
	}, "dup.yaml: duplicate route 'a'")

	expectConfigPanic(t, func() {
		Load("strategy.yaml", `
routes:
  - name: a
    pattern: /a/**
    service: svc
    rate_limit:
      strategy: COOKIE
`)
	}, "strategy.yaml: route 'a' has invalid rate limit strategy 'COOKIE'")

	expectConfigPanic(t, func() {
		Load("admin.yaml", `
routes:
  - name: a
    pattern: /a/**
    service: svc
admin_endpoints:
  - method: FETCH
    pattern: /a
`)
	}, "admin.yaml: admin endpoint has invalid method 'FETCH'")

	expectConfigPanic(t, func() {
		Load("pattern.yaml", `
routes:
  - name: a
    pattern: a/**
    service: svc
`)
	}, "pattern.yaml: route 'a' pattern must start with '/'")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
routes:
  - name: only
    pattern: /**
    service: backend
admin_endpoints:
  - method: delete
    pattern: /admin/**
`), 0o644))

	cfg := LoadFile(path)
	assert.Len(t, cfg.Routes, 1)
	assert.Equal(t, AdminRule{Method: "DELETE", Pattern: "/admin/**"}, cfg.AdminRules[0])
	assert.Nil(t, cfg.Routes[0].RateLimit)

	assert.Len(t, LoadFile("").Routes, 9)
}

func TestIsAdminEndpoint(t *testing.T) {
	assert := assert.New(t)
	cfg := Default()

	assert.True(cfg.IsAdminEndpoint("POST", "/api/v1/subscriptions"))
	assert.True(cfg.IsAdminEndpoint("POST", "/api/v1/subscriptions/packs/gold"))
	assert.True(cfg.IsAdminEndpoint("DELETE", "/api/v1/subscriptions/packs/gold/1"))
	assert.False(cfg.IsAdminEndpoint("GET", "/api/v1/subscriptions/packs/gold"))
	assert.False(cfg.IsAdminEndpoint("POST", "/api/v1/subscriptions/active"))
	assert.False(cfg.IsAdminEndpoint("POST", "/api/v1/profiles/me"))
}
