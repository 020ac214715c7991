package settings

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSettingsDefaults(t *testing.T) {
	assert := assert.New(t)
	os.Unsetenv("BACKEND_TYPE")
	os.Unsetenv("RATE_LIMIT_WINDOW")

	s := NewSettings()
	assert.Equal(8080, s.Port)
	assert.Equal(6070, s.DebugPort)
	assert.Equal("memory", s.BackendType)
	assert.Equal(time.Minute, s.RateLimitWindow)
	assert.Equal(uint32(1), s.RateLimitDefault)
	assert.Equal(30*time.Second, s.RateLimitSweepInterval)
	assert.Equal("urlshortener-auth-service", s.AuthServiceName)
	assert.Equal("/api/v1/auth/verify-admin", s.AuthVerifyAdminPath)
}

func TestSettingsFromEnvironment(t *testing.T) {
	assert := assert.New(t)
	t.Setenv("BACKEND_TYPE", "redis")
	t.Setenv("RATE_LIMIT_OVERRIDES", "auth:20,profile:abc")
	t.Setenv("DISCOVERY_STATIC_INSTANCES", "urlshortener-auth-service=http://auth:8081;http://auth-2:8081,urlshortener-service=http://core:8080")

	s := NewSettings()
	assert.Equal("redis", s.BackendType)
	assert.Equal(map[string]string{"auth": "20", "profile": "abc"}, s.RateLimitOverrides)
	assert.Len(s.DiscoveryStaticInstances, 2)
}

func TestSettingsOptions(t *testing.T) {
	s := NewSettings()
	for _, opt := range []Option{
		BackendType("memcache"),
		RateLimitWindow(time.Second),
		StaticInstances("a=http://a:1"),
	} {
		opt(&s)
	}

	assert.Equal(t, "memcache", s.BackendType)
	assert.Equal(t, time.Second, s.RateLimitWindow)
	assert.Equal(t, []string{"a=http://a:1"}, s.DiscoveryStaticInstances)
}
