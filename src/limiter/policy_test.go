package limiter_test

import (
	"testing"
	"time"

	gostats "github.com/lyft/gostats"
	"github.com/stretchr/testify/assert"

	"github.com/akgarg/urlshortener-gateway/src/config"
	"github.com/akgarg/urlshortener-gateway/src/limiter"
	"github.com/akgarg/urlshortener-gateway/src/settings"
	"github.com/akgarg/urlshortener-gateway/src/stats"
)

type fakeSnapshot map[string]string

func (f fakeSnapshot) Get(key string) string {
	return f[key]
}

func newStatManager() stats.Manager {
	return stats.NewStatManager(gostats.NewStore(gostats.NewNullSink(), false), settings.Settings{})
}

func testRoutes() []config.Route {
	return []config.Route{
		{Class: "auth", Pattern: "/api/v1/auth/**", Service: "auth",
			RateLimit: &config.RouteRateLimit{Strategy: config.StrategyClientIp, RequestsPerWindow: "10"}},
		{Class: "profile", Pattern: "/api/v1/profiles/**", Service: "profile",
			RateLimit: &config.RouteRateLimit{Strategy: config.StrategyUserId, RequestsPerWindow: "10"}},
		{Class: "unset", Pattern: "/api/v1/unset/**", Service: "unset",
			RateLimit: &config.RouteRateLimit{Strategy: config.StrategyClientIp}},
		{Class: "payment", Pattern: "/api/v1/payments/**", Service: "payment"},
	}
}

func TestPolicyTableFromRouteTable(t *testing.T) {
	assert := assert.New(t)
	table := limiter.NewPolicyTable(testRoutes(), time.Minute, 1, newStatManager())

	assert.Equal(3, table.Len())

	auth, ok := table.Get("auth")
	assert.True(ok)
	assert.Equal(uint32(10), auth.Limit)
	assert.Equal(time.Minute, auth.Window)
	assert.Equal(config.StrategyClientIp, auth.Strategy)

	unset, ok := table.Get("unset")
	assert.True(ok)
	assert.Equal(uint32(1), unset.Limit)

	_, ok = table.Get("payment")
	assert.False(ok)
}

func TestPolicyTableOverrides(t *testing.T) {
	assert := assert.New(t)
	table := limiter.NewPolicyTable(testRoutes(), time.Minute, 1, newStatManager(),
		limiter.RuntimeOverrides(fakeSnapshot{"limits.auth": "25\n"}),
		limiter.MapOverrides{"auth": "99", "profile": "abc", "unset": "7"})

	auth, _ := table.Get("auth")
	assert.Equal(uint32(25), auth.Limit)

	profile, _ := table.Get("profile")
	assert.Equal(limiter.BlockingLimit, profile.Limit)

	unset, _ := table.Get("unset")
	assert.Equal(uint32(7), unset.Limit)
}

func TestParseLimit(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(uint32(5), limiter.ParseLimit("r", "", "test", 5))
	assert.Equal(uint32(5), limiter.ParseLimit("r", "  ", "test", 5))
	assert.Equal(uint32(12), limiter.ParseLimit("r", " 12 ", "test", 5))
	assert.Equal(limiter.BlockingLimit, limiter.ParseLimit("r", "-3", "test", 5))
	assert.Equal(limiter.BlockingLimit, limiter.ParseLimit("r", "ten", "test", 5))
	assert.Equal(limiter.BlockingLimit, limiter.ParseLimit("r", "99999999999", "test", 5))
}
