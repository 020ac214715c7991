package memcached

import (
	"github.com/bradfitz/gomemcache/memcache"
	stats "github.com/lyft/gostats"
	logger "github.com/sirupsen/logrus"

	"github.com/akgarg/urlshortener-gateway/src/limiter"
	"github.com/akgarg/urlshortener-gateway/src/settings"
)

func newMemcacheFromSettings(s settings.Settings) *memcache.Client {
	if len(s.MemcacheHostPort) == 0 {
		panic(MemcacheError("MEMCACHE_HOST_PORT must be set when BACKEND_TYPE is memcache"))
	}
	logger.Warnf("connecting to memcache on %v", s.MemcacheHostPort)

	client := memcache.New(s.MemcacheHostPort...)
	client.MaxIdleConns = s.MemcacheMaxIdleConns
	client.Timeout = s.MemcacheTimeout
	return client
}

func NewRateLimiterCacheImplFromSettings(s settings.Settings, scope stats.Scope) limiter.RateLimitCache {
	return NewFixedRateLimitCacheImpl(CollectStats(newMemcacheFromSettings(s), scope.Scope("memcache")))
}
