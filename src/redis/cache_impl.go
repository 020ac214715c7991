package redis

import (
	gostats "github.com/lyft/gostats"

	"github.com/akgarg/urlshortener-gateway/src/limiter"
	"github.com/akgarg/urlshortener-gateway/src/settings"
)

func NewRateLimiterCacheImplFromSettings(s settings.Settings, scope gostats.Scope, health HealthReporter) limiter.RateLimitCache {
	client := NewClientImpl(scope.Scope("redis_pool"), s.RedisTls, s.RedisAuth, s.RedisSocketType, s.RedisType, s.RedisUrl,
		s.RedisPoolSize, s.RedisPipelineWindow, s.RedisPipelineLimit, s.RedisTimeout, health)
	return NewFixedRateLimitCacheImpl(client)
}
