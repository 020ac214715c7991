package limiter

import (
	"context"

	"github.com/coocood/freecache"
	logger "github.com/sirupsen/logrus"
)

// ContractError is raised when the engine is called with arguments no caller
// may pass. It is a bug, never a client rejection.
type ContractError string

func (e ContractError) Error() string {
	return string(e)
}

// Engine decides whether a request may pass its route's quota.
type Engine interface {
	// IsRateLimited counts one hit and reports whether it must be rejected.
	// A route class without a policy is never limited.
	// @param ctx supplies the request context.
	// @param routeClass supplies the matched route class.
	// @param pathPattern supplies the matched route pattern, never the literal path.
	// @param identifier supplies the caller identifier the route is keyed by.
	// @throws ContractError if pathPattern or identifier is empty.
	IsRateLimited(ctx context.Context, routeClass string, pathPattern string, identifier string) bool

	// Policy returns the policy the engine applies to a route class.
	Policy(routeClass string) (*RateLimitPolicy, bool)
}

type engineImpl struct {
	policies          *PolicyTable
	cache             RateLimitCache
	cacheKeyGenerator *CacheKeyGenerator
	localCache        *freecache.Cache
}

// NewEngine returns an engine counting in cache.
// @param localCache, when not nil, remembers keys known to be over limit until
//
//	their window resets so repeated rejections skip the store.
func NewEngine(policies *PolicyTable, cache RateLimitCache, localCache *freecache.Cache, cacheKeyPrefix string) Engine {
	return &engineImpl{
		policies:          policies,
		cache:             cache,
		cacheKeyGenerator: NewCacheKeyGenerator(cacheKeyPrefix),
		localCache:        localCache,
	}
}

func (this *engineImpl) Policy(routeClass string) (*RateLimitPolicy, bool) {
	return this.policies.Get(routeClass)
}

func (this *engineImpl) IsRateLimited(ctx context.Context, routeClass string, pathPattern string, identifier string) bool {
	policy, ok := this.policies.Get(routeClass)
	if pathPattern == "" || identifier == "" {
		if ok {
			policy.Stats.ContractViolation.Inc()
		}
		panic(ContractError("rate limit check requires a path pattern and an identifier"))
	}

	if !ok {
		logger.Debugf("no rate limit policy for route '%s'", routeClass)
		return false
	}

	key := this.cacheKeyGenerator.GenerateCacheKey(pathPattern, identifier)
	policy.Stats.TotalHits.Inc()

	if this.isOverLimitWithLocalCache(key) {
		policy.Stats.OverLimit.Inc()
		policy.Stats.OverLimitWithLocalCache.Inc()
		return true
	}

	status := this.cache.DoLimit(ctx, key, policy.Limit, policy.Window)
	logger.Debugf("cache key: %s current: %d limit: %d", key, status.Count, policy.Limit)

	if !status.OverLimit {
		policy.Stats.WithinLimit.Inc()
		return false
	}

	policy.Stats.OverLimit.Inc()
	if this.localCache != nil {
		// Whole seconds only, so the local entry never outlives the window.
		if ttl := int(status.ResetAfter.Seconds()); ttl > 0 {
			if err := this.localCache.Set([]byte(key), []byte{}, ttl); err != nil {
				logger.Errorf("Failing to set local cache key: %s", key)
			}
		}
	}
	return true
}

// Returns `true` in case local cache is enabled and contains value for provided cache key, `false` otherwise.
func (this *engineImpl) isOverLimitWithLocalCache(key string) bool {
	if this.localCache != nil {
		// Get returns the value or not found error.
		_, err := this.localCache.Get([]byte(key))
		if err == nil {
			return true
		}
	}
	return false
}
