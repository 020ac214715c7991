package stats

import (
	gostats "github.com/lyft/gostats"
	logger "github.com/sirupsen/logrus"

	"github.com/akgarg/urlshortener-gateway/src/settings"
	"github.com/akgarg/urlshortener-gateway/src/utils"
)

type ManagerImpl struct {
	store        gostats.Store
	rlStatsScope gostats.Scope
	routeScope   gostats.Scope
	adminScope   gostats.Scope
	tokenScope   gostats.Scope
	backendScope gostats.Scope
}

func NewStatManager(store gostats.Store, settings settings.Settings) *ManagerImpl {
	gatewayScope := store.ScopeWithTags("gateway", settings.ExtraTags)
	return &ManagerImpl{
		store:        store,
		rlStatsScope: gatewayScope.Scope("rate_limit"),
		routeScope:   gatewayScope.Scope("route"),
		adminScope:   gatewayScope.Scope("admin_verify"),
		tokenScope:   gatewayScope.Scope("token_validate"),
		backendScope: gatewayScope.Scope("backend"),
	}
}

func (this *ManagerImpl) GetStatsStore() gostats.Store {
	return this.store
}

// Create new rate limit stats for a route class.
// @param key supplies the route class.
// @return new stats.
func (this *ManagerImpl) NewStats(key string) RateLimitStats {
	ret := RateLimitStats{}
	key = utils.SanitizeStatName(key)
	logger.Debugf("Creating stats for key: '%s'", key)
	ret.Key = key
	ret.TotalHits = this.rlStatsScope.NewCounter(key + ".total_hits")
	ret.OverLimit = this.rlStatsScope.NewCounter(key + ".over_limit")
	ret.OverLimitWithLocalCache = this.rlStatsScope.NewCounter(key + ".over_limit_with_local_cache")
	ret.WithinLimit = this.rlStatsScope.NewCounter(key + ".within_limit")
	ret.ContractViolation = this.rlStatsScope.NewCounter(key + ".contract_violation")
	return ret
}

func (this *ManagerImpl) NewRouteStats(key string) RouteStats {
	key = utils.SanitizeStatName(key)
	s := this.routeScope.Scope(key)
	return RouteStats{
		Key:                key,
		Requests:           s.NewCounter("requests"),
		Duration:           s.NewTimer("duration"),
		BadRequest:         s.NewCounterWithTags("rejected", map[string]string{"code": "400"}),
		Unauthorized:       s.NewCounterWithTags("rejected", map[string]string{"code": "401"}),
		Forbidden:          s.NewCounterWithTags("rejected", map[string]string{"code": "403"}),
		TooManyRequests:    s.NewCounterWithTags("rejected", map[string]string{"code": "429"}),
		ServiceUnavailable: s.NewCounterWithTags("rejected", map[string]string{"code": "503"}),
	}
}

func (this *ManagerImpl) NewAdminStats() AdminStats {
	return AdminStats{
		Skipped:  this.adminScope.NewCounter("skipped"),
		Granted:  this.adminScope.NewCounterWithTags("result", map[string]string{"outcome": "granted"}),
		NotFound: this.adminScope.NewCounterWithTags("result", map[string]string{"outcome": "not_found"}),
		Error:    this.adminScope.NewCounterWithTags("result", map[string]string{"outcome": "error"}),
	}
}

func (this *ManagerImpl) NewTokenStats() TokenStats {
	return TokenStats{
		Missing: this.tokenScope.NewCounter("missing_credentials"),
		Valid:   this.tokenScope.NewCounterWithTags("result", map[string]string{"outcome": "valid"}),
		Invalid: this.tokenScope.NewCounterWithTags("result", map[string]string{"outcome": "invalid"}),
		Error:   this.tokenScope.NewCounterWithTags("result", map[string]string{"outcome": "error"}),
	}
}

func (this *ManagerImpl) NewBackendStats() BackendStats {
	return BackendStats{
		Error: this.backendScope.NewCounter("error"),
	}
}
