package limiter

import (
	"github.com/coocood/freecache"
	gostats "github.com/lyft/gostats"
)

// overLimitCacheStats publishes the over-limit cache's counters on every stats flush.
type overLimitCacheStats struct {
	cache   *freecache.Cache
	entries gostats.Gauge
	hits    gostats.Gauge
	misses  gostats.Gauge
	expired gostats.Gauge
	evicted gostats.Gauge
}

func NewLocalCacheStats(localCache *freecache.Cache, scope gostats.Scope) gostats.StatGenerator {
	return overLimitCacheStats{
		cache:   localCache,
		entries: scope.NewGauge("entries"),
		hits:    scope.NewGauge("hits"),
		misses:  scope.NewGauge("misses"),
		expired: scope.NewGauge("expired"),
		evicted: scope.NewGauge("evicted"),
	}
}

func (s overLimitCacheStats) GenerateStats() {
	s.entries.Set(uint64(s.cache.EntryCount()))
	s.hits.Set(uint64(s.cache.HitCount()))
	s.misses.Set(uint64(s.cache.MissCount()))
	s.expired.Set(uint64(s.cache.ExpiredCount()))
	s.evicted.Set(uint64(s.cache.EvacuateCount()))
}
