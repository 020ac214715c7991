package memory

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	gostats "github.com/lyft/gostats"
	logger "github.com/sirupsen/logrus"

	"github.com/akgarg/urlshortener-gateway/src/limiter"
	"github.com/akgarg/urlshortener-gateway/src/settings"
	"github.com/akgarg/urlshortener-gateway/src/utils"
)

const shardCount = 16

type counterEntry struct {
	count       uint32
	windowStart time.Time
	window      time.Duration
}

// expired reports whether the entry's window has fully elapsed at now.
func (e *counterEntry) expired(now time.Time) bool {
	return now.Sub(e.windowStart) > e.window
}

// Keys are spread over shards so a sweep or a hot key only holds one shard's lock.
type counterShard struct {
	lock     sync.Mutex
	counters map[string]*counterEntry
}

type memoryCacheImpl struct {
	shards     [shardCount]*counterShard
	timeSource utils.TimeSource

	entries gostats.Gauge
	swept   gostats.Counter

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func (this *memoryCacheImpl) shardFor(key string) *counterShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return this.shards[h.Sum32()%shardCount]
}

func (this *memoryCacheImpl) DoLimit(_ context.Context, key string, limit uint32, window time.Duration) limiter.LimitStatus {
	now := this.timeSource.Now()
	shard := this.shardFor(key)

	shard.lock.Lock()
	defer shard.lock.Unlock()

	entry, ok := shard.counters[key]
	if !ok || entry.expired(now) {
		entry = &counterEntry{windowStart: now, window: window}
		shard.counters[key] = entry
	}

	resetAfter := entry.window - now.Sub(entry.windowStart)
	if entry.count >= limit {
		return limiter.LimitStatus{OverLimit: true, Count: entry.count, ResetAfter: resetAfter}
	}

	entry.count++
	return limiter.LimitStatus{Count: entry.count, ResetAfter: resetAfter}
}

// sweep drops every entry whose window has elapsed and returns how many it dropped.
func (this *memoryCacheImpl) sweep() int {
	now := this.timeSource.Now()
	removed, remaining := 0, 0

	for _, shard := range this.shards {
		shard.lock.Lock()
		for key, entry := range shard.counters {
			if entry.expired(now) {
				delete(shard.counters, key)
				removed++
			}
		}
		remaining += len(shard.counters)
		shard.lock.Unlock()
	}

	this.entries.Set(uint64(remaining))
	this.swept.Add(uint64(removed))
	return removed
}

func (this *memoryCacheImpl) runSweeper(interval time.Duration) {
	defer close(this.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := this.sweep(); removed > 0 {
				logger.Debugf("memory rate limit sweep removed %d expired counters", removed)
			}
		case <-this.stop:
			return
		}
	}
}

func (this *memoryCacheImpl) Close() error {
	this.closeOnce.Do(func() {
		close(this.stop)
		<-this.done
	})
	return nil
}

func newMemoryCache(timeSource utils.TimeSource, scope gostats.Scope) *memoryCacheImpl {
	ret := &memoryCacheImpl{
		timeSource: timeSource,
		entries:    scope.NewGauge("entries"),
		swept:      scope.NewCounter("swept"),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	for i := range ret.shards {
		ret.shards[i] = &counterShard{counters: map[string]*counterEntry{}}
	}
	return ret
}

// NewRateLimiterCacheImplFromSettings returns an in-process counter table and
// starts its background sweep, stopped by Close.
func NewRateLimiterCacheImplFromSettings(s settings.Settings, timeSource utils.TimeSource, scope gostats.Scope) limiter.RateLimitCache {
	ret := newMemoryCache(timeSource, scope)
	interval := s.RateLimitSweepInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go ret.runSweeper(interval)
	return ret
}
