package memcached

import (
	"github.com/bradfitz/gomemcache/memcache"
	stats "github.com/lyft/gostats"
)

type statsCollectingClient struct {
	c                Client
	incrementSuccess stats.Counter
	incrementMiss    stats.Counter
	incrementError   stats.Counter
	addSuccess       stats.Counter
	addError         stats.Counter
	addNotStored     stats.Counter
}

func CollectStats(c Client, scope stats.Scope) Client {
	return statsCollectingClient{
		c:                c,
		incrementSuccess: scope.NewCounterWithTags("increment", map[string]string{"code": "success"}),
		incrementMiss:    scope.NewCounterWithTags("increment", map[string]string{"code": "miss"}),
		incrementError:   scope.NewCounterWithTags("increment", map[string]string{"code": "error"}),
		addSuccess:       scope.NewCounterWithTags("add", map[string]string{"code": "success"}),
		addError:         scope.NewCounterWithTags("add", map[string]string{"code": "error"}),
		addNotStored:     scope.NewCounterWithTags("add", map[string]string{"code": "not_stored"}),
	}
}

func (scc statsCollectingClient) Increment(key string, delta uint64) (newValue uint64, err error) {
	newValue, err = scc.c.Increment(key, delta)
	switch err {
	case memcache.ErrCacheMiss:
		scc.incrementMiss.Inc()
	case nil:
		scc.incrementSuccess.Inc()
	default:
		scc.incrementError.Inc()
	}
	return
}

func (scc statsCollectingClient) Add(item *memcache.Item) error {
	err := scc.c.Add(item)

	switch err {
	case memcache.ErrNotStored:
		scc.addNotStored.Inc()
	case nil:
		scc.addSuccess.Inc()
	default:
		scc.addError.Inc()
	}

	return err
}
