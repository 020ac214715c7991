package memcached

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	logger "github.com/sirupsen/logrus"

	"github.com/akgarg/urlshortener-gateway/src/limiter"
)

type fixedRateLimitCacheImpl struct {
	client Client
}

var _ limiter.RateLimitCache = (*fixedRateLimitCacheImpl)(nil)

// expirationSeconds rounds the window up to whole seconds, memcache's expiry resolution.
func expirationSeconds(window time.Duration) int32 {
	seconds := int32(math.Ceil(window.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}

const maxKeyLength = 250

// legalKey mirrors the memcache protocol's key rules: at most 250 bytes, no
// whitespace or control characters.
func legalKey(key string) bool {
	if len(key) > maxKeyLength {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] <= ' ' || key[i] == 0x7f {
			return false
		}
	}
	return true
}

// memcacheKey returns key unchanged when memcache accepts it, else a fixed length digest
// of it. Identifiers come from request headers and may hold spaces or be arbitrarily long.
func memcacheKey(key string) string {
	if legalKey(key) {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	return "sha256:" + hex.EncodeToString(sum[:])
}

// DoLimit counts the hit with INCR and judges the new value. Memcache cannot compare
// and increment in one step, so a rejected hit still bumps the stored counter; the
// window stays blocked either way. Memcache does not expose remaining expiry, so
// ResetAfter is left zero.
func (this *fixedRateLimitCacheImpl) DoLimit(_ context.Context, key string, limit uint32, window time.Duration) limiter.LimitStatus {
	key = memcacheKey(key)
	logger.Debugf("looking up cache key: %s", key)

	newValue, err := this.client.Increment(key, 1)
	if err == memcache.ErrCacheMiss {
		// First hit of the window.
		err = this.client.Add(&memcache.Item{
			Key:        key,
			Value:      []byte("1"),
			Expiration: expirationSeconds(window),
		})
		switch err {
		case nil:
			newValue = 1
		case memcache.ErrNotStored:
			// Lost the race to create the window, count against the winner's.
			newValue, err = this.client.Increment(key, 1)
		}
	}
	if err != nil {
		panic(MemcacheError("memcache rate limit update for key " + key + " failed: " + err.Error()))
	}

	if newValue > uint64(limit) {
		return limiter.LimitStatus{OverLimit: true, Count: limit}
	}
	return limiter.LimitStatus{Count: uint32(newValue)}
}

func (this *fixedRateLimitCacheImpl) Close() error {
	return nil
}

func NewFixedRateLimitCacheImpl(client Client) limiter.RateLimitCache {
	return &fixedRateLimitCacheImpl{
		client: client,
	}
}
