package limiter

import (
	"bytes"
	"sync"
)

type CacheKeyGenerator struct {
	prefix string
	// bytes.Buffer pool used to efficiently generate cache keys.
	bufferPool sync.Pool
}

func NewCacheKeyGenerator(prefix string) *CacheKeyGenerator {
	return &CacheKeyGenerator{
		prefix: prefix,
		bufferPool: sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
}

// Generate a cache key for a limit lookup.
// The matched route pattern is used rather than the request path so every
// path under one route shares a single counter per identifier.
// @param pathPattern supplies the matched route pattern.
// @param identifier supplies the caller identifier.
// @return the key: <prefix><pathPattern>:<identifier>.
func (this *CacheKeyGenerator) GenerateCacheKey(pathPattern string, identifier string) string {
	b := this.bufferPool.Get().(*bytes.Buffer)
	defer this.bufferPool.Put(b)
	b.Reset()

	b.WriteString(this.prefix)
	b.WriteString(pathPattern)
	b.WriteByte(':')
	b.WriteString(identifier)

	return b.String()
}
