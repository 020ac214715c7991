package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/mediocregopher/radix/v3"
	logger "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/akgarg/urlshortener-gateway/src/limiter"
)

// Fixed window check-and-increment. The key carries its own expiry, set when
// the window's first hit creates it, so redis discards finished windows.
// Returns { over_limit, count, pttl_ms }.
const script = `local limit = tonumber(ARGV[1])
local current = tonumber(redis.call("get", KEYS[1]) or "0")

if current >= limit then
	return { 1, current, redis.call("pttl", KEYS[1]) }
end

current = redis.call("incr", KEYS[1])
local ttl = redis.call("pttl", KEYS[1])
if ttl < 0 then
	redis.call("pexpire", KEYS[1], ARGV[2])
	ttl = tonumber(ARGV[2])
end

return { 0, current, ttl }`

var evalScript = radix.NewEvalScript(1, script)

var tracer = otel.Tracer("redis.fixedCacheImpl")

type fixedRateLimitCacheImpl struct {
	client Client
}

func (this *fixedRateLimitCacheImpl) DoLimit(ctx context.Context, key string, limit uint32, window time.Duration) limiter.LimitStatus {
	logger.Debugf("looking up cache key: %s", key)

	windowMs := window.Milliseconds()
	if windowMs < 1 {
		windowMs = 1
	}
	// The key outlives the window by a millisecond: a hit landing exactly on the
	// boundary still counts against the old window, as it does in the memory backend.
	expiryMs := windowMs + 1

	_, span := tracer.Start(ctx, "Redis Script Execution",
		trace.WithAttributes(
			attribute.String("key", key),
			attribute.Int64("limit", int64(limit)),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	var result []int64
	err := this.client.Do(evalScript.Cmd(&result, key,
		strconv.FormatUint(uint64(limit), 10),
		strconv.FormatInt(expiryMs, 10)))
	if err != nil {
		span.RecordError(err)
	}
	checkError(err)

	if len(result) != 3 {
		panic(RedisError("unexpected rate limit script reply for key " + key))
	}

	status := limiter.LimitStatus{
		OverLimit: result[0] == 1,
		Count:     uint32(result[1]),
	}
	if result[2] > 1 {
		status.ResetAfter = time.Duration(result[2]-1) * time.Millisecond
	}
	return status
}

func (this *fixedRateLimitCacheImpl) Close() error {
	return this.client.Close()
}

func NewFixedRateLimitCacheImpl(client Client) limiter.RateLimitCache {
	return &fixedRateLimitCacheImpl{
		client: client,
	}
}
