package redis

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	stats "github.com/lyft/gostats"
	"github.com/mediocregopher/radix/v3"
	"github.com/mediocregopher/radix/v3/trace"
	logger "github.com/sirupsen/logrus"

	"github.com/akgarg/urlshortener-gateway/src/utils"
)

type poolStats struct {
	connectionActive stats.Gauge
	connectionTotal  stats.Counter
	connectionClose  stats.Counter
}

func newPoolStats(scope stats.Scope) poolStats {
	ret := poolStats{}
	ret.connectionActive = scope.NewGauge("cx_active")
	ret.connectionTotal = scope.NewCounter("cx_total")
	ret.connectionClose = scope.NewCounter("cx_local_close")
	return ret
}

func poolTrace(ps *poolStats, health HealthReporter) trace.PoolTrace {
	return trace.PoolTrace{
		ConnCreated: func(newConn trace.PoolConnCreated) {
			if newConn.Err != nil {
				logger.Warnf("creating redis connection error: %s", newConn.Err)
				return
			}
			ps.connectionTotal.Add(1)
			ps.connectionActive.Add(1)
			if health != nil {
				if err := health.Ok(HealthComponentName); err != nil {
					logger.Errorf("Unable to update health status: %s", err)
				}
			}
		},
		ConnClosed: func(_ trace.PoolConnClosed) {
			ps.connectionActive.Sub(1)
			ps.connectionClose.Add(1)
			if health != nil && ps.connectionActive.Value() == 0 {
				if err := health.Fail(HealthComponentName); err != nil {
					logger.Errorf("Unable to update health status: %s", err)
				}
			}
		},
	}
}

type clientImpl struct {
	client radix.Client
	stats  poolStats
}

func checkError(err error) {
	if err != nil {
		panic(RedisError(err.Error()))
	}
}

// NewClientImpl connects to redis and verifies the connection with a PING.
// @param redisType supplies "single", "cluster" or "sentinel". Cluster and sentinel urls
//
//	are comma separated, sentinel urls start with the master name.
//
// @param timeout bounds dialing, reads and writes of every connection.
// @throws RedisError if the client could not be created.
func NewClientImpl(scope stats.Scope, useTls bool, auth, redisSocketType, redisType, url string, poolSize int,
	pipelineWindow time.Duration, pipelineLimit int, timeout time.Duration, health HealthReporter) Client {
	maskedUrl := utils.MaskCredentialsInUrl(url)
	logger.Warnf("connecting to redis on %s with pool size %d", maskedUrl, poolSize)

	df := func(network, addr string) (radix.Conn, error) {
		var dialOpts []radix.DialOpt

		if timeout > 0 {
			dialOpts = append(dialOpts, radix.DialTimeout(timeout))
		}

		if useTls {
			dialOpts = append(dialOpts, radix.DialUseTLS(&tls.Config{}))
		}

		if auth != "" {
			logger.Warnf("enabling authentication to redis on %s", maskedUrl)

			dialOpts = append(dialOpts, radix.DialAuthPass(auth))
		}

		return radix.Dial(network, addr, dialOpts...)
	}

	stats := newPoolStats(scope)

	opts := []radix.PoolOpt{radix.PoolConnFunc(df), radix.PoolWithTrace(poolTrace(&stats, health))}

	implicitPipelining := true
	if pipelineWindow == 0 && pipelineLimit == 0 {
		implicitPipelining = false
		opts = append(opts, radix.PoolPipelineWindow(0, 0))
	} else {
		opts = append(opts, radix.PoolPipelineWindow(pipelineWindow, pipelineLimit))
	}
	logger.Debugf("Implicit pipelining enabled: %v", implicitPipelining)

	poolFunc := func(network, addr string) (radix.Client, error) {
		return radix.NewPool(network, addr, poolSize, opts...)
	}

	var client radix.Client
	var err error
	switch strings.ToLower(redisType) {
	case "single":
		client, err = poolFunc(redisSocketType, url)
	case "cluster":
		urls := strings.Split(url, ",")
		if !implicitPipelining {
			panic(RedisError("Implicit Pipelining must be enabled to work with Redis Cluster Mode. Set values for REDIS_PIPELINE_WINDOW or REDIS_PIPELINE_LIMIT to enable implicit pipelining"))
		}
		logger.Warnf("Creating cluster with urls %v", urls)
		client, err = radix.NewCluster(urls, radix.ClusterPoolFunc(poolFunc))
	case "sentinel":
		urls := strings.Split(url, ",")
		if len(urls) < 2 {
			panic(RedisError("Expected master name and a list of urls for the sentinels, in the format: <redis master name>,<sentinel1>,...,<sentineln>"))
		}
		client, err = radix.NewSentinel(urls[0], urls[1:], radix.SentinelPoolFunc(poolFunc))
	default:
		panic(RedisError("Unrecognized redis type " + redisType))
	}

	checkError(err)

	// Check if connection is good
	var pingResponse string
	checkError(client.Do(radix.Cmd(&pingResponse, "PING")))
	if pingResponse != "PONG" {
		checkError(fmt.Errorf("connecting redis error: %s", pingResponse))
	}

	return &clientImpl{
		client: client,
		stats:  stats,
	}
}

func (c *clientImpl) Do(action radix.Action) error {
	return c.client.Do(action)
}

func (c *clientImpl) Close() error {
	return c.client.Close()
}

func (c *clientImpl) NumActiveConns() int {
	return int(c.stats.connectionActive.Value())
}
