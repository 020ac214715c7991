package runner

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coocood/freecache"
	gostats "github.com/lyft/gostats"
	logger "github.com/sirupsen/logrus"

	"github.com/akgarg/urlshortener-gateway/src/auth"
	"github.com/akgarg/urlshortener-gateway/src/config"
	"github.com/akgarg/urlshortener-gateway/src/discovery"
	"github.com/akgarg/urlshortener-gateway/src/gateway"
	"github.com/akgarg/urlshortener-gateway/src/godogstats"
	"github.com/akgarg/urlshortener-gateway/src/limiter"
	"github.com/akgarg/urlshortener-gateway/src/memcached"
	"github.com/akgarg/urlshortener-gateway/src/memory"
	"github.com/akgarg/urlshortener-gateway/src/prometheusstats"
	"github.com/akgarg/urlshortener-gateway/src/proxy"
	"github.com/akgarg/urlshortener-gateway/src/redis"
	"github.com/akgarg/urlshortener-gateway/src/server"
	"github.com/akgarg/urlshortener-gateway/src/settings"
	"github.com/akgarg/urlshortener-gateway/src/stats"
	"github.com/akgarg/urlshortener-gateway/src/trace"
	"github.com/akgarg/urlshortener-gateway/src/utils"
)

type Runner struct {
	statsManager stats.Manager
	settings     settings.Settings
	srv          server.Server
	mu           sync.Mutex
}

func newStore(s settings.Settings) gostats.Store {
	var sink gostats.Sink
	switch {
	case s.DisableStats:
		logger.Info("Stats disabled")
		return gostats.NewStore(gostats.NewNullSink(), false)
	case s.UseDogStatsd:
		dogSink, err := godogstats.NewSink(
			godogstats.WithStatsdHost(s.StatsdHost),
			godogstats.WithStatsdPort(s.StatsdPort),
			godogstats.WithMogrifierFromEnv(s.DogStatsdMogrifiers),
			godogstats.WithRouteTags())
		if err != nil {
			logger.Fatalf("Failed to create dogstatsd sink: %v", err)
		}
		logger.Info("Stats initialized for dogstatsd")
		sink = dogSink
	case s.UseStatsd:
		logger.Info("Stats initialized for statsd")
		sink = gostats.NewTCPStatsdSink(gostats.WithStatsdHost(s.StatsdHost), gostats.WithStatsdPort(s.StatsdPort))
	case s.UsePrometheus:
		logger.Info("Stats initialized for prometheus")
		sink = prometheusstats.NewPrometheusSink(
			prometheusstats.WithAddr(s.PrometheusAddr),
			prometheusstats.WithPath(s.PrometheusPath),
			prometheusstats.WithMapperYamlPath(s.PrometheusMapperYaml))
	default:
		logger.Info("Stats initialized for the debug log")
		sink = &stats.LoggingSink{}
	}

	store := gostats.NewStore(sink, false)
	go store.Start(time.NewTicker(s.StatsFlushInterval))
	return store
}

func NewRunner(s settings.Settings) Runner {
	return Runner{
		statsManager: stats.NewStatManager(newStore(s), s),
		settings:     s,
	}
}

func (runner *Runner) GetStatsStore() gostats.Store {
	return runner.statsManager.GetStatsStore()
}

func createLimiter(srv server.Server, s settings.Settings) limiter.RateLimitCache {
	switch s.BackendType {
	case "memory", "":
		return memory.NewRateLimiterCacheImplFromSettings(s, utils.NewTimeSourceImpl(), srv.Scope().Scope("memory"))
	case "redis":
		return redis.NewRateLimiterCacheImplFromSettings(s, srv.Scope(), srv.HealthChecker())
	case "memcache":
		return memcached.NewRateLimiterCacheImplFromSettings(s, srv.Scope())
	default:
		logger.Fatalf("Invalid setting for BackendType: %s", s.BackendType)
		panic("This line should not be reachable")
	}
}

// limitOverrides returns the override sources in precedence order: runtime files, then settings.
func limitOverrides(srv server.Server, s settings.Settings) []limiter.LimitOverrides {
	var ret []limiter.LimitOverrides
	if runtime := srv.Runtime(); runtime != nil {
		ret = append(ret, limiter.RuntimeOverrides(runtime.Snapshot()))
	}
	return append(ret, limiter.MapOverrides(s.RateLimitOverrides))
}

func setupLogging(s settings.Settings) {
	logLevel, err := logger.ParseLevel(s.LogLevel)
	if err != nil {
		logger.Fatalf("Could not parse log level. %v\n", err)
	} else {
		logger.SetLevel(logLevel)
	}
	if strings.ToLower(s.LogFormat) == "json" {
		logger.SetFormatter(&logger.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logger.FieldMap{
				logger.FieldKeyTime: "@timestamp",
				logger.FieldKeyMsg:  "@message",
			},
		})
	}
}

func (runner *Runner) Run() {
	s := runner.settings
	setupLogging(s)

	if s.TracingEnabled {
		tp := trace.NewTraceProviderFromSettings(s)
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Printf("Error shutting down tracer provider: %v", err)
			}
		}()
	} else {
		logger.Infof("Tracing disabled")
	}

	var localCache *freecache.Cache
	if s.LocalCacheSizeInBytes != 0 {
		localCache = freecache.NewCache(s.LocalCacheSizeInBytes)
	}

	srv := server.NewServer(s, "gateway", runner.statsManager.GetStatsStore(), localCache)
	runner.mu.Lock()
	runner.srv = srv
	runner.mu.Unlock()

	gatewayConfig := config.LoadFile(s.GatewayConfigPath)
	policies := limiter.NewPolicyTable(gatewayConfig.Routes, s.RateLimitWindow, s.RateLimitDefault,
		runner.statsManager, limitOverrides(srv, s)...)

	cache := createLimiter(srv, s)
	closer := &utils.MultiCloser{}
	closer.Add(cache)
	defer func() {
		if err := closer.Close(); err != nil {
			logger.Warnf("Error closing rate limit store: %v", err)
		}
	}()

	resolver := discovery.NewResolverFromSettings(s)
	authClients := gateway.Auth{
		ServiceName: s.AuthServiceName,
		Validator:   auth.NewHttpTokenValidator(s.AuthValidateTokenPath, s.AuthClientTimeout),
		Verifier:    auth.NewHttpAdminVerifier(resolver, s.AuthServiceName, s.AuthVerifyAdminPath, s.AuthClientTimeout),
	}

	gateway.NewRouter(
		srv.GatewayRouter(),
		gatewayConfig,
		limiter.NewEngine(policies, cache, localCache, s.CacheKeyPrefix),
		resolver,
		authClients,
		proxy.NewForwarder(resolver, s.UpstreamTimeout),
		runner.statsManager,
	)

	srv.AddDebugHttpEndpoint(
		"/routes",
		"print out the loaded route table",
		func(writer http.ResponseWriter, request *http.Request) {
			io.WriteString(writer, gatewayConfig.Dump())
		})
	srv.AddDebugHttpEndpoint(
		"/limits",
		"print out the effective rate limit of every route",
		func(writer http.ResponseWriter, request *http.Request) {
			io.WriteString(writer, policies.Dump())
		})

	srv.Start()
}

func (runner *Runner) Stop() {
	runner.mu.Lock()
	srv := runner.srv
	runner.mu.Unlock()
	if srv != nil {
		srv.Stop()
	}
}
