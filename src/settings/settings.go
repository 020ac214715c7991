package settings

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Settings struct {
	// Server listen address config
	Host      string `envconfig:"HOST" default:"0.0.0.0"`
	Port      int    `envconfig:"PORT" default:"8080"`
	DebugHost string `envconfig:"DEBUG_HOST" default:"0.0.0.0"`
	DebugPort int    `envconfig:"DEBUG_PORT" default:"6070"`
	// ShutdownGracePeriod bounds how long in-flight requests may drain after a stop signal.
	ShutdownGracePeriod time.Duration `envconfig:"SHUTDOWN_GRACE_PERIOD" default:"10s"`

	// Logging settings
	LogLevel  string `envconfig:"LOG_LEVEL" default:"WARN"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	// Gateway route table. An empty path uses the embedded default table.
	GatewayConfigPath string `envconfig:"GATEWAY_CONFIG_PATH" default:""`

	// Rate limit settings
	// BackendType selects the counter store. Possible values "memory", "redis", "memcache".
	BackendType string `envconfig:"BACKEND_TYPE" default:"memory"`
	// RateLimitWindow is the fixed window every route limit is counted over.
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	// RateLimitDefault applies to a route that declares no limit of its own.
	RateLimitDefault uint32 `envconfig:"RATE_LIMIT_DEFAULT" default:"1"`
	// RateLimitOverrides maps a route class to a limit, e.g. "auth:20,profile:5".
	// Values are parsed at startup; a malformed value blocks the route.
	RateLimitOverrides map[string]string `envconfig:"RATE_LIMIT_OVERRIDES" default:""`
	// RateLimitSweepInterval is how often the memory backend purges expired windows.
	RateLimitSweepInterval time.Duration `envconfig:"RATE_LIMIT_SWEEP_INTERVAL" default:"30s"`
	LocalCacheSizeInBytes  int           `envconfig:"LOCAL_CACHE_SIZE_IN_BYTES" default:"0"`
	CacheKeyPrefix         string        `envconfig:"CACHE_KEY_PREFIX" default:""`

	// Runtime directory holding per-route limit files, read once at startup.
	// A file <RUNTIME_ROOT>/<RUNTIME_SUBDIRECTORY>/limits/<route class> overrides that route.
	RuntimePath           string `envconfig:"RUNTIME_ROOT" default:""`
	RuntimeSubdirectory   string `envconfig:"RUNTIME_SUBDIRECTORY" default:"gateway"`
	RuntimeIgnoreDotFiles bool   `envconfig:"RUNTIME_IGNOREDOTFILES" default:"false"`

	// Redis settings
	RedisSocketType string `envconfig:"REDIS_SOCKET_TYPE" default:"tcp"`
	RedisType       string `envconfig:"REDIS_TYPE" default:"SINGLE"`
	RedisUrl        string `envconfig:"REDIS_URL" default:"localhost:6379"`
	RedisPoolSize   int    `envconfig:"REDIS_POOL_SIZE" default:"10"`
	RedisAuth       string `envconfig:"REDIS_AUTH" default:""`
	RedisTls        bool   `envconfig:"REDIS_TLS" default:"false"`
	// RedisTimeout bounds dialing and every command issued to redis.
	RedisTimeout time.Duration `envconfig:"REDIS_TIMEOUT" default:"2s"`
	// Implicit pipelining, required for cluster mode.
	RedisPipelineWindow time.Duration `envconfig:"REDIS_PIPELINE_WINDOW" default:"0"`
	RedisPipelineLimit  int           `envconfig:"REDIS_PIPELINE_LIMIT" default:"0"`

	// Memcache settings
	MemcacheHostPort     []string      `envconfig:"MEMCACHE_HOST_PORT" default:""`
	MemcacheMaxIdleConns int           `envconfig:"MEMCACHE_MAX_IDLE_CONNS" default:"2"`
	MemcacheTimeout      time.Duration `envconfig:"MEMCACHE_TIMEOUT" default:"500ms"`

	// Service discovery settings
	// DiscoveryType is "static" (DISCOVERY_STATIC_INSTANCES) or "srv" (DNS SRV per service).
	DiscoveryType string `envconfig:"DISCOVERY_TYPE" default:"static"`
	// DiscoveryStaticInstances maps a service name to a ';' separated list of base URLs,
	// e.g. "urlshortener-auth-service=http://auth:8081;http://auth-2:8081".
	DiscoveryStaticInstances []string `envconfig:"DISCOVERY_STATIC_INSTANCES" default:""`
	// DiscoverySrvDomain is appended to a service name to build its SRV record,
	// e.g. _http._tcp.urlshortener-auth-service.<domain>.
	DiscoverySrvDomain     string        `envconfig:"DISCOVERY_SRV_DOMAIN" default:"service.consul"`
	DiscoverySrvMaxRetries int           `envconfig:"DISCOVERY_SRV_MAX_RETRIES" default:"3"`
	DiscoverySrvBackoffMin time.Duration `envconfig:"DISCOVERY_SRV_BACKOFF_MIN" default:"50ms"`
	DiscoverySrvBackoffMax time.Duration `envconfig:"DISCOVERY_SRV_BACKOFF_MAX" default:"500ms"`

	// Auth service settings
	AuthServiceName       string        `envconfig:"AUTH_SERVICE_NAME" default:"urlshortener-auth-service"`
	AuthVerifyAdminPath   string        `envconfig:"AUTH_VERIFY_ADMIN_PATH" default:"/api/v1/auth/verify-admin"`
	AuthValidateTokenPath string        `envconfig:"AUTH_VALIDATE_TOKEN_PATH" default:"/api/v1/auth/validate-token"`
	AuthClientTimeout     time.Duration `envconfig:"AUTH_CLIENT_TIMEOUT" default:"3s"`

	// Upstream settings
	UpstreamTimeout time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"30s"`

	// Stats-related settings
	UseDogStatsd bool `envconfig:"USE_DOG_STATSD" default:"false"`
	// Names of the DOG_STATSD_MOGRIFIER_<name>_* groups to apply, in order.
	DogStatsdMogrifiers  []string          `envconfig:"DOG_STATSD_MOGRIFIERS" default:""`
	UseStatsd            bool              `envconfig:"USE_STATSD" default:"false"`
	StatsdHost           string            `envconfig:"STATSD_HOST" default:"localhost"`
	StatsdPort           int               `envconfig:"STATSD_PORT" default:"8125"`
	ExtraTags            map[string]string `envconfig:"EXTRA_TAGS" default:""`
	StatsFlushInterval   time.Duration     `envconfig:"STATS_FLUSH_INTERVAL" default:"10s"`
	DisableStats         bool              `envconfig:"DISABLE_STATS" default:"false"`
	UsePrometheus        bool              `envconfig:"USE_PROMETHEUS" default:"false"`
	PrometheusAddr       string            `envconfig:"PROMETHEUS_ADDR" default:":9090"`
	PrometheusPath       string            `envconfig:"PROMETHEUS_PATH" default:"/metrics"`
	PrometheusMapperYaml string            `envconfig:"PROMETHEUS_MAPPER_YAML" default:""`

	// OTLP trace settings
	TracingEnabled           bool   `envconfig:"TRACING_ENABLED" default:"false"`
	TracingServiceName       string `envconfig:"TRACING_SERVICE_NAME" default:"urlshortener-gateway"`
	TracingServiceNamespace  string `envconfig:"TRACING_SERVICE_NAMESPACE" default:""`
	TracingServiceInstanceId string `envconfig:"TRACING_SERVICE_INSTANCE_ID" default:""`
	// can only be http or gRPC
	TracingExporterProtocol string `envconfig:"TRACING_EXPORTER_PROTOCOL" default:"http"`
	// TracingSamplingRate defaults to 1 which amounts to using the `AlwaysSample` sampler
	TracingSamplingRate float64 `envconfig:"TRACING_SAMPLING_RATE" default:"1"`
}

type Option func(*Settings)

func NewSettings() Settings {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		panic(err)
	}
	return s
}

func BackendType(backend string) Option {
	return func(s *Settings) {
		s.BackendType = backend
	}
}

func RateLimitWindow(window time.Duration) Option {
	return func(s *Settings) {
		s.RateLimitWindow = window
	}
}

func RateLimitOverrides(overrides map[string]string) Option {
	return func(s *Settings) {
		s.RateLimitOverrides = overrides
	}
}

func StaticInstances(instances ...string) Option {
	return func(s *Settings) {
		s.DiscoveryType = "static"
		s.DiscoveryStaticInstances = instances
	}
}
