package trace

import (
	"context"
	"sync"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"

	"github.com/akgarg/urlshortener-gateway/src/settings"
)

var (
	testSpanExporter   *tracetest.InMemoryExporter
	testSpanExporterMu sync.Mutex
)

func installPropagators() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
}

// NewTraceProviderFromSettings exports spans of the auth RPCs and redis scripts over OTLP.
// The collector endpoint comes from the standard OTEL_EXPORTER_OTLP_* variables.
func NewTraceProviderFromSettings(s settings.Settings) *sdktrace.TracerProvider {
	exporter, err := otlptrace.New(context.Background(), newClient(s.TracingExporterProtocol))
	if err != nil {
		logger.Fatalf("creating OTLP trace exporter: %v", err)
	}

	instanceId := s.TracingServiceInstanceId
	if instanceId == "" {
		instanceId = uuid.NewString()
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(s.TracingServiceName),
		semconv.ServiceNamespaceKey.String(s.TracingServiceNamespace),
		semconv.ServiceInstanceIDKey.String(instanceId),
	)

	// Follow the caller's sampling decision, otherwise sample at the configured rate.
	sampler := sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.TracingSamplingRate))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	installPropagators()
	logger.Infof("tracing to OTLP over %s as %s/%s (instance %s), sampling rate %f",
		s.TracingExporterProtocol, s.TracingServiceNamespace, s.TracingServiceName, instanceId, s.TracingSamplingRate)
	return tp
}

func newClient(protocol string) otlptrace.Client {
	switch protocol {
	case "http", "":
		return otlptracehttp.NewClient()
	case "grpc":
		return otlptracegrpc.NewClient()
	default:
		logger.Fatalf("Invalid otlptrace client protocol: %s", protocol)
		panic("Invalid otlptrace client protocol")
	}
}

// GetTestSpanExporter installs, once per test binary, a provider that records spans in memory.
// Assign the result to a package level variable.
func GetTestSpanExporter() *tracetest.InMemoryExporter {
	testSpanExporterMu.Lock()
	defer testSpanExporterMu.Unlock()
	if testSpanExporter != nil {
		return testSpanExporter
	}
	testSpanExporter = tracetest.NewInMemoryExporter()

	// The syncer exports as each span ends, so tests can read spans right away.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSyncer(testSpanExporter),
	)
	otel.SetTracerProvider(tp)
	installPropagators()

	return testSpanExporter
}
