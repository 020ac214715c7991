package prometheusstats

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

var (
	s = NewPrometheusSink(WithAddr("127.0.0.1:0"))
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	metricFamilies, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	metrics := make(map[string]*dto.MetricFamily)
	for _, metricFamily := range metricFamilies {
		metrics[*metricFamily.Name] = metricFamily
	}
	return metrics
}

func labelsOf(m *dto.Metric) map[string]string {
	ret := map[string]string{}
	for _, l := range m.Label {
		ret[l.GetName()] = l.GetValue()
	}
	return ret
}

func TestFlushCounter(t *testing.T) {
	s.FlushCounter("gateway.rate_limit.auth.over_limit", 1)

	m, ok := gather(t)["gateway_rate_limit_over_limit"]
	require.True(t, ok)
	require.Len(t, m.Metric, 1)
	require.Equal(t, 1.0, *m.Metric[0].Counter.Value)
	require.Equal(t, map[string]string{"route": "auth"}, labelsOf(m.Metric[0]))
}

func TestFlushTaggedCounter(t *testing.T) {
	s.FlushCounter("gateway.route.profile.rejected.__code=429", 2)
	s.FlushCounter("gateway.route.profile.rejected.__code=503", 1)

	m, ok := gather(t)["gateway_route_rejected"]
	require.True(t, ok)
	require.Len(t, m.Metric, 2)
	for _, metric := range m.Metric {
		labels := labelsOf(metric)
		require.Equal(t, "profile", labels["route"])
		switch labels["code"] {
		case "429":
			require.Equal(t, 2.0, *metric.Counter.Value)
		case "503":
			require.Equal(t, 1.0, *metric.Counter.Value)
		default:
			t.Fatalf("unexpected code label %s", labels["code"])
		}
	}
}

func TestFlushGauge(t *testing.T) {
	s.FlushGauge("gateway.memory.entries", 7)
	s.FlushGauge("gateway.unmapped.test_gauge", 1)

	metrics := gather(t)
	m, ok := metrics["gateway_memory_entries"]
	require.True(t, ok)
	require.Equal(t, 7.0, *m.Metric[0].Gauge.Value)

	_, ok = metrics["gateway_unmapped_test_gauge"]
	require.False(t, ok)
}

func TestFlushTimer(t *testing.T) {
	s.FlushTimer("gateway.route.auth.duration", 12)

	m, ok := gather(t)["gateway_route_duration_ms"]
	require.True(t, ok)
	require.Len(t, m.Metric, 1)
	require.Equal(t, uint64(1), *m.Metric[0].Histogram.SampleCount)
	require.Equal(t, 12.0, *m.Metric[0].Histogram.SampleSum)
}
