package prometheusstats

import (
	_ "embed"
	"net/http"
	"sort"

	gostats "github.com/lyft/gostats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/statsd_exporter/pkg/mapper"
	"github.com/sirupsen/logrus"
)

var (
	//go:embed default_mapper.yaml
	defaultMapper string
	_             gostats.Sink = &prometheusSink{}
)

type prometheusSink struct {
	config struct {
		addr           string
		path           string
		mapperYamlPath string
	}
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
	mapper     *mapper.MetricMapper
}

type prometheusSinkOption func(sink *prometheusSink)

func WithAddr(addr string) prometheusSinkOption {
	return func(sink *prometheusSink) {
		sink.config.addr = addr
	}
}

func WithPath(path string) prometheusSinkOption {
	return func(sink *prometheusSink) {
		sink.config.path = path
	}
}

func WithMapperYamlPath(mapperYamlPath string) prometheusSinkOption {
	return func(sink *prometheusSink) {
		sink.config.mapperYamlPath = mapperYamlPath
	}
}

// NewPrometheusSink returns a Sink that exposes gateway stats for scraping. Stat names
// are translated to metric names and labels by a statsd_exporter mapping.
func NewPrometheusSink(opts ...prometheusSinkOption) gostats.Sink {
	sink := &prometheusSink{
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		mapper: &mapper.MetricMapper{
			Registerer: prometheus.DefaultRegisterer,
		},
	}
	for _, opt := range opts {
		opt(sink)
	}
	if sink.config.addr == "" {
		sink.config.addr = ":9090"
	}
	if sink.config.path == "" {
		sink.config.path = "/metrics"
	}
	http.Handle(sink.config.path, promhttp.Handler())
	go func() {
		logrus.Infof("Starting prometheus sink on %s%s", sink.config.addr, sink.config.path)
		_ = http.ListenAndServe(sink.config.addr, nil)
	}()

	var err error
	if sink.config.mapperYamlPath != "" {
		err = sink.mapper.InitFromFile(sink.config.mapperYamlPath)
	} else {
		err = sink.mapper.InitFromYAMLString(defaultMapper)
	}
	if err != nil {
		logrus.Errorf("failed to load prometheus mapping, stats will not be exported: %s", err)
	}
	return sink
}

// mapping resolves a stat to its metric name and labels. Label names are sorted so
// every flush of a metric passes its values in the same order.
func (s *prometheusSink) mapping(name string, metricType mapper.MetricType) (*mapper.MetricMapping, []string, []string, bool) {
	m, labels, present := s.mapper.GetMapping(name, metricType)
	if !present {
		return nil, nil, nil, false
	}

	labelNames := make([]string, 0, len(labels))
	for k := range labels {
		labelNames = append(labelNames, k)
	}
	sort.Strings(labelNames)

	labelValues := make([]string, 0, len(labels))
	for _, k := range labelNames {
		labelValues = append(labelValues, labels[k])
	}
	return m, labelNames, labelValues, true
}

func (s *prometheusSink) FlushCounter(name string, value uint64) {
	m, labelNames, labelValues, present := s.mapping(name, mapper.MetricTypeCounter)
	if !present {
		return
	}

	metricName := mapper.EscapeMetricName(m.Name)
	if _, ok := s.counters[metricName]; !ok {
		s.counters[metricName] = promauto.NewCounterVec(prometheus.CounterOpts{Name: metricName}, labelNames)
	}
	s.counters[metricName].WithLabelValues(labelValues...).Add(float64(value))
}

func (s *prometheusSink) FlushGauge(name string, value uint64) {
	m, labelNames, labelValues, present := s.mapping(name, mapper.MetricTypeGauge)
	if !present {
		return
	}

	metricName := mapper.EscapeMetricName(m.Name)
	if _, ok := s.gauges[metricName]; !ok {
		s.gauges[metricName] = promauto.NewGaugeVec(prometheus.GaugeOpts{Name: metricName}, labelNames)
	}
	s.gauges[metricName].WithLabelValues(labelValues...).Set(float64(value))
}

func (s *prometheusSink) FlushTimer(name string, value float64) {
	m, labelNames, labelValues, present := s.mapping(name, mapper.MetricTypeObserver)
	if !present {
		return
	}

	metricName := mapper.EscapeMetricName(m.Name)
	if _, ok := s.histograms[metricName]; !ok {
		s.histograms[metricName] = promauto.NewHistogramVec(prometheus.HistogramOpts{Name: metricName}, labelNames)
	}
	s.histograms[metricName].WithLabelValues(labelValues...).Observe(value)
}
