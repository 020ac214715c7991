package godogstats

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
	gostats "github.com/lyft/gostats"
	logger "github.com/sirupsen/logrus"
)

type godogStatsSink struct {
	client *statsd.Client
	config struct {
		host string
		port int
	}

	mogrifier mogrifierMap
}

var _ gostats.Sink = (*godogStatsSink)(nil)

type goDogStatsSinkOption func(*godogStatsSink)

func WithStatsdHost(host string) goDogStatsSinkOption {
	return func(g *godogStatsSink) {
		g.config.host = host
	}
}

func WithStatsdPort(port int) goDogStatsSinkOption {
	return func(g *godogStatsSink) {
		g.config.port = port
	}
}

// WithMogrifier appends one mogrifier. Mogrifiers are tried in the order they were added.
func WithMogrifier(matcher *regexp.Regexp, handler func([]string) (string, []string)) goDogStatsSinkOption {
	return func(g *godogStatsSink) {
		g.mogrifier = append(g.mogrifier, mogrifierEntry{
			matcher: matcher,
			handler: handler,
		})
	}
}

// WithMogrifierFromEnv appends the mogrifiers configured under DOG_STATSD_MOGRIFIER_<key>_*.
func WithMogrifierFromEnv(keys []string) goDogStatsSinkOption {
	return func(g *godogStatsSink) {
		mogrifier, err := newMogrifierMapFromEnv(keys)
		if err != nil {
			panic(err)
		}
		g.mogrifier = append(g.mogrifier, mogrifier...)
	}
}

// WithRouteTags moves the route class out of per-route stat names into a "route" tag,
// so e.g. gateway.route.auth.requests is sent as gateway.route.requests with route:auth.
func WithRouteTags() goDogStatsSinkOption {
	return func(g *godogStatsSink) {
		g.mogrifier = append(g.mogrifier, routeMogrifiers()...)
	}
}

func NewSink(opts ...goDogStatsSinkOption) (*godogStatsSink, error) {
	sink := &godogStatsSink{}
	for _, opt := range opts {
		opt(sink)
	}
	client, err := statsd.New(sink.config.host+":"+strconv.Itoa(sink.config.port), statsd.WithoutClientSideAggregation())
	if err != nil {
		return nil, err
	}
	sink.client = client
	return sink, nil
}

// separateTags splits the tags gostats serializes into a stat name off the name.
// "gateway.route.auth.rejected.__code=429.__zone=eu" yields
// "gateway.route.auth.rejected" and ["code:429", "zone:eu"].
func separateTags(name string) (string, []string) {
	const (
		prefix = ".__"
		sep    = "="
	)

	shortName, tagString, hasTags := strings.Cut(name, prefix)
	if !hasTags {
		return name, nil
	}

	tagPairs := strings.Split(tagString, prefix)
	tags := make([]string, 0, len(tagPairs))
	for _, tagPair := range tagPairs {
		tagName, tagValue, isValid := strings.Cut(tagPair, sep)
		if !isValid {
			logger.Debugf("godogstats sink found malformed tag: %v, stat: %v", tagPair, name)
			continue
		}
		tags = append(tags, tagName+":"+tagValue)
	}

	return shortName, tags
}

// mogrify turns a serialized gostats name into a dogstatsd name and tag list.
func (g *godogStatsSink) mogrify(name string) (string, []string) {
	name, serializedTags := separateTags(name)
	name, tags := g.mogrifier.mogrify(name)
	return name, append(serializedTags, tags...)
}

func (g *godogStatsSink) FlushCounter(name string, value uint64) {
	name, tags := g.mogrify(name)
	g.client.Count(name, int64(value), tags, 1.0)
}

func (g *godogStatsSink) FlushGauge(name string, value uint64) {
	name, tags := g.mogrify(name)
	g.client.Gauge(name, float64(value), tags, 1.0)
}

func (g *godogStatsSink) FlushTimer(name string, milliseconds float64) {
	name, tags := g.mogrify(name)
	g.client.Timing(name, time.Duration(milliseconds*float64(time.Millisecond)), tags, 1.0)
}
