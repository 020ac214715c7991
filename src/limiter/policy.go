package limiter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/akgarg/urlshortener-gateway/src/config"
	"github.com/akgarg/urlshortener-gateway/src/stats"
)

// BlockingLimit is the limit a route falls back to when its configured value
// cannot be parsed: every request is rejected until the value is fixed.
const BlockingLimit uint32 = 0

// RateLimitPolicy is the admission quota of one route class.
type RateLimitPolicy struct {
	RouteClass string
	Strategy   config.IdentityStrategy
	Limit      uint32
	Window     time.Duration
	Stats      stats.RateLimitStats
}

// LimitOverrides supplies configured limit values by route class.
type LimitOverrides interface {
	Lookup(routeClass string) (string, bool)
}

// MapOverrides serves overrides from a static map, e.g. the RATE_LIMIT_OVERRIDES setting.
type MapOverrides map[string]string

func (m MapOverrides) Lookup(routeClass string) (string, bool) {
	v, ok := m[routeClass]
	return v, ok
}

// RuntimeSnapshot is the subset of a goruntime snapshot used for overrides.
type RuntimeSnapshot interface {
	Get(key string) string
}

type runtimeOverrides struct {
	snapshot RuntimeSnapshot
}

// RuntimeOverrides serves overrides from runtime keys limits.<route class>.
func RuntimeOverrides(snapshot RuntimeSnapshot) LimitOverrides {
	return runtimeOverrides{snapshot: snapshot}
}

func (r runtimeOverrides) Lookup(routeClass string) (string, bool) {
	v := r.snapshot.Get("limits." + routeClass)
	if strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// PolicyTable maps route classes to their policies. It is built once and never mutated.
type PolicyTable struct {
	policies map[string]*RateLimitPolicy
}

// NewPolicyTable builds the policy of every rate limited route.
// Limit resolution order: the first override source that knows the route, then
// the route table's own value, then defaultLimit.
func NewPolicyTable(routes []config.Route, window time.Duration, defaultLimit uint32,
	manager stats.Manager, overrides ...LimitOverrides) *PolicyTable {
	ret := &PolicyTable{policies: map[string]*RateLimitPolicy{}}

	for _, route := range routes {
		if route.RateLimit == nil {
			continue
		}

		raw, source := route.RateLimit.RequestsPerWindow, "route table"
		for _, o := range overrides {
			if v, ok := o.Lookup(route.Class); ok {
				raw, source = v, "override"
				break
			}
		}

		ret.policies[route.Class] = &RateLimitPolicy{
			RouteClass: route.Class,
			Strategy:   route.RateLimit.Strategy,
			Limit:      ParseLimit(route.Class, raw, source, defaultLimit),
			Window:     window,
			Stats:      manager.NewStats(route.Class),
		}
	}

	return ret
}

// ParseLimit resolves a configured limit value. An unset value yields
// defaultLimit; a malformed one yields BlockingLimit and is logged as an error.
func ParseLimit(routeClass string, raw string, source string, defaultLimit uint32) uint32 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		logger.Debugf("no rate limit configured for route '%s', using default %d", routeClass, defaultLimit)
		return defaultLimit
	}

	limit, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		logger.Errorf("invalid rate limit '%s' for route '%s' from %s, blocking all requests on the route: %s",
			raw, routeClass, source, err.Error())
		return BlockingLimit
	}

	return uint32(limit)
}

// Get returns the policy of a route class.
func (this *PolicyTable) Get(routeClass string) (*RateLimitPolicy, bool) {
	p, ok := this.policies[routeClass]
	return p, ok
}

func (this *PolicyTable) Len() int {
	return len(this.policies)
}

// Dump the effective policies into string form for debugging.
func (this *PolicyTable) Dump() string {
	classes := make([]string, 0, len(this.policies))
	for class := range this.policies {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	var b strings.Builder
	for _, class := range classes {
		p := this.policies[class]
		fmt.Fprintf(&b, "%s: %d per %s by %s\n", class, p.Limit, p.Window, p.Strategy)
	}
	return b.String()
}
