package godogstats

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/kelseyhightower/envconfig"
)

var varFinder = regexp.MustCompile(`\$\d+`)

const envPrefix = "DOG_STATSD_MOGRIFIER"

type mogrifierEntry struct {
	matcher *regexp.Regexp
	// handler maps the matcher's submatches to a stat name and tags.
	handler func(matches []string) (name string, tags []string)
}

// mogrifierMap is an ordered map of regular expressions to functions that mogrify a name and return tags
type mogrifierMap []mogrifierEntry

// makePatternHandler returns a function that replaces $0, $1, etc. in the pattern with the corresponding match
func makePatternHandler(pattern string) func([]string) string {
	return func(matches []string) string {
		return varFinder.ReplaceAllStringFunc(pattern, func(s string) string {
			i, err := strconv.Atoi(s[1:])
			if i >= len(matches) || err != nil {
				// unknown group, keep the placeholder
				return s
			}
			return matches[i]
		})
	}
}

// newMogrifierMapFromEnv loads mogrifiers from environment variables
// keys is a list of mogrifier names to load
func newMogrifierMapFromEnv(keys []string) (mogrifierMap, error) {
	mogrifiers := mogrifierMap{}

	type config struct {
		Pattern string            `envconfig:"PATTERN"`
		Tags    map[string]string `envconfig:"TAGS"`
		Name    string            `envconfig:"NAME"`
	}

	for _, mogrifier := range keys {
		cfg := config{}
		if err := envconfig.Process(envPrefix+"_"+mogrifier, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load mogrifier %s: %v", mogrifier, err)
		}

		if cfg.Pattern == "" {
			return nil, fmt.Errorf("no PATTERN specified for mogrifier %s", mogrifier)
		}

		re, err := regexp.Compile(cfg.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern for %s: %s: %v", mogrifier, cfg.Pattern, err)
		}

		if cfg.Name == "" {
			return nil, fmt.Errorf("no NAME specified for mogrifier %s", mogrifier)
		}

		nameHandler := makePatternHandler(cfg.Name)
		tagHandlers := make(map[string]func([]string) string, len(cfg.Tags))
		for key, value := range cfg.Tags {
			if key == "" {
				return nil, fmt.Errorf("no key specified for tag %s for mogrifier %s", key, mogrifier)
			}
			tagHandlers[key] = makePatternHandler(value)
			if value == "" {
				return nil, fmt.Errorf("no value specified for tag %s for mogrifier %s", key, mogrifier)
			}
		}

		mogrifiers = append(mogrifiers, mogrifierEntry{
			matcher: re,
			handler: func(matches []string) (string, []string) {
				name := nameHandler(matches)
				tags := make([]string, 0, len(tagHandlers))
				for tagKey, handler := range tagHandlers {
					tagValue := handler(matches)
					tags = append(tags, tagKey+":"+tagValue)
				}
				return name, tags
			},
		},
		)

	}
	return mogrifiers, nil
}

var (
	rateLimitStat = regexp.MustCompile(`^gateway\.rate_limit\.([^.]+)\.([^.]+)$`)
	routeStat     = regexp.MustCompile(`^gateway\.route\.([^.]+)\.([^.]+)$`)
)

// routeMogrifiers tag the per-route stats with their route class.
func routeMogrifiers() mogrifierMap {
	return mogrifierMap{
		{
			matcher: rateLimitStat,
			handler: func(matches []string) (string, []string) {
				return "gateway.rate_limit." + matches[2], []string{"route:" + matches[1]}
			},
		},
		{
			matcher: routeStat,
			handler: func(matches []string) (string, []string) {
				return "gateway.route." + matches[2], []string{"route:" + matches[1]}
			},
		},
	}
}

// mogrify applies the first mogrifier in the map that matches the name
func (m *mogrifierMap) mogrify(name string) (string, []string) {
	if m == nil {
		return name, nil
	}
	for _, mogrifier := range *m {
		matches := mogrifier.matcher.FindStringSubmatch(name)
		if len(matches) == 0 {
			continue
		}

		mogrifiedName, tags := mogrifier.handler(matches)
		return mogrifiedName, tags
	}

	// no mogrification
	return name, nil
}
