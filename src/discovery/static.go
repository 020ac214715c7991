package discovery

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"
)

type staticResolver struct {
	services map[string][]Instance
}

func (this *staticResolver) Instances(_ context.Context, service string) ([]Instance, error) {
	instances := this.services[service]
	if len(instances) == 0 {
		return nil, fmt.Errorf("%s: %w", service, ErrNoInstances)
	}
	ret := make([]Instance, len(instances))
	copy(ret, instances)
	return ret, nil
}

func parseInstance(raw string) (Instance, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Instance{}, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return Instance{}, fmt.Errorf("unsupported scheme '%s'", u.Scheme)
	}
	if u.Hostname() == "" {
		return Instance{}, fmt.Errorf("missing host")
	}

	port := 80
	if u.Scheme == "https" {
		port = 443
	}
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return Instance{}, err
		}
	}
	return Instance{Scheme: u.Scheme, Host: u.Hostname(), Port: port}, nil
}

// ParseStaticInstances reads entries of the form
// "service=http://host:port;http://host2:port".
func ParseStaticInstances(entries []string) (map[string][]Instance, error) {
	services := make(map[string][]Instance)
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, urls, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("malformed instance entry '%s'", entry)
		}
		for _, raw := range strings.Split(urls, ";") {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			instance, err := parseInstance(raw)
			if err != nil {
				return nil, fmt.Errorf("service '%s' instance '%s': %w", name, raw, err)
			}
			services[name] = append(services[name], instance)
		}
	}
	return services, nil
}

// NewStaticResolver serves a fixed instance list.
// @throws DiscoveryError if an entry is malformed.
func NewStaticResolver(entries []string) Resolver {
	services, err := ParseStaticInstances(entries)
	if err != nil {
		panic(DiscoveryError(err.Error()))
	}
	for name, instances := range services {
		logger.Debugf("static discovery: %s -> %v", name, instances)
	}
	return &staticResolver{services: services}
}
