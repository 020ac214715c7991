package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jpillora/backoff"
	logger "github.com/sirupsen/logrus"
)

var srvRegex = regexp.MustCompile(`^_(.+?)\._(.+?)\.(.+)$`)

type addrsLookup func(ctx context.Context, service, proto, name string) (cname string, addrs []*net.SRV, err error)

func ParseSrv(srv string) (string, string, string, error) {
	matches := srvRegex.FindStringSubmatch(srv)
	if matches == nil {
		errorText := fmt.Sprintf("could not parse %s to SRV parts", srv)
		logger.Errorf(errorText)
		return "", "", "", errors.New(errorText)
	}
	return matches[1], matches[2], matches[3], nil
}

type srvResolver struct {
	domain     string
	lookup     addrsLookup
	maxRetries int
	backoffMin time.Duration
	backoffMax time.Duration
}

// SrvName builds the record queried for a service, _http._tcp.<service>.<domain>.
func SrvName(service, domain string) string {
	return fmt.Sprintf("_http._tcp.%s.%s", service, strings.TrimSuffix(domain, "."))
}

func (this *srvResolver) Instances(ctx context.Context, service string) ([]Instance, error) {
	record := SrvName(service, this.domain)
	b := &backoff.Backoff{
		Min:    this.backoffMin,
		Max:    this.backoffMax,
		Factor: 2,
		Jitter: true,
	}

	for attempt := 0; ; attempt++ {
		instances, err := lookupInstancesFromSrv(ctx, record, this.lookup)
		if err == nil {
			return instances, nil
		}

		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, fmt.Errorf("%s: %w", service, ErrNoInstances)
		}
		if errors.Is(err, ErrNoInstances) || attempt >= this.maxRetries {
			return nil, err
		}

		wait := b.Duration()
		logger.Debugf("SRV lookup of %s failed, retrying in %s: %s", record, wait, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func lookupInstancesFromSrv(ctx context.Context, srv string, addrsLookup addrsLookup) ([]Instance, error) {
	service, proto, name, err := ParseSrv(srv)
	if err != nil {
		return nil, err
	}

	_, srvs, err := addrsLookup(ctx, service, proto, name)
	if err != nil {
		return nil, err
	}
	if len(srvs) == 0 {
		return nil, fmt.Errorf("%s: %w", srv, ErrNoInstances)
	}

	logger.Debugf("found %v instance(s) from SRV %s", len(srvs), srv)

	instances := make([]Instance, len(srvs))
	for i, record := range srvs {
		instances[i] = Instance{
			Scheme: service,
			Host:   strings.TrimSuffix(record.Target, "."),
			Port:   int(record.Port),
		}
	}

	// A stable order keeps round robin selection meaningful between lookups.
	sort.Slice(instances, func(i, j int) bool {
		if instances[i].Host != instances[j].Host {
			return instances[i].Host < instances[j].Host
		}
		return instances[i].Port < instances[j].Port
	})

	return instances, nil
}

// NewSrvResolver resolves services through DNS SRV records under domain, retrying
// transient lookup failures with jittered exponential backoff.
func NewSrvResolver(domain string, maxRetries int, backoffMin, backoffMax time.Duration) Resolver {
	return &srvResolver{
		domain:     domain,
		lookup:     net.DefaultResolver.LookupSRV,
		maxRetries: maxRetries,
		backoffMin: backoffMin,
		backoffMax: backoffMax,
	}
}
