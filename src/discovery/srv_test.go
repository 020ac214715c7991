package discovery

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mockAddrsLookup(_ context.Context, service, proto, name string) (cname string, addrs []*net.SRV, err error) {
	return "ignored", []*net.SRV{
		{Target: "z.", Port: 1, Priority: 0, Weight: 0},
		{Target: "z.", Port: 0, Priority: 0, Weight: 0},
		{Target: "a.", Port: 9001, Priority: 0, Weight: 0},
	}, nil
}

func TestLookupInstancesFromSrvReturnsInstancesSorted(t *testing.T) {
	instances, err := lookupInstancesFromSrv(context.Background(), "_http._tcp.example.org.", mockAddrsLookup)
	assert.Nil(t, err)
	assert.Equal(t, []Instance{
		{Scheme: "http", Host: "a", Port: 9001},
		{Scheme: "http", Host: "z", Port: 0},
		{Scheme: "http", Host: "z", Port: 1},
	}, instances)
}

func TestParseSrvRejectsMalformedRecord(t *testing.T) {
	_, _, _, err := ParseSrv("example.org")
	assert.Error(t, err)
}

func TestSrvName(t *testing.T) {
	assert.Equal(t, "_http._tcp.urlshortener-auth-service.service.consul", SrvName("urlshortener-auth-service", "service.consul."))
}

func TestSrvResolverRetriesTransientFailures(t *testing.T) {
	assert := assert.New(t)
	calls := 0
	resolver := &srvResolver{
		domain: "service.consul",
		lookup: func(ctx context.Context, service, proto, name string) (string, []*net.SRV, error) {
			calls++
			if calls < 3 {
				return "", nil, &net.DNSError{Err: "i/o timeout", IsTimeout: true}
			}
			assert.Equal("urlshortener-auth-service.service.consul", name)
			return "", []*net.SRV{{Target: "auth.", Port: 8081}}, nil
		},
		maxRetries: 3,
		backoffMin: time.Millisecond,
		backoffMax: 2 * time.Millisecond,
	}

	instances, err := resolver.Instances(context.Background(), "urlshortener-auth-service")
	assert.NoError(err)
	assert.Equal(3, calls)
	assert.Equal([]Instance{{Scheme: "http", Host: "auth", Port: 8081}}, instances)
}

func TestSrvResolverGivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	resolver := &srvResolver{
		domain: "service.consul",
		lookup: func(ctx context.Context, service, proto, name string) (string, []*net.SRV, error) {
			calls++
			return "", nil, errors.New("server misbehaving")
		},
		maxRetries: 2,
		backoffMin: time.Millisecond,
		backoffMax: time.Millisecond,
	}

	_, err := resolver.Instances(context.Background(), "svc")
	assert.EqualError(t, err, "server misbehaving")
	assert.Equal(t, 3, calls)
}

func TestSrvResolverDoesNotRetryNotFound(t *testing.T) {
	calls := 0
	resolver := &srvResolver{
		domain: "service.consul",
		lookup: func(ctx context.Context, service, proto, name string) (string, []*net.SRV, error) {
			calls++
			return "", nil, &net.DNSError{Err: "no such host", IsNotFound: true}
		},
		maxRetries: 5,
		backoffMin: time.Millisecond,
		backoffMax: time.Millisecond,
	}

	_, err := resolver.Instances(context.Background(), "svc")
	assert.True(t, errors.Is(err, ErrNoInstances))
	assert.Equal(t, 1, calls)
}

func TestSrvResolverStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	resolver := &srvResolver{
		domain: "service.consul",
		lookup: func(ctx context.Context, service, proto, name string) (string, []*net.SRV, error) {
			cancel()
			return "", nil, errors.New("temporary")
		},
		maxRetries: 5,
		backoffMin: time.Second,
		backoffMax: time.Second,
	}

	_, err := resolver.Instances(ctx, "svc")
	assert.ErrorIs(t, err, context.Canceled)
}
