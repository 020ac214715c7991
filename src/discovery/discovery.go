package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
)

// Errors raised while building a resolver from configuration.
type DiscoveryError string

func (e DiscoveryError) Error() string {
	return string(e)
}

var ErrNoInstances = errors.New("no instances registered")

// Instance is one reachable endpoint of a backend service.
type Instance struct {
	Scheme string
	Host   string
	Port   int
}

// BaseURL renders the instance as scheme://host:port.
func (i Instance) BaseURL() string {
	return fmt.Sprintf("%s://%s", i.Scheme, net.JoinHostPort(i.Host, strconv.Itoa(i.Port)))
}

func (i Instance) String() string {
	return i.BaseURL()
}

// Resolver looks up the current instances of a named service. Results are never
// cached by callers; every call reflects the registry at that moment.
type Resolver interface {
	// @param service supplies the logical service name, e.g. "urlshortener-auth-service".
	// @return the instances in a stable order, or an error. An empty result is reported
	//         as ErrNoInstances.
	Instances(ctx context.Context, service string) ([]Instance, error)
}
