package discovery

import (
	"strings"

	"github.com/akgarg/urlshortener-gateway/src/settings"
)

func NewResolverFromSettings(s settings.Settings) Resolver {
	switch strings.ToLower(s.DiscoveryType) {
	case "static":
		return NewStaticResolver(s.DiscoveryStaticInstances)
	case "srv":
		return NewSrvResolver(s.DiscoverySrvDomain, s.DiscoverySrvMaxRetries, s.DiscoverySrvBackoffMin, s.DiscoverySrvBackoffMax)
	default:
		panic(DiscoveryError("Invalid discovery type: " + s.DiscoveryType))
	}
}
