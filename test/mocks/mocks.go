package mocks

//go:generate go run github.com/golang/mock/mockgen -destination ./limiter/limiter.go github.com/akgarg/urlshortener-gateway/src/limiter RateLimitCache,Engine
//go:generate go run github.com/golang/mock/mockgen -destination ./utils/utils.go github.com/akgarg/urlshortener-gateway/src/utils TimeSource
//go:generate go run github.com/golang/mock/mockgen -destination ./memcached/memcached.go github.com/akgarg/urlshortener-gateway/src/memcached Client
//go:generate go run github.com/golang/mock/mockgen -destination ./discovery/discovery.go github.com/akgarg/urlshortener-gateway/src/discovery Resolver
//go:generate go run github.com/golang/mock/mockgen -destination ./auth/auth.go github.com/akgarg/urlshortener-gateway/src/auth TokenValidator,AdminVerifier
