package config

import (
	"regexp"
)

// Errors that may be raised during config parsing.
type GatewayConfigError string

func (e GatewayConfigError) Error() string {
	return string(e)
}

// IdentityStrategy names the caller identifier a route is rate limited by.
type IdentityStrategy string

const (
	StrategyUserId   IdentityStrategy = "USER_ID"
	StrategyClientIp IdentityStrategy = "CLIENT_IP"
)

type Rewrite struct {
	Regex       *regexp.Regexp
	Replacement string
}

// Apply rewrites the request path, leaving it untouched when the regex does not match.
func (r *Rewrite) Apply(path string) string {
	if r == nil || !r.Regex.MatchString(path) {
		return path
	}
	return r.Regex.ReplaceAllString(path, r.Replacement)
}

type RouteRateLimit struct {
	Strategy IdentityStrategy
	// Raw value as written in the route table. Parsing and its fail-closed
	// fallback belong to the limiter's policy table.
	RequestsPerWindow string
}

// A Route is one route class: a path pattern bound to a backend service and its admission stages.
type Route struct {
	Class        string
	Pattern      string
	Service      string
	Rewrite      *Rewrite
	RateLimit    *RouteRateLimit
	RequireToken bool
}

// AdminRule is one (method, pattern) pair reserved for ADMIN principals.
type AdminRule struct {
	Method  string
	Pattern string
}

type GatewayConfig struct {
	Routes     []Route
	AdminRules []AdminRule
}
