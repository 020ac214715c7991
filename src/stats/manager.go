package stats

import stats "github.com/lyft/gostats"

// Manager is the interface that wraps initialization of stat structures.
type Manager interface {
	// Create new rate limit stats for a route class.
	NewStats(key string) RateLimitStats
	// Create request and rejection stats for a route class.
	NewRouteStats(key string) RouteStats
	NewAdminStats() AdminStats
	NewTokenStats() TokenStats
	// Stats for the storage backend the rate limit engine counts in.
	NewBackendStats() BackendStats
	GetStatsStore() stats.Store
}

// Stats for an individual rate limit config entry.
type RateLimitStats struct {
	Key                     string
	TotalHits               stats.Counter
	OverLimit               stats.Counter
	OverLimitWithLocalCache stats.Counter
	WithinLimit             stats.Counter
	ContractViolation       stats.Counter
}

// Stats for one route class as seen by the request logging stage.
type RouteStats struct {
	Key      string
	Requests stats.Counter
	Duration stats.Timer
	// Rejections by status code.
	BadRequest         stats.Counter
	Unauthorized       stats.Counter
	Forbidden          stats.Counter
	TooManyRequests    stats.Counter
	ServiceUnavailable stats.Counter
}

// Stats for admin verification calls.
type AdminStats struct {
	Skipped  stats.Counter
	Granted  stats.Counter
	NotFound stats.Counter
	Error    stats.Counter
}

// Stats for token validation calls.
type TokenStats struct {
	Missing stats.Counter
	Valid   stats.Counter
	Invalid stats.Counter
	Error   stats.Counter
}

type BackendStats struct {
	Error stats.Counter
}

func (this RateLimitStats) GetKey() string {
	return this.Key
}
