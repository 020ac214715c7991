package limiter

import (
	"context"
	"time"
)

// LimitStatus is the outcome of counting one hit against a key.
type LimitStatus struct {
	OverLimit bool
	// Hits counted in the current window, including this one when admitted.
	Count uint32
	// Time until the window resets, zero when the backend does not know it.
	ResetAfter time.Duration
}

// Interface for interacting with a counter store for rate limiting.
// Implementations must make the check-and-increment of one key linearizable.
type RateLimitCache interface {
	// Count one hit for key against a fixed window.
	// @param ctx supplies the request context.
	// @param key supplies the counter key.
	// @param limit supplies the maximum hits admitted per window.
	// @param window supplies the window duration.
	// @return the status of the key after this hit. Hits over the limit are not admitted.
	// 				 Throws a backend specific error type if the store could not be reached.
	DoLimit(ctx context.Context, key string, limit uint32, window time.Duration) LimitStatus

	// Release the store's resources and stop background work.
	Close() error
}
