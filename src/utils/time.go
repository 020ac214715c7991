package utils

import "time"

// Interface for a time source.
type TimeSource interface {
	// @return the current wall clock time.
	Now() time.Time
}
