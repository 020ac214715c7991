package redis

import (
	"github.com/mediocregopher/radix/v3"
)

// Errors that may be raised while talking to redis.
type RedisError string

func (e RedisError) Error() string {
	return string(e)
}

// Interface for a redis client.
type Client interface {
	// Do performs a redis action, e.g. a command or a script invocation.
	//
	// @param action supplies the action to perform.
	Do(action radix.Action) error

	// Once Close() is called all future method calls on the Client will return
	// an error
	Close() error

	// NumActiveConns return number of active connections, used in testing.
	NumActiveConns() int
}

// HealthReporter receives the redis component's health transitions.
type HealthReporter interface {
	Ok(componentName string) error
	Fail(componentName string) error
}

const HealthComponentName = "redis"
