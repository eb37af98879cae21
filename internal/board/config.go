package board

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultInterval       = 20 * time.Second
	DefaultAttemptTimeout = 15 * time.Second
)

type Config struct {
	// Interval is the wait after every attempt, successful or not.
	Interval time.Duration
	// AttemptTimeout bounds a single request.
	AttemptTimeout time.Duration
	// StartupTimeout bounds the initial fetch; zero retries until the
	// context ends.
	StartupTimeout time.Duration
	// Clock stamps snapshots; defaults to the system clock.
	Clock backoff.Clock
}

func (config Config) withDefaults() Config {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.AttemptTimeout <= 0 {
		config.AttemptTimeout = DefaultAttemptTimeout
	}
	if config.Clock == nil {
		config.Clock = backoff.SystemClock
	}
	return config
}
