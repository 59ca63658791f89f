package dnd

import (
	"time"

	"github.com/cristianoliveira/gaudible/internal/logging"
)

const (
	// DefaultTimeout bounds a single gsettings invocation.
	DefaultTimeout = 2 * time.Second
	// DefaultCacheTTL is how long a looked-up value is reused.
	DefaultCacheTTL = time.Second

	// Schema and Key locate GNOME's banner switch, which the shell turns
	// off while "Do Not Disturb" is active.
	Schema = "org.gnome.desktop.notifications"
	Key    = "show-banners"
)

// Option configures a GSettings.
type Option func(*GSettings)

// WithTimeout sets the timeout for each gsettings invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(g *GSettings) {
		g.timeout = timeout
	}
}

// WithCacheTTL sets how long a result is reused. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(g *GSettings) {
		g.cacheTTL = ttl
	}
}

// WithCommandRunner replaces the process runner, mainly for tests.
func WithCommandRunner(run CommandRunner) Option {
	return func(g *GSettings) {
		g.run = run
	}
}

// WithLogger sets the logger used for lookup failures.
func WithLogger(l logging.Logger) Option {
	return func(g *GSettings) {
		g.logger = l
	}
}

// WithClock overrides the clock used for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(g *GSettings) {
		g.now = now
	}
}
