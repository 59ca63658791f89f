// Package ports defines the boundary interfaces between the notification
// pipeline and the desktop it runs in.
package ports

import (
	"context"

	"github.com/cristianoliveira/gaudible/internal/filters"
)

// Message is one method call observed on the bus. Args hold plain Go
// values; bus-specific wrappers are unwrapped by the adapter.
type Message struct {
	Interface string
	Member    string
	Args      []interface{}
}

// MessageSource is the bus listener consumed by the daemon.
type MessageSource interface {
	// Subscribe registers the full rule set in one call, before Listen.
	Subscribe(ctx context.Context, rules []filters.Rule) error
	// Listen delivers messages to handle one at a time, in bus order,
	// until ctx is cancelled or the connection fails.
	Listen(ctx context.Context, handle func(Message)) error
	Close() error
}

// AlertSetting reports whether the desktop currently shows notifications.
type AlertSetting interface {
	AlertsEnabled() bool
}

// Player plays the sound for a filter, subject to rate limiting.
type Player interface {
	Play(filter string) bool
}
