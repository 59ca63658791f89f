// Package dnd answers whether the desktop is in "do not disturb" mode.
package dnd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/gaudible/internal/logging"
)

// CommandRunner runs a command and returns its standard output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// GSettings reads GNOME's show-banners setting through the gsettings tool.
// A failed lookup counts as alerts enabled so a broken settings backend
// never mutes the daemon.
type GSettings struct {
	timeout  time.Duration
	cacheTTL time.Duration
	run      CommandRunner
	logger   logging.Logger
	now      func() time.Time

	mu       sync.Mutex
	cached   bool
	cachedAt time.Time
	hasValue bool
}

// NewGSettings creates a GSettings lookup.
func NewGSettings(opts ...Option) *GSettings {
	g := &GSettings{
		timeout:  DefaultTimeout,
		cacheTTL: DefaultCacheTTL,
		run:      execCommand,
		logger:   logging.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AlertsEnabled reports whether notification banners are shown.
func (g *GSettings) AlertsEnabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if g.hasValue && g.cacheTTL > 0 && now.Sub(g.cachedAt) < g.cacheTTL {
		return g.cached
	}

	enabled, err := g.lookup()
	if err != nil {
		g.logger.Debug("do-not-disturb lookup failed, assuming alerts enabled", "err", err)
		return true
	}
	g.cached, g.cachedAt, g.hasValue = enabled, now, true
	return enabled
}

func (g *GSettings) lookup() (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()
	out, err := g.run(ctx, "gsettings", "get", Schema, Key)
	if err != nil {
		return false, err
	}
	return parseBool(string(out))
}

func parseBool(out string) (bool, error) {
	switch strings.TrimSpace(out) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("unexpected gsettings output %q", strings.TrimSpace(out))
	}
}

// Always is an AlertSetting with a fixed answer, used when the daemon is
// told to ignore do-not-disturb.
type Always bool

// AlertsEnabled returns the fixed answer.
func (a Always) AlertsEnabled() bool { return bool(a) }
