// Package player plays notification sounds through an external player
// process, at most once per quiet period.
package player

import (
	"context"
	"sync"
	"time"

	"github.com/cristianoliveira/gaudible/internal/errors"
	"github.com/cristianoliveira/gaudible/internal/logging"
	"github.com/google/uuid"
)

const (
	// MinInterval is the floor applied to the configured rate interval.
	MinInterval = 10 * time.Microsecond

	// DefaultInterval is the quiet period used when none is configured.
	DefaultInterval = 500 * time.Millisecond

	// DefaultHandoffWait bounds how long Play blocks after starting a worker.
	DefaultHandoffWait = 100 * time.Millisecond
)

// Resolver maps a filter name to a sound file.
type Resolver interface {
	Resolve(name string) string
}

// Options configure a Dispatcher.
type Options struct {
	Player string
	Sounds Resolver
	// Interval is the quiet period started by each accepted play.
	Interval time.Duration
	// HandoffWait is how long Play waits for a freshly started worker
	// before returning. Zero returns immediately.
	HandoffWait time.Duration
	// Timeout kills a player that runs longer than this. Zero disables it.
	Timeout time.Duration
	Runner  Runner
	Logger  logging.Logger
	// Now is the clock used for the quiet period.
	Now func() time.Time
}

// Dispatcher is a leading-edge, fixed-window rate limited player.
type Dispatcher struct {
	player      string
	sounds      Resolver
	interval    time.Duration
	handoffWait time.Duration
	timeout     time.Duration
	runner      Runner
	logger      logging.Logger
	now         func() time.Time

	mu         sync.Mutex
	quietUntil time.Time

	pending sync.WaitGroup
}

// ClampInterval enforces MinInterval.
func ClampInterval(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	return d
}

// IntervalFromMillis converts a configured rate in milliseconds.
func IntervalFromMillis(ms int) time.Duration {
	return ClampInterval(time.Duration(ms) * time.Millisecond)
}

// New creates a Dispatcher. The first Play is always accepted.
func New(opts Options) *Dispatcher {
	if opts.Sounds == nil {
		panic("player.New: sounds dependency cannot be nil")
	}
	d := &Dispatcher{
		player:      opts.Player,
		sounds:      opts.Sounds,
		interval:    ClampInterval(opts.Interval),
		handoffWait: opts.HandoffWait,
		timeout:     opts.Timeout,
		runner:      opts.Runner,
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if d.player == "" {
		d.player = DefaultPlayer
	}
	if d.runner == nil {
		d.runner = ExecRunner{}
	}
	if d.logger == nil {
		d.logger = logging.Nop()
	}
	if d.now == nil {
		d.now = time.Now
	}
	if d.handoffWait < 0 {
		d.handoffWait = 0
	}
	return d
}

// Interval returns the effective quiet period.
func (d *Dispatcher) Interval() time.Duration {
	return d.interval
}

// Play starts the sound registered for name unless a quiet period is in
// effect. It reports whether the request was accepted. Playback failures
// are logged and never returned.
func (d *Dispatcher) Play(name string) bool {
	if !d.reserve() {
		return false
	}

	sound := d.sounds.Resolve(name)
	id := uuid.NewString()
	done := make(chan struct{})
	d.pending.Add(1)
	go d.run(id, name, sound, done)

	// Give the worker a head start before handing control back to the
	// listener loop. Safe to set to zero.
	if d.handoffWait > 0 {
		timer := time.NewTimer(d.handoffWait)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
		}
	}
	return true
}

// reserve checks the quiet period and, if it has passed, starts a new one.
func (d *Dispatcher) reserve() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if !now.After(d.quietUntil) {
		d.logger.Debug("audioplayer: in quiet period", "remaining", d.quietUntil.Sub(now).Round(time.Millisecond))
		return false
	}
	d.quietUntil = now.Add(d.interval)
	d.logger.Debug("audioplayer: setting quiet period",
		"now", now.Format("15:04:05.000"),
		"quiet_until", d.quietUntil.Format("15:04:05.000"),
		"interval", d.interval)
	return true
}

func (d *Dispatcher) run(id, name, sound string, done chan struct{}) {
	defer d.pending.Done()
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("player worker panicked", "id", id, "filter", name, "panic", r)
		}
	}()

	ctx := context.Background()
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	d.logger.Debug("EXEC", "id", id, "cmd", []string{d.player, sound})
	start := time.Now()
	if err := d.runner.Run(ctx, d.player, sound); err != nil {
		d.logger.Warn("player failed", "id", id, "filter", name,
			"err", errors.Playback(sound, err), "duration", time.Since(start).Round(time.Millisecond))
		return
	}
	d.logger.Debug("player finished", "id", id, "duration", time.Since(start).Round(time.Millisecond))
}

// Wait blocks until every started player has exited.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}
