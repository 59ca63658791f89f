// Package app wires the notification pipeline together and runs it.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/cristianoliveira/gaudible/internal/classifier"
	"github.com/cristianoliveira/gaudible/internal/filters"
	"github.com/cristianoliveira/gaudible/internal/logging"
	"github.com/cristianoliveira/gaudible/internal/player"
	"github.com/cristianoliveira/gaudible/internal/ports"
	"github.com/cristianoliveira/gaudible/internal/sounds"
)

// ConnectFunc opens the bus connection the daemon listens on.
type ConnectFunc func(logger logging.Logger) (ports.MessageSource, error)

// DaemonOptions holds everything the daemon needs. Filters, Sounds and
// Player are validated by NewDaemon, before any bus connection is made.
type DaemonOptions struct {
	// Table is the filter table; nil means the built-in one.
	Table *filters.Table
	// Filters names the active filters; empty activates all of them.
	Filters []string
	// SenderQualifiers lists interfaces whose rules carry a sender.
	SenderQualifiers filters.SenderQualifiers
	// Sounds are "<filter>:<path>" or bare path specs.
	Sounds []string

	Player        string
	Interval      time.Duration
	HandoffWait   time.Duration
	PlayerTimeout time.Duration
	// SkipPlayerCheck disables the executable check on Player.
	SkipPlayerCheck bool

	Connect ConnectFunc
	Alerts  ports.AlertSetting
	Runner  player.Runner
	Logger  logging.Logger
	Now     func() time.Time
}

// Daemon is a validated, ready to run pipeline.
type Daemon struct {
	connect    ConnectFunc
	rules      []filters.Rule
	subs       []filters.Subscription
	registry   *sounds.Registry
	dispatcher *player.Dispatcher
	handler    *classifier.Handler
	logger     logging.Logger
}

// NewDaemon validates opts and builds the pipeline. Any error it returns
// is a configuration error.
func NewDaemon(opts DaemonOptions) (*Daemon, error) {
	if opts.Connect == nil {
		panic("app.NewDaemon: connect dependency cannot be nil")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	table := opts.Table
	if table == nil {
		table = filters.Builtin()
	}
	if opts.SenderQualifiers == nil {
		opts.SenderQualifiers = filters.DefaultSenderQualifiers()
	}

	registry, err := sounds.NewRegistry(table, sounds.DefaultSound, opts.Sounds)
	if err != nil {
		return nil, err
	}
	if opts.Player == "" {
		opts.Player = player.DefaultPlayer
	}
	if !opts.SkipPlayerCheck {
		if err := player.CheckExecutable(opts.Player); err != nil {
			return nil, err
		}
	}
	active, err := table.Select(opts.Filters)
	if err != nil {
		return nil, err
	}
	rules, subs := filters.Subscribe(active, opts.SenderQualifiers)

	dispatcher := player.New(player.Options{
		Player:      opts.Player,
		Sounds:      registry,
		Interval:    opts.Interval,
		HandoffWait: opts.HandoffWait,
		Timeout:     opts.PlayerTimeout,
		Runner:      opts.Runner,
		Logger:      opts.Logger,
		Now:         opts.Now,
	})

	return &Daemon{
		connect:    opts.Connect,
		rules:      rules,
		subs:       subs,
		registry:   registry,
		dispatcher: dispatcher,
		handler:    classifier.NewHandler(active, opts.Alerts, dispatcher, opts.Logger),
		logger:     opts.Logger,
	}, nil
}

// Rules returns the subscription rules the daemon registers.
func (d *Daemon) Rules() []filters.Rule {
	return d.rules
}

// Run connects, subscribes and handles messages until ctx is cancelled or
// the connection fails. It waits for running players before returning.
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info("sounds", "registry", d.registry.Entries())
	d.logger.Debug("rate limit", "interval", d.dispatcher.Interval())

	source, err := d.connect(d.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := source.Close(); err != nil {
			d.logger.Debug("closing bus connection", "err", err)
		}
	}()

	for _, s := range d.subs {
		d.logger.Info("Subscribe", "filter", s.Filter.Name, "rule", s.Rule.String(), "origin", s.Filter.Origin)
	}
	if err := source.Subscribe(ctx, d.rules); err != nil {
		return err
	}
	d.logger.Info("ONLINE", "filters", len(d.subs))

	err = source.Listen(ctx, func(msg ports.Message) {
		d.handler.Handle(msg)
	})
	d.dispatcher.Wait()
	if err != nil {
		return fmt.Errorf("listening on bus: %w", err)
	}
	d.logger.Info("OFFLINE")
	return nil
}
