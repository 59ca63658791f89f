// Package cmd implements the gaudible command line.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/cristianoliveira/gaudible/internal/app"
	"github.com/cristianoliveira/gaudible/internal/bus"
	"github.com/cristianoliveira/gaudible/internal/colors"
	"github.com/cristianoliveira/gaudible/internal/config"
	"github.com/cristianoliveira/gaudible/internal/dnd"
	"github.com/cristianoliveira/gaudible/internal/errors"
	"github.com/cristianoliveira/gaudible/internal/filters"
	"github.com/cristianoliveira/gaudible/internal/logging"
	"github.com/cristianoliveira/gaudible/internal/player"
	"github.com/cristianoliveira/gaudible/internal/ports"
	"github.com/cristianoliveira/gaudible/internal/version"
	"github.com/spf13/cobra"
)

const rootLong = `Plays a sound when a desktop notification arrives.

gaudible watches the session bus for notification calls from known
applications and plays a sound for each, at most once per --rate-ms.

Sound specs are either <filter>:<path>, which sets the sound for one
filter, or a bare <path>, which replaces the default sound.

Built-in filters: calendar, calendar-legacy, chrome, firefox, notify-send.`

// connect opens the bus connection. Replaced in tests.
var connect app.ConnectFunc = connectSession

func connectSession(logger logging.Logger) (ports.MessageSource, error) {
	m, err := bus.ConnectSession(logger)
	if err != nil {
		return nil, err
	}
	return m, nil
}

type rootOptions struct {
	configPath string
	debug      bool
	sounds     []string
	filters    []string
	player     string
	rateMs     int
}

// NewRootCmd creates the gaudible command with its subcommands.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "gaudible",
		Short:         "Play a sound when desktop notifications arrive",
		Long:          rootLong,
		Args:          cobra.NoArgs,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// --debug also shows how the configuration was loaded
			if opts.debug {
				colors.SetDebug(true)
			}
			config.SetPath(opts.configPath)
			config.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd, opts)
		},
	}
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.InvalidConfiguration("%v", err)
	})

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "TOML config file (default $XDG_CONFIG_HOME/gaudible/config.toml)")
	f := rootCmd.Flags()
	f.BoolVar(&opts.debug, "debug", false, "verbose logging")
	f.StringArrayVar(&opts.sounds, "sound", nil, "sound spec, <filter>:<path> or <path> (repeatable)")
	f.StringArrayVar(&opts.filters, "filter", nil, "only listen for this filter (repeatable)")
	f.StringVar(&opts.player, "player", player.DefaultPlayer, "audio player executable")
	f.IntVar(&opts.rateMs, "rate-ms", int(player.DefaultInterval/time.Millisecond), "minimum milliseconds between sounds")

	rootCmd.AddCommand(NewVersionCmd())
	return rootCmd
}

// applyFlags layers explicitly set flags over the loaded configuration.
// List flags replace the configured list rather than extending it.
func applyFlags(cmd *cobra.Command, opts *rootOptions) {
	f := cmd.Flags()
	if f.Changed("debug") {
		config.Set("debug", strconv.FormatBool(opts.debug))
	}
	if f.Changed("player") {
		config.Set("player", opts.player)
	}
	if f.Changed("rate-ms") {
		config.Set("rate_ms", strconv.Itoa(opts.rateMs))
	}
	if !f.Changed("sound") {
		opts.sounds = config.GetList("sounds")
	}
	if !f.Changed("filter") {
		opts.filters = config.GetList("filters")
	}
}

func runDaemon(cmd *cobra.Command, opts *rootOptions) error {
	applyFlags(cmd, opts)

	logger, err := logging.Init(logging.FromGlobalConfig())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Shutdown() }()
	if path := logging.FilePath(logger); path != "" {
		logger.Debug("logging to file", "path", path)
	}

	var alerts ports.AlertSetting = dnd.Always(true)
	if config.GetBool("respect_dnd", true) {
		alerts = dnd.NewGSettings(dnd.WithLogger(logger))
	}

	daemon, err := app.NewDaemon(app.DaemonOptions{
		Filters:          opts.filters,
		SenderQualifiers: filters.NewSenderQualifiers(config.GetList("sender_qualified_interfaces")...),
		Sounds:           opts.sounds,
		Player:           config.Get("player", player.DefaultPlayer),
		Interval:         player.IntervalFromMillis(config.GetInt("rate_ms", 500)),
		HandoffWait:      time.Duration(config.GetInt("handoff_wait_ms", 100)) * time.Millisecond,
		PlayerTimeout:    time.Duration(config.GetInt("player_timeout", 30)) * time.Second,
		Connect:          connect,
		Alerts:           alerts,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := daemon.Run(ctx); err != nil {
		logger.Error("daemon stopped", "err", err)
		return err
	}
	return nil
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	err := NewRootCmd().ExecuteContext(context.Background())
	return errors.NewDefaultCLIHandler().Report(err)
}
