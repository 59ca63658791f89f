// Package bus observes notification method calls on the D-Bus session bus
// through the monitoring interface.
package bus

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristianoliveira/gaudible/internal/filters"
	"github.com/cristianoliveira/gaudible/internal/logging"
	"github.com/cristianoliveira/gaudible/internal/ports"
	"github.com/godbus/dbus/v5"
)

const (
	monitoringInterface = "org.freedesktop.DBus.Monitoring"
	becomeMonitorMethod = monitoringInterface + ".BecomeMonitor"

	// queueSize bounds messages buffered between the connection and Listen.
	// The connection drops messages when the queue is full.
	queueSize = 4096
)

// ErrClosed is returned by Listen when the bus connection goes away.
var ErrClosed = errors.New("bus connection closed")

// conn is the part of *dbus.Conn the monitor uses.
type conn interface {
	Eavesdrop(ch chan<- *dbus.Message)
	BusObject() dbus.BusObject
	Close() error
}

// Monitor is a ports.MessageSource backed by a dedicated monitor
// connection. A monitor connection cannot be used for anything else once
// BecomeMonitor succeeds.
//
// The eavesdrop channel is registered only after BecomeMonitor returns:
// while it is set, the connection routes every incoming message to it,
// including method replies.
type Monitor struct {
	conn   conn
	ch     chan *dbus.Message
	logger logging.Logger
}

var _ ports.MessageSource = (*Monitor)(nil)

// ConnectSession opens a private session bus connection for monitoring.
func ConnectSession(logger logging.Logger) (*Monitor, error) {
	c, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connecting to session bus: %w", err)
	}
	return newMonitor(c, logger), nil
}

func newMonitor(c conn, logger logging.Logger) *Monitor {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Monitor{conn: c, ch: make(chan *dbus.Message, queueSize), logger: logger}
}

// Subscribe turns the connection into a monitor for the given rules.
// An empty rule set is valid and yields no messages; BecomeMonitor is not
// called for it because an empty list would mean "everything".
func (m *Monitor) Subscribe(ctx context.Context, rules []filters.Rule) error {
	if len(rules) == 0 {
		m.logger.Info("no active filters, nothing to subscribe to")
		m.conn.Eavesdrop(m.ch)
		return nil
	}
	call := m.conn.BusObject().CallWithContext(ctx, becomeMonitorMethod, 0, filters.MatchStrings(rules), uint32(0))
	if call.Err != nil {
		return fmt.Errorf("becoming bus monitor: %w", call.Err)
	}
	m.conn.Eavesdrop(m.ch)
	return nil
}

// Listen hands every observed method call to handle, one at a time.
func (m *Monitor) Listen(ctx context.Context, handle func(ports.Message)) error {
	return deliver(ctx, m.ch, handle)
}

// Close closes the underlying connection.
func (m *Monitor) Close() error {
	return m.conn.Close()
}

func deliver(ctx context.Context, ch <-chan *dbus.Message, handle func(ports.Message)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-ch:
			if !ok {
				return ErrClosed
			}
			if msg, ok := convert(raw); ok {
				handle(msg)
			}
		}
	}
}
