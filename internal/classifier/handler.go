package classifier

import (
	"fmt"

	"github.com/cristianoliveira/gaudible/internal/errors"
	"github.com/cristianoliveira/gaudible/internal/filters"
	"github.com/cristianoliveira/gaudible/internal/logging"
	"github.com/cristianoliveira/gaudible/internal/ports"
)

// Outcome is what the handler did with one message.
type Outcome int

const (
	Dropped Outcome = iota
	Received
	Suppressed
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Received:
		return "RECEIVE"
	case Suppressed:
		return "SUPPRESS"
	case Failed:
		return "ERROR"
	default:
		return "DROP"
	}
}

// Handler classifies delivered messages and forwards matches to the player.
// It never returns an error or panics on a bad message.
type Handler struct {
	active []filters.Filter
	alerts ports.AlertSetting
	player ports.Player
	logger logging.Logger
}

// NewHandler creates a Handler. alerts may be nil, meaning alerts are
// always enabled.
func NewHandler(active []filters.Filter, alerts ports.AlertSetting, player ports.Player, logger logging.Logger) *Handler {
	if player == nil {
		panic("classifier.NewHandler: player dependency cannot be nil")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handler{active: active, alerts: alerts, player: player, logger: logger}
}

// Handle processes one message.
func (h *Handler) Handle(msg ports.Message) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			h.fail(msg, fmt.Errorf("panic: %v", r))
			outcome = Failed
		}
	}()

	f, ok, err := Classify(msg, h.active)
	if err != nil {
		h.fail(msg, err)
		return Failed
	}
	from := msg.Interface + ":" + msg.Member
	if !ok {
		h.logger.Debug(Dropped.String(), "from", from, "args", SummarizeArgs(msg.Args))
		return Dropped
	}

	if h.alerts != nil && !h.alerts.AlertsEnabled() {
		h.logger.Info(Suppressed.String(), "filter", f.Name, "from", from, "args", SummarizeArgs(msg.Args))
		return Suppressed
	}

	h.logger.Info(Received.String(), "filter", f.Name, "from", from, "args", SummarizeArgs(msg.Args))
	h.player.Play(f.Name)
	return Received
}

func (h *Handler) fail(msg ports.Message, cause error) {
	h.logger.Error("classification failed",
		"from", msg.Interface+":"+msg.Member,
		"err", errors.Classification(cause))
}
