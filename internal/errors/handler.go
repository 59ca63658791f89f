package errors

import (
	"strings"
	"sync"

	"github.com/cristianoliveira/gaudible/internal/colors"
)

// ColorOutput is the console surface a CLIHandler writes to.
type ColorOutput interface {
	Error(msgs ...string)
}

// CLIHandler reports errors on the terminal using the colors package.
type CLIHandler struct {
	colors ColorOutput
	mu     sync.Mutex
}

// NewCLIHandler creates a CLIHandler writing to out.
func NewCLIHandler(out ColorOutput) *CLIHandler {
	return &CLIHandler{colors: out}
}

type colorsOutput struct{}

func (colorsOutput) Error(msgs ...string) { colors.Error(msgs...) }

// NewDefaultCLIHandler creates a CLIHandler backed by the colors package.
func NewDefaultCLIHandler() *CLIHandler {
	return NewCLIHandler(colorsOutput{})
}

func (h *CLIHandler) print(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors.Error(msg)
}

// Report prints err and returns the process exit code for it.
// Configuration problems get a hint to run --help.
func (h *CLIHandler) Report(err error) int {
	if err == nil {
		return 0
	}
	msg := err.Error()
	if Is(err, ErrInvalidConfiguration) {
		msg = strings.TrimPrefix(msg, ErrInvalidConfiguration.Error()+": ")
		h.print(msg + " (see --help)")
		return 2
	}
	h.print(msg)
	return 1
}
