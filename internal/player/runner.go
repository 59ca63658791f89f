package player

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/cristianoliveira/gaudible/internal/errors"
	"golang.org/x/sys/unix"
)

// DefaultPlayer is the player executable used when none is configured.
const DefaultPlayer = "/usr/bin/paplay"

// Runner launches the player with a single sound file argument and waits
// for it to exit.
type Runner interface {
	Run(ctx context.Context, player, sound string) error
}

// ExecRunner runs the player as a child process.
type ExecRunner struct{}

// Run executes `player sound`. A non-zero exit status is an error that
// carries whatever the player wrote to stderr.
func (ExecRunner) Run(ctx context.Context, player, sound string) error {
	cmd := exec.CommandContext(ctx, player, sound)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("timed out: %w", ctx.Err())
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// CheckExecutable verifies that path exists and may be executed by the
// current user.
func CheckExecutable(path string) error {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		err = unix.EISDIR
	}
	if err == nil {
		err = unix.Access(path, unix.R_OK|unix.X_OK)
	}
	if err != nil {
		return errors.InvalidConfiguration("player %q does not exist or is not executable: %v", path, err)
	}
	return nil
}
