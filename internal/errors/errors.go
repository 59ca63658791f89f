// Package errors defines the error taxonomy shared by gaudible components.
package errors

import (
	goerrors "errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration marks startup problems: an unreadable sound file,
	// a player that is not executable or an unknown filter name.
	ErrInvalidConfiguration = goerrors.New("invalid configuration")

	// ErrClassification marks a failure while inspecting a delivered bus message.
	ErrClassification = goerrors.New("classification failed")

	// ErrPlayback marks a player process that failed to launch or exited non-zero.
	ErrPlayback = goerrors.New("playback failed")
)

// InvalidConfiguration returns an error wrapping ErrInvalidConfiguration.
func InvalidConfiguration(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// Classification wraps cause as an ErrClassification.
func Classification(cause error) error {
	return fmt.Errorf("%w: %w", ErrClassification, cause)
}

// Playback wraps cause as an ErrPlayback for the given sound file.
func Playback(sound string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrPlayback, sound, cause)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return goerrors.Is(err, target)
}
