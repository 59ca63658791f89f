// Package sounds maps filter names to the audio files played for them.
package sounds

import (
	"os"
	"regexp"
	"strings"

	"github.com/cristianoliveira/gaudible/internal/errors"
	"golang.org/x/sys/unix"
)

// Wildcard is the registry key used when no filter-specific sound exists.
const Wildcard = "*"

// DefaultSound is the wildcard sound used when none is configured.
const DefaultSound = "/usr/share/sounds/freedesktop/stereo/bell.oga"

var specPattern = regexp.MustCompile(`^(?P<name>[\w\-]+):(?P<path>.*)$`)

// KnownFilters reports whether a filter name exists.
type KnownFilters interface {
	Has(name string) bool
}

// Registry resolves filter names to sound files. It is read-only once built.
type Registry struct {
	sounds map[string]string
}

// NewRegistry builds a registry from sound specs. Each spec is either
// "<filter>:<path>" or a bare path that replaces the wildcard sound.
// Every explicit path must be readable and every filter known.
func NewRegistry(known KnownFilters, fallback string, specs []string) (*Registry, error) {
	if fallback == "" {
		fallback = DefaultSound
	}
	r := &Registry{sounds: map[string]string{Wildcard: fallback}}
	for _, spec := range specs {
		key, path := ParseSpec(spec)
		if key != Wildcard && !known.Has(key) {
			return nil, errors.InvalidConfiguration("unknown filter %q in sound spec %q", key, spec)
		}
		if err := Readable(path); err != nil {
			return nil, errors.InvalidConfiguration("audio file %q cannot be read in sound spec %q: %v", path, spec, err)
		}
		r.sounds[key] = path
	}
	return r, nil
}

// ParseSpec splits a sound spec into its registry key and file path.
// The filter name is lowercased; a spec without one targets the wildcard.
func ParseSpec(spec string) (key, path string) {
	spec = strings.TrimSpace(spec)
	m := specPattern.FindStringSubmatch(spec)
	if m == nil {
		return Wildcard, spec
	}
	return strings.ToLower(m[specPattern.SubexpIndex("name")]), m[specPattern.SubexpIndex("path")]
}

// Resolve returns the sound registered for name, or the wildcard sound.
func (r *Registry) Resolve(name string) string {
	if path, ok := r.sounds[name]; ok {
		return path
	}
	return r.sounds[Wildcard]
}

// Entries returns a copy of the registry contents.
func (r *Registry) Entries() map[string]string {
	out := make(map[string]string, len(r.sounds))
	for k, v := range r.sounds {
		out[k] = v
	}
	return out
}

// Readable checks that path is a file the current user can read.
func Readable(path string) error {
	if path == "" {
		return os.ErrNotExist
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return unix.EISDIR
	}
	return unix.Access(path, unix.R_OK)
}
