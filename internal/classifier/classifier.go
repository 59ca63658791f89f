// Package classifier decides which bus messages are notifications worth
// an audible alert.
package classifier

import (
	goerrors "errors"
	"fmt"

	"github.com/cristianoliveira/gaudible/internal/filters"
	"github.com/cristianoliveira/gaudible/internal/ports"
)

// ErrNoOrigin is returned for a message without the origin argument.
var ErrNoOrigin = goerrors.New("message has no arguments to read the origin from")

// Match returns the first active filter whose interface, method and
// origin equal the given values exactly. active is expected in name order.
func Match(iface, method, origin string, active []filters.Filter) (filters.Filter, bool) {
	for _, f := range active {
		if f.Matches(iface, method, origin) {
			return f, true
		}
	}
	return filters.Filter{}, false
}

// Origin reads the originating application from the first argument.
func Origin(msg ports.Message) (string, error) {
	if len(msg.Args) == 0 {
		return "", ErrNoOrigin
	}
	switch v := msg.Args[0].(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// Classify matches msg against the active filters.
func Classify(msg ports.Message, active []filters.Filter) (filters.Filter, bool, error) {
	origin, err := Origin(msg)
	if err != nil {
		return filters.Filter{}, false, err
	}
	f, ok := Match(msg.Interface, msg.Member, origin, active)
	return f, ok, nil
}
