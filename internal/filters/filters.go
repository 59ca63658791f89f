// Package filters holds the table of recognized notification sources and
// derives the bus subscriptions needed to observe them.
package filters

import (
	"sort"

	"github.com/cristianoliveira/gaudible/internal/errors"
)

// Well-known notification interfaces.
const (
	// InterfaceFreedesktop is the legacy desktop notification protocol.
	InterfaceFreedesktop = "org.freedesktop.Notifications"
	// InterfaceGtk is the newer GApplication notification protocol.
	InterfaceGtk = "org.gtk.Notifications"
)

// Filter identifies one recognized kind of notification.
type Filter struct {
	Name      string
	Interface string
	Method    string
	// Origin is the expected first argument of the message.
	Origin string
}

// Matches reports whether the message fields equal the filter's exactly.
func (f Filter) Matches(iface, method, origin string) bool {
	return f.Interface == iface && f.Method == method && f.Origin == origin
}

// Table is an immutable set of filters keyed by name.
type Table struct {
	byName map[string]Filter
	names  []string
}

// NewTable builds a table from defs. Names must be unique.
func NewTable(defs ...Filter) (*Table, error) {
	t := &Table{byName: make(map[string]Filter, len(defs))}
	for _, f := range defs {
		if f.Name == "" {
			return nil, errors.InvalidConfiguration("filter without a name: %+v", f)
		}
		if _, dup := t.byName[f.Name]; dup {
			return nil, errors.InvalidConfiguration("duplicate filter %q", f.Name)
		}
		t.byName[f.Name] = f
		t.names = append(t.names, f.Name)
	}
	sort.Strings(t.names)
	return t, nil
}

var builtin = []Filter{
	{Name: "calendar", Interface: InterfaceGtk, Method: "AddNotification", Origin: "org.gnome.Evolution-alarm-notify"},
	{Name: "calendar-legacy", Interface: InterfaceFreedesktop, Method: "Notify", Origin: "Evolution Reminders"},
	{Name: "firefox", Interface: InterfaceFreedesktop, Method: "Notify", Origin: "Firefox"},
	{Name: "notify-send", Interface: InterfaceFreedesktop, Method: "Notify", Origin: "notify-send"},
	{Name: "chrome", Interface: InterfaceFreedesktop, Method: "Notify", Origin: "Google Chrome"},
}

// Builtin returns the table of notification sources gaudible knows about.
func Builtin() *Table {
	t, err := NewTable(builtin...)
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns all filter names, sorted.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Has reports whether name is a known filter.
func (t *Table) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Select returns the active filter set for the requested names, sorted by
// name and deduplicated. No names selects every known filter.
func (t *Table) Select(names []string) ([]Filter, error) {
	if len(names) == 0 {
		names = t.names
	}
	seen := make(map[string]bool, len(names))
	active := make([]Filter, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		f, ok := t.byName[name]
		if !ok {
			return nil, errors.InvalidConfiguration("unknown filter %q (choose from %v)", name, t.names)
		}
		active = append(active, f)
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Name < active[j].Name })
	return active, nil
}
