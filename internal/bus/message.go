package bus

import (
	"github.com/cristianoliveira/gaudible/internal/ports"
	"github.com/godbus/dbus/v5"
)

// convert extracts a method call from a raw bus message. Other message
// types, which a monitor also sees, are skipped.
func convert(raw *dbus.Message) (ports.Message, bool) {
	if raw == nil || raw.Type != dbus.TypeMethodCall {
		return ports.Message{}, false
	}
	args := make([]interface{}, len(raw.Body))
	for i, v := range raw.Body {
		args[i] = unwrap(v)
	}
	return ports.Message{
		Interface: headerString(raw, dbus.FieldInterface),
		Member:    headerString(raw, dbus.FieldMember),
		Args:      args,
	}, true
}

func headerString(raw *dbus.Message, field dbus.HeaderField) string {
	v, ok := raw.Headers[field]
	if !ok {
		return ""
	}
	s, _ := v.Value().(string)
	return s
}

// unwrap replaces variants with their contents, recursively, so the
// pipeline only deals with plain Go values.
func unwrap(v interface{}) interface{} {
	switch x := v.(type) {
	case dbus.Variant:
		return unwrap(x.Value())
	case map[string]dbus.Variant:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[k] = unwrap(val.Value())
		}
		return out
	case []dbus.Variant:
		out := make([]interface{}, len(x))
		for i, val := range x {
			out[i] = unwrap(val.Value())
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, val := range x {
			out[i] = unwrap(val)
		}
		return out
	default:
		return v
	}
}
