package filters

import (
	"sort"
	"strings"
)

// Rule is a bus match expression covering every filter that shares an
// interface and method.
type Rule struct {
	Interface string
	Method    string
	// Sender is set only when the rule must skip a forwarded duplicate.
	Sender string
}

// String renders the rule as a D-Bus match expression.
func (r Rule) String() string {
	var b strings.Builder
	b.WriteString("type='method_call',interface='")
	b.WriteString(r.Interface)
	b.WriteString("',member='")
	b.WriteString(r.Method)
	b.WriteString("'")
	if r.Sender != "" {
		b.WriteString(",sender='")
		b.WriteString(r.Sender)
		b.WriteString("'")
	}
	return b.String()
}

// SenderQualifiers lists the interfaces whose rules are restricted to a
// sender of the same name. The bus forwards legacy notifications to the
// newer interface, so an unrestricted legacy rule sees each event twice.
type SenderQualifiers map[string]bool

// DefaultSenderQualifiers qualifies only the legacy freedesktop interface.
func DefaultSenderQualifiers() SenderQualifiers {
	return SenderQualifiers{InterfaceFreedesktop: true}
}

// NewSenderQualifiers builds a qualifier set from interface names.
func NewSenderQualifiers(ifaces ...string) SenderQualifiers {
	q := make(SenderQualifiers, len(ifaces))
	for _, iface := range ifaces {
		if iface = strings.TrimSpace(iface); iface != "" {
			q[iface] = true
		}
	}
	return q
}

// Subscription pairs a filter with the rule that observes it.
type Subscription struct {
	Filter Filter
	Rule   Rule
}

// Subscribe derives the minimal rule set for the active filters: one rule
// per (interface, method) group. The result is sorted and does not depend
// on the order of active.
func Subscribe(active []Filter, qualifiers SenderQualifiers) ([]Rule, []Subscription) {
	subs := make([]Subscription, 0, len(active))
	seen := make(map[Rule]bool)
	rules := []Rule{}
	for _, f := range active {
		rule := Rule{Interface: f.Interface, Method: f.Method}
		if qualifiers[f.Interface] {
			rule.Sender = f.Interface
		}
		subs = append(subs, Subscription{Filter: f, Rule: rule})
		if seen[rule] {
			continue
		}
		seen[rule] = true
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].String() < rules[j].String() })
	sort.Slice(subs, func(i, j int) bool { return subs[i].Filter.Name < subs[j].Filter.Name })
	return rules, subs
}

// MatchStrings renders rules as the match expressions passed to the bus.
func MatchStrings(rules []Rule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.String()
	}
	return out
}
