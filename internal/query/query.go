// Package query builds backend request strings from form snapshots.
package query

import (
	"net/url"
	"strings"

	"github.com/PentesterFlow/ladderadmin/internal/form"
)

// Builder accumulates ordered key=value pairs after an endpoint+command
// prefix. The first pair is joined with '?', every later pair with '&'.
type Builder struct {
	b     strings.Builder
	pairs int
}

// NewBuilder starts a query for endpoint+command.
func NewBuilder(endpoint, command string) *Builder {
	qb := &Builder{}
	qb.b.WriteString(endpoint)
	qb.b.WriteString(command)
	return qb
}

// Add appends key=value with the value percent-encoded.
func (qb *Builder) Add(key, value string) *Builder {
	return qb.AddRaw(key, Escape(value))
}

// AddRaw appends key=value without encoding the value.
func (qb *Builder) AddRaw(key, value string) *Builder {
	qb.separator()
	qb.b.WriteString(key)
	qb.b.WriteByte('=')
	qb.b.WriteString(value)
	return qb
}

// AddBool appends key=true or key=false.
func (qb *Builder) AddBool(key string, value bool) *Builder {
	if value {
		return qb.AddRaw(key, "true")
	}
	return qb.AddRaw(key, "false")
}

// Append adds a preformatted "k=v[&k=v...]" fragment verbatim.
// Empty fragments are ignored.
func (qb *Builder) Append(fragment string) *Builder {
	if fragment == "" {
		return qb
	}
	qb.separator()
	qb.b.WriteString(fragment)
	return qb
}

func (qb *Builder) separator() {
	if qb.pairs == 0 {
		qb.b.WriteByte('?')
	} else {
		qb.b.WriteByte('&')
	}
	qb.pairs++
}

// Len returns the number of pairs added so far.
func (qb *Builder) Len() int {
	return qb.pairs
}

// String returns the query built so far.
func (qb *Builder) String() string {
	return qb.b.String()
}

// unreserved restores the characters encodeURIComponent leaves alone but
// url.QueryEscape encodes.
var unreserved = strings.NewReplacer(
	"+", "%20",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%21", "!",
	"%2A", "*",
)

// Escape percent-encodes a value for use in a query component, following
// encodeURIComponent: spaces become %20 and !'()* stay literal.
func Escape(value string) string {
	return unreserved.Replace(url.QueryEscape(value))
}

// Includable reports whether a field contributes a pair to the generic
// serialization.
func Includable(f form.Field) bool {
	if f.Name == "" || f.Sensitive() {
		return false
	}
	return f.Value != "" || f.IsCheckbox()
}

// Serialize builds endpoint+command followed by one pair per includable
// field, in field order. Checkboxes emit their checked state.
func Serialize(endpoint, command string, fields []form.Field) string {
	qb := NewBuilder(endpoint, command)
	for _, f := range fields {
		if !Includable(f) {
			continue
		}
		if f.IsCheckbox() {
			qb.AddBool(f.Name, f.Checked)
			continue
		}
		qb.Add(f.Name, f.Value)
	}
	return qb.String()
}

// FromSnapshot serializes a snapshot against its own action.
func FromSnapshot(s form.Snapshot, command string) string {
	return Serialize(s.Action, command, s.Fields)
}

// FromForm serializes the current state of f.
func FromForm(f *form.Form, command string) string {
	return FromSnapshot(f.Snapshot(), command)
}

// Password returns the value of the first sensitive field, which travels in
// the request body instead of the URL. ok is false when the form has none.
func Password(s form.Snapshot) (value string, ok bool) {
	for _, f := range s.Fields {
		if f.Name == "password" {
			return f.Value, true
		}
	}
	for _, f := range s.Fields {
		if f.Sensitive() {
			return f.Value, true
		}
	}
	return "", false
}
