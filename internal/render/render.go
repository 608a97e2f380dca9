// Package render writes lists and form state for the terminal or as JSON.
package render

import (
	"html"
	"io"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/PentesterFlow/ladderadmin/internal/form"
)

// List headings.
const (
	HeadingPlayers  = "Multiple Matches"
	HeadingAccounts = "Admin Accounts in the System"
	HeadingPending  = "Pending Matches"
	HeadingRecent   = "Recent Matches"
	NoneText        = "None"
	LoadingText     = "Loading ..."
)

// Renderer displays backend records.
type Renderer interface {
	Players(players []Player) error
	Accounts(accounts []Account) error
	PendingMatches(matches []PendingMatch) error
	RecentMatches(matches []MatchResult) error
	Form(state FormState) error
	Status(msg string) error
}

// Config holds renderer configuration.
type Config struct {
	Format string // "text" or "json"
	Pretty bool
}

// New creates a renderer for the configured format.
func New(w io.Writer, config Config) Renderer {
	switch config.Format {
	case "json":
		return NewJSON(w, config.Pretty)
	default:
		return NewText(w)
	}
}

var (
	stripPolicy     *bluemonday.Policy
	stripPolicyOnce sync.Once
)

// Clean removes markup from a backend-supplied string.
func Clean(s string) string {
	stripPolicyOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}

// StateOf converts a snapshot for display.
func StateOf(s form.Snapshot) FormState {
	state := FormState{ID: s.ID}
	for _, f := range s.Fields {
		if f.Name == "" || f.Sensitive() {
			continue
		}
		field := FormStateField{Name: f.Name, Value: f.Value}
		if f.IsCheckbox() {
			checked := f.Checked
			field.Checked = &checked
			field.Value = ""
		}
		state.Fields = append(state.Fields, field)
	}
	return state
}
