package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"
)

// TextRenderer writes aligned plain-text tables.
type TextRenderer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewText creates a text renderer.
func NewText(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

func (t *TextRenderer) table(heading string, rows func(tw *tabwriter.Writer)) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if heading != "" {
		if _, err := fmt.Fprintln(t.w, heading); err != nil {
			return err
		}
	}
	tw := tabwriter.NewWriter(t.w, 0, 4, 2, ' ', 0)
	rows(tw)
	return tw.Flush()
}

// Players lists players by ID and name.
func (t *TextRenderer) Players(players []Player) error {
	return t.table(HeadingPlayers, func(tw *tabwriter.Writer) {
		for _, p := range players {
			fmt.Fprintf(tw, "%s\t%s %s\n", Clean(string(p.PlayerID)), Clean(p.FirstName), Clean(p.LastName))
		}
	})
}

// Accounts lists admin accounts.
func (t *TextRenderer) Accounts(accounts []Account) error {
	return t.table(HeadingAccounts, func(tw *tabwriter.Writer) {
		for _, a := range accounts {
			fmt.Fprintf(tw, "%s\t%s\n", Clean(string(a.AccountID)), Clean(a.Username))
		}
	})
}

// PendingMatches lists matches awaiting validation, or "None".
func (t *TextRenderer) PendingMatches(matches []PendingMatch) error {
	if len(matches) == 0 {
		return t.table(HeadingPending, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, NoneText)
		})
	}
	return t.table(HeadingPending, func(tw *tabwriter.Writer) {
		for _, m := range matches {
			fmt.Fprintf(tw, "Match %s:\t%s\t%s def. %s:%s", Clean(string(m.MatchID)), Clean(m.Date),
				Clean(m.WinnerLastName), Clean(m.LoserLastName), Clean(m.Score))
			if tag := outcomeTag(m); tag != "" {
				fmt.Fprintf(tw, "\t%s", tag)
			}
			fmt.Fprintln(tw)
		}
	})
}

func outcomeTag(m PendingMatch) string {
	switch {
	case m.Retired:
		return "(retired)"
	case m.Forfeited:
		return "(forfeited)"
	default:
		return ""
	}
}

// RecentMatches lists matches accepted in this session.
func (t *TextRenderer) RecentMatches(matches []MatchResult) error {
	return t.table(HeadingRecent, func(tw *tabwriter.Writer) {
		for _, m := range matches {
			fmt.Fprintf(tw, "Match %s:\t%s\t%s def. %s\n", Clean(string(m.MatchID)), Clean(m.Date),
				Clean(m.WinnerLastName), Clean(m.LoserLastName))
		}
	})
}

// Form prints name/value pairs.
func (t *TextRenderer) Form(state FormState) error {
	return t.table(state.ID, func(tw *tabwriter.Writer) {
		for _, f := range state.Fields {
			value := f.Value
			if f.Checked != nil {
				value = fmt.Sprintf("[%s]", check(*f.Checked))
			}
			fmt.Fprintf(tw, "%s\t%s\n", f.Name, value)
		}
	})
}

func check(b bool) string {
	if b {
		return "x"
	}
	return " "
}

// Status prints a one-line status message.
func (t *TextRenderer) Status(msg string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.w, strings.TrimSpace(msg))
	return err
}
