package render

import (
	"encoding/json"
	"io"
	"sync"
)

// JSONRenderer writes one JSON document per call.
type JSONRenderer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

// NewJSON creates a JSON renderer.
func NewJSON(w io.Writer, pretty bool) *JSONRenderer {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &JSONRenderer{encoder: enc}
}

type document struct {
	Kind    string      `json:"kind"`
	Heading string      `json:"heading,omitempty"`
	Items   interface{} `json:"items,omitempty"`
	Message string      `json:"message,omitempty"`
}

func (j *JSONRenderer) write(doc document) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.encoder.Encode(doc)
}

// Players writes the player list.
func (j *JSONRenderer) Players(players []Player) error {
	clean := make([]Player, len(players))
	for i, p := range players {
		p.FirstName = Clean(p.FirstName)
		p.LastName = Clean(p.LastName)
		p.Note = Clean(p.Note)
		clean[i] = p
	}
	return j.write(document{Kind: "players", Heading: HeadingPlayers, Items: clean})
}

// Accounts writes the account list.
func (j *JSONRenderer) Accounts(accounts []Account) error {
	clean := make([]Account, len(accounts))
	for i, a := range accounts {
		a.Username = Clean(a.Username)
		clean[i] = a
	}
	return j.write(document{Kind: "accounts", Heading: HeadingAccounts, Items: clean})
}

// PendingMatches writes the pending list; an empty list carries "None".
func (j *JSONRenderer) PendingMatches(matches []PendingMatch) error {
	if len(matches) == 0 {
		return j.write(document{Kind: "pending_matches", Heading: HeadingPending, Message: NoneText})
	}
	return j.write(document{Kind: "pending_matches", Heading: HeadingPending, Items: matches})
}

// RecentMatches writes the matches accepted in this session.
func (j *JSONRenderer) RecentMatches(matches []MatchResult) error {
	return j.write(document{Kind: "recent_matches", Heading: HeadingRecent, Items: matches})
}

// Form writes form state.
func (j *JSONRenderer) Form(state FormState) error {
	return j.write(document{Kind: "form", Heading: state.ID, Items: state.Fields})
}

// Status writes a status message.
func (j *JSONRenderer) Status(msg string) error {
	return j.write(document{Kind: "status", Message: msg})
}
