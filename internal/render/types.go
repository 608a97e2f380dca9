package render

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ID is a record identifier. The backend sends IDs as numbers or strings.
type ID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if string(b) == "null" {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Int returns the numeric value, or 0.
func (id ID) Int() int {
	n, _ := strconv.Atoi(string(id))
	return n
}

// Player is a ladder player record.
type Player struct {
	PlayerID      ID      `json:"player_id"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Username      string  `json:"username,omitempty"`
	Email         string  `json:"email,omitempty"`
	Phones        string  `json:"phones,omitempty"`
	Company       string  `json:"company,omitempty"`
	Location      string  `json:"location,omitempty"`
	WLocation     string  `json:"wlocation,omitempty"`
	Ladder        string  `json:"ladder,omitempty"`
	Active        bool    `json:"active"`
	InitialPoints float64 `json:"initial_points,omitempty"`
	Note          string  `json:"note,omitempty"`
}

// Account is an admin account record.
type Account struct {
	AccountID ID     `json:"account_id"`
	Username  string `json:"username"`
}

// PendingMatch is a reported match awaiting validation.
type PendingMatch struct {
	MatchID        ID     `json:"match_id"`
	Date           string `json:"date"`
	WinnerLastName string `json:"winner_last_name"`
	LoserLastName  string `json:"loser_last_name"`
	Score          string `json:"score"`
	Retired        bool   `json:"retired"`
	Forfeited      bool   `json:"forfeited"`
}

// MatchResult is a match accepted in this session.
type MatchResult struct {
	MatchID        ID     `json:"match_id"`
	Date           string `json:"date"`
	WinnerLastName string `json:"winner_last_name"`
	LoserLastName  string `json:"loser_last_name"`
}

// FormState is a display copy of a form; sensitive fields are left out.
type FormState struct {
	ID     string           `json:"id"`
	Fields []FormStateField `json:"fields"`
}

// FormStateField is one field of a FormState.
type FormStateField struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Checked *bool  `json:"checked,omitempty"`
}
