package form

import (
	"embed"
	"fmt"
	"sort"
)

//go:embed pages/*.html
var pages embed.FS

// Built-in form IDs.
const (
	PlayerForm  = "player_form"
	AccountForm = "account_form"
	MatchForm   = "match_form"
	SeasonForm  = "season_form"
)

var builtinPages = map[string]string{
	PlayerForm:  "pages/player.html",
	AccountForm: "pages/account.html",
	MatchForm:   "pages/match.html",
	SeasonForm:  "pages/season.html",
}

// Builtin returns a fresh copy of one of the embedded admin forms.
func Builtin(id string) (*Form, error) {
	page, ok := builtinPages[id]
	if !ok {
		return nil, fmt.Errorf("no built-in form %q", id)
	}
	data, err := pages.ReadFile(page)
	if err != nil {
		return nil, err
	}
	return Find(string(data), id)
}

// BuiltinIDs lists the embedded form IDs.
func BuiltinIDs() []string {
	ids := make([]string, 0, len(builtinPages))
	for id := range builtinPages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
