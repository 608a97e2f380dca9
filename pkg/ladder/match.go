package ladder

import (
	"context"
	"encoding/json"

	"github.com/PentesterFlow/ladderadmin/internal/errors"
	"github.com/PentesterFlow/ladderadmin/internal/form"
	"github.com/PentesterFlow/ladderadmin/internal/query"
	"github.com/PentesterFlow/ladderadmin/internal/render"
)

// pendingEndpoint is the fixed root the pending match queries go to,
// whatever the match form's action is.
const pendingEndpoint = "/"

// MatchForm submits the match entry form. A non-empty suffix is appended to
// the query verbatim. In admin mode a successful submission resets the form
// and extends the recent matches list; otherwise it redirects to the main
// menu.
func (a *Admin) MatchForm(ctx context.Context, command, suffix string) error {
	f, err := a.Form(form.MatchForm)
	if err != nil {
		return err
	}

	q, err := query.MatchQuery(f.Snapshot(), command, suffix)
	if err != nil {
		return a.fail(ctx, err)
	}

	env, err := a.client.Get(ctx, command, q)
	if err != nil {
		return a.fail(ctx, err)
	}
	if !env.Success() {
		return a.fail(ctx, env.Err(command, q))
	}

	if !a.config.Admin {
		a.mu.Lock()
		a.redirect = MainMenu
		a.mu.Unlock()
		return a.renderer.Status("redirect: " + MainMenu)
	}

	f.Reset()

	var m MatchResult
	if err := json.Unmarshal(env.Bytes(), &m); err != nil {
		return a.fail(ctx, errors.NewParseError(q, command, err))
	}

	a.mu.Lock()
	a.recent = append(a.recent, m)
	recent := make([]MatchResult, len(a.recent))
	copy(recent, a.recent)
	a.mu.Unlock()

	return a.renderer.RecentMatches(recent)
}

// PendingMatches lists the matches awaiting validation.
func (a *Admin) PendingMatches(ctx context.Context) error {
	q := query.PendingMatches(pendingEndpoint)
	env, err := a.client.Get(ctx, CmdGetMatch, q)
	if err != nil {
		return a.fail(ctx, err)
	}
	if !env.Success() {
		return a.fail(ctx, env.Err(CmdGetMatch, q))
	}

	var matches []PendingMatch
	if err := env.DecodeEntries(&matches); err != nil {
		return a.fail(ctx, errors.NewParseError(q, CmdGetMatch, err))
	}
	return a.renderer.PendingMatches(matches)
}

// ValidateMatch approves or disputes a pending match, then refreshes the
// pending list. The list is refreshed even when the backend refuses.
func (a *Admin) ValidateMatch(ctx context.Context, action, matchID string) error {
	if action != ActionApprove && action != ActionDispute {
		return a.fail(ctx, errors.NewPreconditionError(CmdValidateMatch, "unknown action "+action))
	}
	if err := a.renderer.Status(render.LoadingText); err != nil {
		return err
	}

	q := query.ValidateMatch(pendingEndpoint, action, matchID)
	env, err := a.client.Get(ctx, CmdValidateMatch, q)
	if err != nil {
		return a.fail(ctx, err)
	}

	var result error
	if !env.Success() {
		result = a.fail(ctx, env.Err(CmdValidateMatch, q))
	}
	if err := a.PendingMatches(ctx); err != nil && result == nil {
		result = err
	}
	return result
}
