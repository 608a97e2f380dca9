package ladder

import (
	"context"

	"github.com/PentesterFlow/ladderadmin/internal/form"
	"github.com/PentesterFlow/ladderadmin/internal/query"
)

// SeasonForm archives the ladder and starts a new season after the user
// confirms.
func (a *Admin) SeasonForm(ctx context.Context, command string) error {
	if err := a.confirm(ctx, command, MsgConfirmSeason); err != nil {
		return err
	}

	f, err := a.Form(form.SeasonForm)
	if err != nil {
		return err
	}

	q := query.SeasonQuery(f.Snapshot(), command)
	env, err := a.client.Get(ctx, command, q)
	if err != nil {
		return a.fail(ctx, err)
	}
	if !env.Success() {
		return a.fail(ctx, env.Err(command, q))
	}

	f.Reset()
	return a.alert(ctx, "New season created, ID="+env.Str("season_id"))
}
