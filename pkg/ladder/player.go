package ladder

import (
	"context"
	"fmt"

	"github.com/PentesterFlow/ladderadmin/internal/envelope"
	"github.com/PentesterFlow/ladderadmin/internal/errors"
	"github.com/PentesterFlow/ladderadmin/internal/form"
	"github.com/PentesterFlow/ladderadmin/internal/query"
	"github.com/PentesterFlow/ladderadmin/internal/render"
)

// PlayerForm submits the player form with command. The password field, if
// filled, travels as the request body.
func (a *Admin) PlayerForm(ctx context.Context, command string) error {
	f, err := a.Form(form.PlayerForm)
	if err != nil {
		return err
	}
	log := a.log.WithForm(form.PlayerForm).WithCommand(command)

	switch command {
	case CmdAddPlayer:
		if f.Value("player_id") != "" {
			return a.fail(ctx, errors.NewPreconditionError(command, MsgLeaveIDBlank))
		}
		if a.config.DuplicateCheck {
			if err := a.checkExistingPlayer(ctx, f); err != nil {
				return err
			}
		}
	case CmdDelPlayer:
		if err := a.confirm(ctx, command, MsgConfirmDelPlayer); err != nil {
			return err
		}
	}

	snap := f.Snapshot()
	q := query.FromSnapshot(snap, wireCommand(command))
	password, _ := query.Password(snap)

	log.Debugf("Submitting %s", q)
	env, err := a.client.Post(ctx, command, q, password)
	if err != nil {
		return a.fail(ctx, err)
	}
	return a.playerResponse(ctx, f, command, q, env)
}

// LoggedInPlayer loads the player bound to the current session into the
// player form.
func (a *Admin) LoggedInPlayer(ctx context.Context) error {
	f, err := a.Form(form.PlayerForm)
	if err != nil {
		return err
	}

	q := query.LoggedInPlayer(f.Snapshot().Action)
	env, err := a.client.Get(ctx, CmdGetPlayer, q)
	if err != nil {
		return a.fail(ctx, err)
	}
	return a.playerResponse(ctx, f, CmdGetPlayer, q, env)
}

// checkExistingPlayer looks for players with the same first and last name
// and asks before adding another one.
func (a *Admin) checkExistingPlayer(ctx context.Context, f *form.Form) error {
	snap := f.Snapshot()
	q := query.PlayersByName(snap.Action, snap.Value("first_name"), snap.Value("last_name"))

	env, err := a.client.Get(ctx, CmdGetPlayer, q)
	if err != nil {
		return a.fail(ctx, err)
	}
	if !env.Success() {
		if err := a.alert(ctx, "oops:"+env.Reason()); err != nil {
			return err
		}
		return env.Err(CmdGetPlayer, q)
	}

	n := env.Count()
	if n == 0 {
		return nil
	}
	noun := "players"
	if n == 1 {
		noun = "player"
	}
	return a.confirm(ctx, CmdAddPlayer, fmt.Sprintf("Found %d %s with the same name! Really add?", n, noun))
}

func (a *Admin) playerResponse(ctx context.Context, f *form.Form, command, q string, env *envelope.Envelope) error {
	if !env.Success() {
		return a.fail(ctx, env.Err(command, q))
	}

	id := env.Str("player_id")
	switch command {
	case CmdAddPlayer:
		f.Reset()
		return a.alert(ctx, "player id is "+id+".")
	case CmdUpdatePlayer:
		f.Reset()
		return a.alert(ctx, "player with id "+id+" updated.")
	case CmdUpdatePlayerRestricted:
		return a.alert(ctx, "player with id "+id+" updated.")
	case CmdGetPlayer:
		f.Reset()
		var players []Player
		if err := env.DecodeEntries(&players); err != nil {
			return a.fail(ctx, errors.NewParseError(q, command, err))
		}
		switch len(players) {
		case 0:
			return a.alert(ctx, MsgNoPlayers)
		case 1:
			f.Populate(env.Entries()[0])
			return a.renderer.Form(render.StateOf(f.Snapshot()))
		default:
			return a.renderer.Players(players)
		}
	case CmdDelPlayer:
		f.Reset()
		return a.alert(ctx, "player with id "+id+" deleted.")
	default:
		f.Reset()
		return a.alert(ctx, MsgUnknownCommand)
	}
}
