package ladder

import (
	"context"

	"github.com/PentesterFlow/ladderadmin/internal/envelope"
	"github.com/PentesterFlow/ladderadmin/internal/errors"
	"github.com/PentesterFlow/ladderadmin/internal/form"
	"github.com/PentesterFlow/ladderadmin/internal/query"
)

// AccountForm submits the admin account form with command. list_account is
// answered by a get_account lookup instead of the form contents.
func (a *Admin) AccountForm(ctx context.Context, command string) error {
	f, err := a.Form(form.AccountForm)
	if err != nil {
		return err
	}

	if command == CmdDelAccount {
		if err := a.confirm(ctx, command, MsgConfirmDelAccount); err != nil {
			return err
		}
	}

	snap := f.Snapshot()
	var (
		q   string
		env *envelope.Envelope
	)
	if command == CmdListAccount {
		q = query.Accounts(snap.Action)
		env, err = a.client.Get(ctx, command, q)
	} else {
		q = query.FromSnapshot(snap, command)
		password, _ := query.Password(snap)
		env, err = a.client.Post(ctx, command, q, password)
	}
	if err != nil {
		return a.fail(ctx, err)
	}
	return a.accountResponse(ctx, f, command, q, env)
}

func (a *Admin) accountResponse(ctx context.Context, f *form.Form, command, q string, env *envelope.Envelope) error {
	if !env.Success() {
		return a.fail(ctx, env.Err(command, q))
	}

	id := env.Str("account_id")
	switch command {
	case CmdAddAccount:
		f.Reset()
		return a.alert(ctx, "account id is "+id+".")
	case CmdUpdateAccount:
		f.Reset()
		return a.alert(ctx, "account with id "+id+" updated.")
	case CmdListAccount:
		f.Reset()
		var accounts []Account
		if err := env.DecodeEntries(&accounts); err != nil {
			return a.fail(ctx, errors.NewParseError(q, command, err))
		}
		if len(accounts) == 0 {
			return a.alert(ctx, MsgNoAccounts)
		}
		return a.renderer.Accounts(accounts)
	case CmdDelAccount:
		f.Reset()
		return a.alert(ctx, "account with id "+id+" deleted.")
	default:
		return a.alert(ctx, MsgUnknownCommand)
	}
}
