package ladder

import (
	"github.com/PentesterFlow/ladderadmin/internal/render"
)

// Records decoded from response entries.
type (
	Player       = render.Player
	Account      = render.Account
	PendingMatch = render.PendingMatch
	MatchResult  = render.MatchResult
)

// Player form commands.
const (
	CmdAddPlayer              = "add_player"
	CmdUpdatePlayer           = "update_player"
	CmdUpdatePlayerRestricted = "update_player_restricted"
	CmdGetPlayer              = "get_player"
	CmdDelPlayer              = "del_player"
)

// Account form commands.
const (
	CmdAddAccount    = "add_account"
	CmdUpdateAccount = "update_account"
	CmdListAccount   = "list_account"
	CmdGetAccount    = "get_account"
	CmdDelAccount    = "del_account"
)

// Match and season commands.
const (
	CmdAddMatch      = "add_match"
	CmdGetMatch      = "get_match"
	CmdValidateMatch = "validate_match"
	CmdNewSeason     = "new_season"
)

// Pending match actions.
const (
	ActionApprove = "approve"
	ActionDispute = "dispute"
)

// MainMenu is where a non-admin match submission sends the user.
const MainMenu = "main_menu"

// Alert and confirmation texts.
const (
	MsgLeaveIDBlank      = "ID for a new player will be automatically assigned, please leave it blank."
	MsgConfirmDelPlayer  = "Are you sure you want to delete the player?\nUsually, just inactivating the player is good enough."
	MsgConfirmDelAccount = "You are about to delete an admin account.\nPlease confirm that you know what you are doing."
	MsgConfirmSeason     = "This will archive the ladder and reset the scores. Proceed?"
	MsgNoPlayers         = "no players found"
	MsgNoAccounts        = "no accounts found"
	MsgUnknownCommand    = "should not happen, bug?"
)

// PlayerCommands lists the commands accepted by PlayerForm.
func PlayerCommands() []string {
	return []string{CmdAddPlayer, CmdUpdatePlayer, CmdUpdatePlayerRestricted, CmdGetPlayer, CmdDelPlayer}
}

// AccountCommands lists the commands accepted by AccountForm.
func AccountCommands() []string {
	return []string{CmdAddAccount, CmdUpdateAccount, CmdListAccount, CmdDelAccount}
}

// wireCommand is the command name sent to the backend.
func wireCommand(command string) string {
	if command == CmdUpdatePlayerRestricted {
		return CmdUpdatePlayer
	}
	return command
}
