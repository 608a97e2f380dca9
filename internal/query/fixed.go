package query

// LoggedInPlayer asks for the player bound to the current session.
func LoggedInPlayer(endpoint string) string {
	return NewBuilder(endpoint, "get_player").AddRaw("player_id", "-1").String()
}

// PlayersByName looks up players sharing a first and last name.
func PlayersByName(endpoint, firstName, lastName string) string {
	return NewBuilder(endpoint, "get_player").
		Add("first_name", firstName).
		Add("last_name", lastName).
		String()
}

// ActivePlayerByLastName looks up active players by last name.
func ActivePlayerByLastName(endpoint, lastName string) string {
	return NewBuilder(endpoint, "get_player").
		AddRaw("active", "yes").
		Add("last_name", lastName).
		String()
}

// ActivePlayerByID looks up an active player by ID.
func ActivePlayerByID(endpoint, playerID string) string {
	return NewBuilder(endpoint, "get_player").
		AddRaw("active", "yes").
		Add("player_id", playerID).
		String()
}

// PendingMatches lists matches awaiting validation, oldest first.
func PendingMatches(endpoint string) string {
	return NewBuilder(endpoint, "get_match").
		AddRaw("pending", "true").
		AddRaw("disputed", "false").
		AddRaw("sort_by_date", "asc").
		String()
}

// ValidateMatch approves or disputes a pending match.
func ValidateMatch(endpoint, action, matchID string) string {
	return NewBuilder(endpoint, "validate_match").
		Add("action", action).
		Add("match_id", matchID).
		String()
}

// Accounts lists admin accounts.
func Accounts(endpoint string) string {
	return NewBuilder(endpoint, "get_account").String()
}
