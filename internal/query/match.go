package query

import (
	"fmt"

	"github.com/PentesterFlow/ladderadmin/internal/errors"
	"github.com/PentesterFlow/ladderadmin/internal/form"
)

// Match form roles. Element IDs on the match form are derived from these.
const (
	Player1 = "player_1"
	Player2 = "player_2"
)

// MaxSets is the number of set score rows on the match form.
const MaxSets = 3

// User-facing messages for an invalid challenger selection.
const (
	MsgTwoChallengers = "Huh? Two challengers?"
	MsgNoChallenger   = "No challengers ... please!"
)

// Roles resolves which player position challenged. Exactly one of the
// player_N_challenger indicators must be checked.
func Roles(s form.Snapshot) (challenger, opponent string, err error) {
	first := s.Checked(Player1 + "_challenger")
	second := s.Checked(Player2 + "_challenger")

	switch {
	case first && second:
		return "", "", errors.NewPreconditionError("match", MsgTwoChallengers)
	case first:
		return Player1, Player2, nil
	case second:
		return Player2, Player1, nil
	default:
		return "", "", errors.NewPreconditionError("match", MsgNoChallenger)
	}
}

// DateFrom assembles the date held in the sub-fields prefix_1 (month),
// prefix_2 (day) and prefix_3 (year) as year-month-day.
func DateFrom(s form.Snapshot, prefix string) string {
	return s.Value(prefix+"_3") + "-" + s.Value(prefix+"_1") + "-" + s.Value(prefix+"_2")
}

// MatchQuery serializes the composite match-entry form. It fails with a
// precondition error, and builds nothing, when the challenger selection is
// invalid. A non-empty suffix is appended verbatim as the last pair.
func MatchQuery(s form.Snapshot, command, suffix string) (string, error) {
	challenger, opponent, err := Roles(s)
	if err != nil {
		return "", err
	}

	qb := NewBuilder(s.Action, command)
	qb.Add("challenger", s.Value(challenger+"_id"))
	qb.Add("opponent", s.Value(opponent+"_id"))

	for set := 1; set <= MaxSets; set++ {
		cgames := s.Value(fmt.Sprintf("set_%d_%s_score", set, challenger))
		ogames := s.Value(fmt.Sprintf("set_%d_%s_score", set, opponent))
		if cgames != "" && ogames != "" {
			qb.Add("cgames", cgames)
			qb.Add("ogames", ogames)
		}
	}

	if s.Checked("match_outcome_2") {
		qb.AddBool("retired", true)
	}
	if s.Checked("match_outcome_3") {
		qb.AddBool("forfeited", true)
	}

	qb.Add("date", DateFrom(s, "match_date"))
	qb.Append(suffix)

	return qb.String(), nil
}

// SeasonQuery serializes the season-creation form.
func SeasonQuery(s form.Snapshot, command string) string {
	qb := NewBuilder(s.Action, command)
	qb.Add("title", s.Value("title"))
	qb.Add("start_date", DateFrom(s, "start_date"))
	qb.Add("end_date", DateFrom(s, "end_date"))
	qb.Add("tournament_date", DateFrom(s, "tournament_date"))
	return qb.String()
}
