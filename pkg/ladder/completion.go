package ladder

import (
	"github.com/PentesterFlow/ladderadmin/internal/form"
	"github.com/PentesterFlow/ladderadmin/internal/query"
)

// Target names the box a lookup fills in.
type Target string

const (
	// TargetID resolves the ID box from the last name box.
	TargetID Target = "id"
	// TargetLastName resolves the last name box from the ID box.
	TargetLastName Target = "last_name"
)

// Lookup outcomes.
const (
	OutcomeResolved = "resolved"
	OutcomeCleared  = "cleared"
	OutcomeFailed   = "failed"
	OutcomeStale    = "stale"
)

// BoxCompletion pairs a last name box with an ID box on the match form.
// Typing in one box fills in the other once typing pauses.
type BoxCompletion struct {
	LastNameBox string
	IDBox       string
	Slot        int
	Target      Target
}

// Source is the box the user types into.
func (c BoxCompletion) Source() string {
	if c.Target == TargetID {
		return c.LastNameBox
	}
	return c.IDBox
}

// Dest is the box the lookup writes.
func (c BoxCompletion) Dest() string {
	if c.Target == TargetID {
		return c.IDBox
	}
	return c.LastNameBox
}

// LookupResult describes a settled lookup.
type LookupResult struct {
	Completion BoxCompletion
	Generation uint64
	Query      string
	Value      string
	Outcome    string
	Err        error
}

// MatchFormCompletions returns the four lookups of the match form, one
// debounce slot each.
func MatchFormCompletions() []BoxCompletion {
	return []BoxCompletion{
		{LastNameBox: "player_1_last_name", IDBox: "player_1_id", Slot: 0, Target: TargetID},
		{LastNameBox: "player_1_last_name", IDBox: "player_1_id", Slot: 1, Target: TargetLastName},
		{LastNameBox: "player_2_last_name", IDBox: "player_2_id", Slot: 2, Target: TargetID},
		{LastNameBox: "player_2_last_name", IDBox: "player_2_id", Slot: 3, Target: TargetLastName},
	}
}

// CompletionFor returns the completion whose source box is id.
func CompletionFor(id string) (BoxCompletion, bool) {
	for _, c := range MatchFormCompletions() {
		if c.Source() == id {
			return c, true
		}
	}
	return BoxCompletion{}, false
}

// Keystroke records that the source box of c now holds value and (re)arms
// its lookup. It returns the generation of the armed lookup.
func (a *Admin) Keystroke(c BoxCompletion, value string) (uint64, error) {
	f, err := a.Form(form.MatchForm)
	if err != nil {
		return 0, err
	}
	if err := f.SetValue(c.Source(), value); err != nil {
		return 0, err
	}
	return a.scheduler.Arm(c.Slot, func(gen uint64) {
		a.complete(f, c, gen)
	})
}

// complete runs the lookup for c and writes the companion box. A response
// that arrives after a newer keystroke in the same slot is dropped.
func (a *Admin) complete(f *form.Form, c BoxCompletion, gen uint64) {
	snap := f.Snapshot()

	var q string
	if c.Target == TargetID {
		q = query.ActivePlayerByLastName(snap.Action, snap.Value(c.LastNameBox))
	} else {
		q = query.ActivePlayerByID(snap.Action, snap.Value(c.IDBox))
	}

	res := LookupResult{Completion: c, Generation: gen, Query: q}
	env, err := a.client.Get(a.ctx, CmdGetPlayer, q)

	if !a.scheduler.Current(c.Slot, gen) {
		a.metrics.RecordLookup(true)
		res.Outcome = OutcomeStale
		a.settle(res)
		return
	}
	a.metrics.RecordLookup(false)

	if err != nil {
		a.log.WithSlot(c.Slot).WithError(err).Warn("Player lookup failed")
		res.Outcome = OutcomeFailed
		res.Err = err
		a.settle(res)
		return
	}

	res.Outcome = OutcomeCleared
	if env.Success() && env.Count() == 1 {
		field := "last_name"
		if c.Target == TargetID {
			field = "player_id"
		}
		res.Value = env.Str("entries.0." + field)
		res.Outcome = OutcomeResolved
	}

	if err := f.SetValue(c.Dest(), res.Value); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = err
	}
	a.settle(res)
}

func (a *Admin) settle(res LookupResult) {
	a.log.LookupEvent(res.Completion.Slot, res.Query, res.Outcome)
	if a.onLookup != nil {
		a.onLookup(res)
	}
}
