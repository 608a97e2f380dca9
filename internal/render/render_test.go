package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/PentesterFlow/ladderadmin/internal/form"
)

// =============================================================================
// Types Tests
// =============================================================================

func TestID_UnmarshalJSON(t *testing.T) {
	var got struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":42,"b":"7","c":null}`), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.A != "42" || got.B != "7" || got.C != "" {
		t.Errorf("IDs = %+v", got)
	}
	if got.A.Int() != 42 {
		t.Errorf("Int() = %d", got.A.Int())
	}
}

func TestClean(t *testing.T) {
	tests := map[string]string{
		"Smith":                          "Smith",
		"<b>Smith</b>":                   "Smith",
		"O'Brien":                        "O'Brien",
		`<script>alert(1)</script>Jones`: "Jones",
		"  Lee  ":                        "Lee",
	}
	for in, want := range tests {
		if got := Clean(in); got != want {
			t.Errorf("Clean(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStateOf_SkipsPassword(t *testing.T) {
	f := form.New("account_form", "/",
		form.Field{Name: "username", Value: "jim"},
		form.Field{Name: "password", Type: "password", Value: "secret"},
		form.Field{Name: "notify", Type: "checkbox", Checked: true},
	)

	state := StateOf(f.Snapshot())
	checked := true
	want := FormState{ID: "account_form", Fields: []FormStateField{
		{Name: "username", Value: "jim"},
		{Name: "notify", Checked: &checked},
	}}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

// =============================================================================
// Text Tests
// =============================================================================

func TestText_Players(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf)

	r.Players([]Player{
		{PlayerID: "1", FirstName: "Jim", LastName: "Smith"},
		{PlayerID: "12", FirstName: "<i>Ann</i>", LastName: "Smith"},
	})

	out := buf.String()
	if !strings.HasPrefix(out, HeadingPlayers+"\n") {
		t.Errorf("missing heading: %q", out)
	}
	if !strings.Contains(out, "Jim Smith") || !strings.Contains(out, "Ann Smith") {
		t.Errorf("missing players: %q", out)
	}
	if strings.Contains(out, "<i>") {
		t.Errorf("markup not stripped: %q", out)
	}
}

func TestText_PendingMatches(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		NewText(&buf).PendingMatches(nil)
		if buf.String() != HeadingPending+"\n"+NoneText+"\n" {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("tags", func(t *testing.T) {
		var buf bytes.Buffer
		NewText(&buf).PendingMatches([]PendingMatch{
			{MatchID: "1", Date: "2016-05-17", WinnerLastName: "Smith", LoserLastName: "Jones", Score: "6-3 6-4"},
			{MatchID: "2", Date: "2016-05-18", WinnerLastName: "Lee", LoserLastName: "Kim", Score: "6-2 2-0", Retired: true},
			{MatchID: "3", Date: "2016-05-19", WinnerLastName: "Ito", LoserLastName: "Ng", Score: "6-0 6-0", Forfeited: true},
		})
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 4 {
			t.Fatalf("lines = %q", lines)
		}
		if !strings.Contains(lines[1], "Smith def. Jones:6-3 6-4") || strings.Contains(lines[1], "(") {
			t.Errorf("line 1 = %q", lines[1])
		}
		if !strings.HasSuffix(lines[2], "(retired)") {
			t.Errorf("line 2 = %q", lines[2])
		}
		if !strings.HasSuffix(lines[3], "(forfeited)") {
			t.Errorf("line 3 = %q", lines[3])
		}
	})
}

func TestText_AccountsAndRecent(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf)

	r.Accounts([]Account{{AccountID: "3", Username: "admin"}})
	r.RecentMatches([]MatchResult{{MatchID: "9", Date: "2016-05-17", WinnerLastName: "Smith", LoserLastName: "Jones"}})

	out := buf.String()
	for _, want := range []string{HeadingAccounts, "admin", HeadingRecent, "Match 9:", "Smith def. Jones"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestText_Form(t *testing.T) {
	var buf bytes.Buffer
	checked := false
	NewText(&buf).Form(FormState{ID: "match_form", Fields: []FormStateField{
		{Name: "player_1_id", Value: "4"},
		{Name: "player_1_challenger", Checked: &checked},
	}})

	out := buf.String()
	if !strings.Contains(out, "player_1_id") || !strings.Contains(out, "[ ]") {
		t.Errorf("output = %q", out)
	}
}

// =============================================================================
// JSON Tests
// =============================================================================

func TestJSON_Players(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, Config{Format: "json"})

	if err := r.Players([]Player{{PlayerID: "5", FirstName: "<b>Jim</b>", LastName: "Smith", Active: true}}); err != nil {
		t.Fatalf("Players() error = %v", err)
	}

	var doc struct {
		Kind  string   `json:"kind"`
		Items []Player `json:"items"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	want := []Player{{PlayerID: "5", FirstName: "Jim", LastName: "Smith", Active: true}}
	if doc.Kind != "players" {
		t.Errorf("kind = %q", doc.Kind)
	}
	if diff := cmp.Diff(want, doc.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestJSON_PendingNone(t *testing.T) {
	var buf bytes.Buffer
	NewJSON(&buf, false).PendingMatches(nil)

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc["message"] != NoneText {
		t.Errorf("message = %v, want None", doc["message"])
	}
}

func TestNew_DefaultsToText(t *testing.T) {
	if _, ok := New(&bytes.Buffer{}, Config{}).(*TextRenderer); !ok {
		t.Error("New() should default to text")
	}
}
