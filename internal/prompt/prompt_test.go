package prompt

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScripted_Confirm(t *testing.T) {
	p := NewScripted(true, false, true)
	ctx := context.Background()

	var got []bool
	for i := 0; i < 4; i++ {
		ok, err := p.Confirm(ctx, "Really?")
		if err != nil {
			t.Fatalf("Confirm() error = %v", err)
		}
		got = append(got, ok)
	}

	if diff := cmp.Diff([]bool{false, true, true, true}, got); diff != "" {
		t.Errorf("answers mismatch (-want +got):\n%s", diff)
	}
	if len(p.Confirms()) != 4 {
		t.Errorf("Confirms() = %d, want 4", len(p.Confirms()))
	}
}

func TestScripted_ConfirmCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewScripted(true).Confirm(ctx, "Really?"); err == nil {
		t.Error("Confirm() should fail on a cancelled context")
	}
}

func TestScripted_Alerts(t *testing.T) {
	var echo bytes.Buffer
	p := NewScripted(false).WithEcho(&echo)
	ctx := context.Background()

	if p.LastAlert() != "" {
		t.Error("LastAlert() should be empty initially")
	}
	p.Alert(ctx, "no players found")
	p.Alert(ctx, "Error: duplicate")

	if diff := cmp.Diff([]string{"no players found", "Error: duplicate"}, p.Alerts()); diff != "" {
		t.Errorf("alerts mismatch (-want +got):\n%s", diff)
	}
	if p.LastAlert() != "Error: duplicate" {
		t.Errorf("LastAlert() = %q", p.LastAlert())
	}
	if echo.String() != "no players found\nError: duplicate\n" {
		t.Errorf("echo = %q", echo.String())
	}
}

func TestScripted_PasswordAndInput(t *testing.T) {
	p := NewScripted(false).WithPassword("pw").WithInputs("jim")
	ctx := context.Background()

	if pw, _ := p.Password(ctx, "Password:"); pw != "pw" {
		t.Errorf("Password() = %q", pw)
	}
	if in, _ := p.Input(ctx, "Name:", "def"); in != "jim" {
		t.Errorf("Input() = %q", in)
	}
	if in, _ := p.Input(ctx, "Name:", "def"); in != "def" {
		t.Errorf("Input() fallback = %q", in)
	}
}

func TestTerminal_Alert(t *testing.T) {
	var out bytes.Buffer
	p := NewTerminal(&out)

	if err := p.Alert(context.Background(), "New season created, ID=4"); err != nil {
		t.Fatalf("Alert() error = %v", err)
	}
	if out.String() != "New season created, ID=4\n" {
		t.Errorf("output = %q", out.String())
	}
}

var _ Prompter = (*Terminal)(nil)
var _ Prompter = (*Scripted)(nil)
