package ladder

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/PentesterFlow/ladderadmin/internal/errors"
	"github.com/PentesterFlow/ladderadmin/internal/form"
	"github.com/PentesterFlow/ladderadmin/internal/prompt"
)

func TestAccountForm_Responses(t *testing.T) {
	tests := []struct {
		command string
		reply   string
		alert   string
	}{
		{CmdAddAccount, `{"result":"success","account_id":3}`, "account id is 3."},
		{CmdUpdateAccount, `{"result":"success","account_id":3}`, "account with id 3 updated."},
		{CmdDelAccount, `{"result":"success","account_id":3}`, "account with id 3 deleted."},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			b := newBackend(t, map[string]string{"/" + tt.command: tt.reply})
			p := prompt.NewScripted(true)
			a, _ := newTestAdmin(t, b, p)
			mustSet(t, a, form.AccountForm, map[string]string{
				"account_id": "3",
				"username":   "root",
				"password":   "toor",
			})

			if err := a.AccountForm(context.Background(), tt.command); err != nil {
				t.Fatalf("AccountForm() error = %v", err)
			}

			req := b.last()
			if req.Method != http.MethodPost {
				t.Errorf("method = %s, want POST", req.Method)
			}
			if req.RawQuery != "account_id=3&username=root" {
				t.Errorf("query = %q", req.RawQuery)
			}
			if req.Body != "toor" {
				t.Errorf("body = %q", req.Body)
			}
			if p.LastAlert() != tt.alert {
				t.Errorf("alert = %q, want %q", p.LastAlert(), tt.alert)
			}
			f, _ := a.Form(form.AccountForm)
			if f.Value("username") != "" {
				t.Error("form should be reset")
			}
		})
	}
}

func TestAccountForm_List(t *testing.T) {
	b := newBackend(t, map[string]string{"/get_account": `{"result":"success","entries":[
		{"account_id":1,"username":"root"},
		{"account_id":2,"username":"<b>ops</b>"}]}`})
	p := prompt.NewScripted(true)
	a, out := newTestAdmin(t, b, p)
	mustSet(t, a, form.AccountForm, map[string]string{"username": "ignored", "password": "pw"})

	if err := a.AccountForm(context.Background(), CmdListAccount); err != nil {
		t.Fatal(err)
	}

	req := b.last()
	if req.Method != http.MethodGet || req.Path != "/get_account" || req.RawQuery != "" {
		t.Errorf("request = %+v", req)
	}
	for _, want := range []string{"Admin Accounts in the System", "root", "ops"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
	if strings.Contains(out.String(), "<b>") {
		t.Errorf("markup not stripped:\n%s", out.String())
	}
}

func TestAccountForm_ListEmpty(t *testing.T) {
	b := newBackend(t, map[string]string{"/get_account": `{"result":"success","entries":[]}`})
	p := prompt.NewScripted(true)
	a, _ := newTestAdmin(t, b, p)

	if err := a.AccountForm(context.Background(), CmdListAccount); err != nil {
		t.Fatal(err)
	}
	if p.LastAlert() != MsgNoAccounts {
		t.Errorf("alert = %q", p.LastAlert())
	}
}

func TestAccountForm_DeleteDeclined(t *testing.T) {
	b := newBackend(t, map[string]string{})
	p := prompt.NewScripted(false)
	a, _ := newTestAdmin(t, b, p)

	if err := a.AccountForm(context.Background(), CmdDelAccount); !errors.IsDeclined(err) {
		t.Fatalf("err = %v, want declined", err)
	}
	if c := p.Confirms(); len(c) != 1 || c[0] != MsgConfirmDelAccount {
		t.Errorf("confirms = %q", c)
	}
	if len(b.seen()) != 0 {
		t.Error("request sent without confirmation")
	}
}

func TestAccountForm_Failure(t *testing.T) {
	b := newBackend(t, map[string]string{"/add_account": `{"result":"fail","reason":"username taken"}`})
	p := prompt.NewScripted(true)
	a, _ := newTestAdmin(t, b, p)
	mustSet(t, a, form.AccountForm, map[string]string{"username": "root"})

	err := a.AccountForm(context.Background(), CmdAddAccount)
	if !errors.IsApplication(err) {
		t.Fatalf("err = %v", err)
	}
	if p.LastAlert() != "Error: username taken" {
		t.Errorf("alert = %q", p.LastAlert())
	}
}
