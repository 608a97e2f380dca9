// Package prompt shows alerts and asks the user for confirmation.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("prompt aborted")

// Prompter is the user-facing side of every form action.
type Prompter interface {
	Alert(ctx context.Context, msg string) error
	Confirm(ctx context.Context, msg string) (bool, error)
	Password(ctx context.Context, msg string) (string, error)
	Input(ctx context.Context, msg, def string) (string, error)
}

// Terminal prompts on the controlling terminal.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTerminal creates a terminal prompter. Alerts go to out (stdout when nil).
func NewTerminal(out io.Writer) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	return &Terminal{out: out}
}

// Alert prints msg on its own line.
func (t *Terminal) Alert(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := fmt.Fprintln(t.out, msg)
	return err
}

// Confirm asks a yes/no question defaulting to no.
func (t *Terminal) Confirm(ctx context.Context, msg string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: msg, Default: false}, &out); err != nil {
		return false, translate(err)
	}
	return out, nil
}

// Password reads a secret without echo.
func (t *Terminal) Password(ctx context.Context, msg string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var out string
	if err := survey.AskOne(&survey.Password{Message: msg}, &out); err != nil {
		return "", translate(err)
	}
	return out, nil
}

// Input reads a line of text.
func (t *Terminal) Input(ctx context.Context, msg, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var out string
	if err := survey.AskOne(&survey.Input{Message: msg, Default: def}, &out); err != nil {
		return "", translate(err)
	}
	return out, nil
}

func translate(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
