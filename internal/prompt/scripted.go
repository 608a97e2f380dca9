package prompt

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Scripted answers prompts from preset values and records what was shown.
// It backs --yes and tests.
type Scripted struct {
	mu       sync.Mutex
	answers  []bool
	fallback bool
	password string
	inputs   []string
	echo     io.Writer

	alerts   []string
	confirms []string
}

// NewScripted returns a prompter that answers every confirmation with
// fallback once the queued answers run out.
func NewScripted(fallback bool, answers ...bool) *Scripted {
	return &Scripted{fallback: fallback, answers: answers}
}

// WithPassword sets the answer to password prompts.
func (s *Scripted) WithPassword(pw string) *Scripted {
	s.mu.Lock()
	s.password = pw
	s.mu.Unlock()
	return s
}

// WithInputs queues answers to text prompts.
func (s *Scripted) WithInputs(inputs ...string) *Scripted {
	s.mu.Lock()
	s.inputs = append(s.inputs, inputs...)
	s.mu.Unlock()
	return s
}

// WithEcho also prints alerts to w.
func (s *Scripted) WithEcho(w io.Writer) *Scripted {
	s.mu.Lock()
	s.echo = w
	s.mu.Unlock()
	return s
}

// Alert records msg.
func (s *Scripted) Alert(ctx context.Context, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, msg)
	if s.echo != nil {
		fmt.Fprintln(s.echo, msg)
	}
	return nil
}

// Confirm records msg and returns the next queued answer.
func (s *Scripted) Confirm(ctx context.Context, msg string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confirms = append(s.confirms, msg)
	if len(s.answers) == 0 {
		return s.fallback, nil
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	return answer, nil
}

// Password returns the configured password.
func (s *Scripted) Password(ctx context.Context, msg string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.password, nil
}

// Input returns the next queued input, or def.
func (s *Scripted) Input(ctx context.Context, msg, def string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.inputs) == 0 {
		return def, nil
	}
	in := s.inputs[0]
	s.inputs = s.inputs[1:]
	return in, nil
}

// Alerts returns the alerts shown so far.
func (s *Scripted) Alerts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.alerts...)
}

// LastAlert returns the most recent alert, or "".
func (s *Scripted) LastAlert() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.alerts) == 0 {
		return ""
	}
	return s.alerts[len(s.alerts)-1]
}

// Confirms returns the confirmation questions asked so far.
func (s *Scripted) Confirms() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.confirms...)
}
