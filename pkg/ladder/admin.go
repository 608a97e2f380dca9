// Package ladder drives the ladder administration forms against the
// backend: it serializes form state into queries, submits them, and turns
// the response envelopes into alerts, lists and form updates.
package ladder

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/PentesterFlow/ladderadmin/internal/debounce"
	"github.com/PentesterFlow/ladderadmin/internal/errors"
	"github.com/PentesterFlow/ladderadmin/internal/form"
	ladderhttp "github.com/PentesterFlow/ladderadmin/internal/http"
	"github.com/PentesterFlow/ladderadmin/internal/logger"
	"github.com/PentesterFlow/ladderadmin/internal/metrics"
	"github.com/PentesterFlow/ladderadmin/internal/prompt"
	"github.com/PentesterFlow/ladderadmin/internal/render"
	"github.com/PentesterFlow/ladderadmin/internal/session"
)

// Admin is the main entry point. It owns the forms being edited and every
// collaborator needed to submit them.
type Admin struct {
	config    *Config
	client    *ladderhttp.Client
	scheduler *debounce.Scheduler
	prompter  prompt.Prompter
	renderer  render.Renderer
	output    io.Writer
	store     session.Store
	log       *logger.Logger
	metrics   *metrics.Collector
	onLookup  func(LookupResult)

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	forms    map[string]*form.Form
	recent   []MatchResult
	redirect string
}

// New creates an Admin with the given options.
func New(opts ...Option) (*Admin, error) {
	a := &Admin{
		config: DefaultConfig(),
		forms:  make(map[string]*form.Form),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := a.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if a.log == nil {
		level := logger.WarnLevel
		if a.config.Log.Level != "" {
			if parsed, err := logger.ParseLevel(a.config.Log.Level); err == nil {
				level = parsed
			}
		}
		a.log = logger.New(logger.Config{
			Level:     level,
			Pretty:    a.config.Log.Pretty,
			Output:    os.Stderr,
			Component: "ladder",
		})
	}
	if a.metrics == nil {
		a.metrics = metrics.New()
	}
	if a.output == nil {
		a.output = os.Stdout
	}
	if a.renderer == nil {
		a.renderer = render.New(a.output, render.Config{
			Format: a.config.Output.Format,
			Pretty: a.config.Output.Pretty,
		})
	}
	if a.prompter == nil {
		a.prompter = prompt.NewTerminal(a.output)
	}

	client, err := ladderhttp.NewClient(ladderhttp.ClientConfig{
		BaseURL:           a.config.BaseURL,
		Timeout:           a.config.Timeout,
		UserAgent:         a.config.UserAgent,
		Headers:           a.config.Headers,
		SkipTLSVerify:     a.config.Browser.IgnoreHTTPSErrors,
		RequestsPerSecond: a.config.RateLimit.RequestsPerSecond,
		Burst:             a.config.RateLimit.Burst,
		CommandRates:      commandRates(a.config.RateLimit.Commands),
	}, ladderhttp.WithLogger(a.log), ladderhttp.WithMetrics(a.metrics))
	if err != nil {
		return nil, err
	}
	a.client = client

	a.scheduler = debounce.NewScheduler(a.config.Lookup.Slots, a.config.Lookup.Delay)
	a.ctx, a.cancel = context.WithCancel(context.Background())

	if a.store != nil {
		a.restoreSession()
	}

	return a, nil
}

// Config returns a copy of the active configuration.
func (a *Admin) Config() *Config {
	return a.config.Clone()
}

// Client returns the backend client.
func (a *Admin) Client() *ladderhttp.Client {
	return a.client
}

// Scheduler returns the lookup debounce table.
func (a *Admin) Scheduler() *debounce.Scheduler {
	return a.scheduler
}

// Metrics returns the metrics collector.
func (a *Admin) Metrics() *metrics.Collector {
	return a.metrics
}

// Form returns the form with the given ID, loading the built-in page the
// first time it is asked for.
func (a *Admin) Form(id string) (*form.Form, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if f, ok := a.forms[id]; ok {
		return f, nil
	}
	f, err := form.Builtin(id)
	if err != nil {
		return nil, err
	}
	a.forms[id] = f
	return f, nil
}

// SetForm replaces the form with the same ID, e.g. with one read from a
// live page.
func (a *Admin) SetForm(f *form.Form) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.forms[f.ID] = f
}

// RecentMatches returns the matches submitted in admin mode so far.
func (a *Admin) RecentMatches() []MatchResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]MatchResult, len(a.recent))
	copy(out, a.recent)
	return out
}

// Redirect returns where a non-admin submission asked to navigate, if
// anywhere.
func (a *Admin) Redirect() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.redirect
}

func commandRates(in map[string]CommandRate) map[string]ladderhttp.CommandRate {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]ladderhttp.CommandRate, len(in))
	for cmd, r := range in {
		out[cmd] = ladderhttp.CommandRate{RequestsPerSecond: r.RequestsPerSecond, Burst: r.Burst}
	}
	return out
}

// Close stops pending lookups and logs a summary.
func (a *Admin) Close() error {
	a.scheduler.Stop()
	a.cancel()
	a.log.StatsEvent(a.metrics.Snapshot().Summary())
	return nil
}

// Login authenticates with the backend and remembers the session cookie.
// An empty password is asked for.
func (a *Admin) Login(ctx context.Context, name, password string) error {
	if password == "" {
		pw, err := a.prompter.Password(ctx, "Password for "+name+":")
		if err != nil {
			return err
		}
		password = pw
	}

	if err := a.client.Login(ctx, name, password); err != nil {
		return a.fail(ctx, err)
	}
	if len(a.client.Cookies()) == 0 {
		return a.fail(ctx, errors.NewApplicationError("login", ladderhttp.LoginPath, "no session cookie returned"))
	}

	if a.store != nil {
		sess := session.New(a.client.BaseURL().Host, name, a.client.Cookies())
		if err := a.store.Save(sess); err != nil {
			a.log.WithError(err).Warn("Failed to save session")
		}
	}
	a.log.WithField("user", name).Info("Logged in")
	return a.renderer.Status("logged in as " + name)
}

// Logout forgets the stored session for the backend host.
func (a *Admin) Logout() error {
	if a.store == nil {
		return nil
	}
	return a.store.Delete(a.client.BaseURL().Host)
}

func (a *Admin) restoreSession() {
	host := a.client.BaseURL().Host
	sess, err := a.store.Load(host)
	if err != nil {
		a.log.WithError(err).Warn("Failed to load session")
		return
	}
	if sess == nil {
		return
	}
	a.client.SetCookies(sess.HTTPCookies())
	a.log.WithFields(map[string]interface{}{
		"user": sess.User,
		"host": host,
	}).Debug("Restored session")
}

// fail alerts the user about err and returns it.
func (a *Admin) fail(ctx context.Context, err error) error {
	a.log.WithError(err).Debug("Request failed")
	if alertErr := a.prompter.Alert(ctx, errors.UserMessage(err)); alertErr != nil {
		return alertErr
	}
	return err
}

// confirm asks msg and returns a declined error when the user says no.
func (a *Admin) confirm(ctx context.Context, command, msg string) error {
	ok, err := a.prompter.Confirm(ctx, msg)
	if err != nil {
		return err
	}
	a.metrics.RecordConfirmation(!ok)
	if !ok {
		return errors.NewDeclinedError(command)
	}
	return nil
}

func (a *Admin) alert(ctx context.Context, msg string) error {
	return a.prompter.Alert(ctx, msg)
}
