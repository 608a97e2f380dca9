package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/PentesterFlow/ladderadmin/internal/browser"
	"github.com/PentesterFlow/ladderadmin/internal/errors"
	"github.com/PentesterFlow/ladderadmin/internal/form"
	"github.com/PentesterFlow/ladderadmin/internal/logger"
	"github.com/PentesterFlow/ladderadmin/internal/prompt"
	"github.com/PentesterFlow/ladderadmin/internal/render"
	"github.com/PentesterFlow/ladderadmin/internal/session"
	"github.com/PentesterFlow/ladderadmin/internal/shutdown"
	"github.com/PentesterFlow/ladderadmin/pkg/ladder"
)

var (
	version = "1.0.0"

	// Global flags
	configFile string
	baseURL    string
	verbose    bool
	debug      bool
	timeout    int
	rateLimit  float64
	format     string
	assumeYes  bool
	noSession  bool

	// Form flags
	pageSource string
	useBrowser bool
	setValues  []string
	checkIDs   []string
	uncheckIDs []string

	// Match flags
	matchSuffix string
	nonAdmin    bool

	// Player flags
	noDupCheck bool

	// Login flags
	password string

	// Lookup flags
	lookupRate float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ladderctl",
		Short: "ladderctl - ladder administration client",
		Long: `ladderctl fills in and submits the ladder administration forms
(players, admin accounts, matches, seasons) against a ladder backend.

Form fields are set with --set name=value and --check/--uncheck id.
Forms come from the built-in pages unless --page points at a file or URL.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	playerCmd := &cobra.Command{
		Use:       "player <command>",
		Short:     "Submit the player form",
		Long:      "Submit the player form with one of: " + strings.Join(ladder.PlayerCommands(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: ladder.PlayerCommands(),
		RunE:      runPlayer,
	}

	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Show the logged-in player",
		Args:  cobra.NoArgs,
		RunE:  runMe,
	}

	accountCmd := &cobra.Command{
		Use:       "account <command>",
		Short:     "Submit the admin account form",
		Long:      "Submit the admin account form with one of: " + strings.Join(ladder.AccountCommands(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: ladder.AccountCommands(),
		RunE:      runAccount,
	}

	matchCmd := &cobra.Command{
		Use:   "match",
		Short: "Submit a match result",
		Args:  cobra.NoArgs,
		RunE:  runMatch,
	}

	pendingCmd := &cobra.Command{
		Use:   "pending",
		Short: "List matches awaiting validation",
		Args:  cobra.NoArgs,
		RunE:  runPending,
	}

	approveCmd := &cobra.Command{
		Use:   "approve <match-id>",
		Short: "Approve a pending match",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate(ladder.ActionApprove),
	}

	disputeCmd := &cobra.Command{
		Use:   "dispute <match-id>",
		Short: "Dispute a pending match",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate(ladder.ActionDispute),
	}

	seasonCmd := &cobra.Command{
		Use:   "season",
		Short: "Archive the ladder and start a new season",
		Args:  cobra.NoArgs,
		RunE:  runSeason,
	}

	loginCmd := &cobra.Command{
		Use:   "login <name>",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE:  runLogin,
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE:  runLogout,
	}

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "List backends with a stored session",
		Args:  cobra.NoArgs,
		RunE:  runSessions,
	}

	lookupCmd := &cobra.Command{
		Use:   "lookup",
		Short: "Resolve match form players while typing",
		Long: `Reads keystrokes from stdin, one per line, as box=value (for example
player_1_last_name=Smi). Each line re-arms the lookup for that box; one
lookup runs after typing in a box pauses and fills in the companion box.`,
		Args: cobra.NoArgs,
		RunE: runLookup,
	}

	formsCmd := &cobra.Command{
		Use:   "forms",
		Short: "Show the forms and their current values",
		Args:  cobra.NoArgs,
		RunE:  runForms,
	}

	configCmd := &cobra.Command{
		Use:   "config <path>",
		Short: "Write the default configuration to a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfig,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file (default $"+ladder.EnvConfig+")")
	rootCmd.PersistentFlags().StringVarP(&baseURL, "base-url", "b", "", "Backend URL (default $"+ladder.EnvBaseURL+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug mode")
	rootCmd.PersistentFlags().IntVarP(&timeout, "timeout", "t", 10, "Request timeout in seconds")
	rootCmd.PersistentFlags().Float64VarP(&rateLimit, "rate-limit", "r", 5, "Requests per second (0 for unlimited)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to every confirmation")
	rootCmd.PersistentFlags().BoolVar(&noSession, "no-session", false, "Do not load or store the session cookie")

	// Form flags
	rootCmd.PersistentFlags().StringVar(&pageSource, "page", "", "HTML file or URL to read forms from")
	rootCmd.PersistentFlags().BoolVar(&useBrowser, "browser", false, "Render --page in a headless browser")
	rootCmd.PersistentFlags().StringArrayVarP(&setValues, "set", "s", nil, "Set a field (name=value)")
	rootCmd.PersistentFlags().StringArrayVar(&checkIDs, "check", nil, "Check a checkbox")
	rootCmd.PersistentFlags().StringArrayVar(&uncheckIDs, "uncheck", nil, "Uncheck a checkbox")

	playerCmd.Flags().BoolVar(&noDupCheck, "no-duplicate-check", false, "Skip the same-name check before add_player")
	matchCmd.Flags().StringVar(&matchSuffix, "suffix", "", "Extra key=value appended to the query")
	matchCmd.Flags().BoolVar(&nonAdmin, "player-mode", false, "Submit as a player instead of an admin")
	lookupCmd.Flags().Float64Var(&lookupRate, "lookup-rate", 0, "Dedicated get_player requests per second for lookups (0 for none)")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when empty)")

	// Add commands
	matchCmd.AddCommand(pendingCmd, approveCmd, disputeCmd)
	playerCmd.AddCommand(meCmd)
	rootCmd.AddCommand(playerCmd, accountCmd, matchCmd, seasonCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, sessionsCmd, lookupCmd, formsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		// Backend and form errors were already shown as alerts.
		if errors.GetErrorType(err) == errors.Unknown {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// app bundles what every command needs.
type app struct {
	admin    *ladder.Admin
	shutdown *shutdown.Handler
	config   *ladder.Config
	log      *logger.Logger
}

func (a *app) ctx() context.Context {
	return a.shutdown.Context()
}

func (a *app) close() {
	a.shutdown.Shutdown()
	if res := a.shutdown.Result(); res.HasErrors() {
		a.log.Warnf("Shutdown finished with %d error(s)", len(res.Errors))
	}
}

func loadConfig(cmd *cobra.Command) (*ladder.Config, error) {
	config := ladder.DefaultConfig()

	path := configFile
	if path == "" {
		path = os.Getenv(ladder.EnvConfig)
	}
	if path != "" {
		fileConfig, err := ladder.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		config = fileConfig
	}
	config.ApplyEnv()

	// Command-line flags take precedence
	flags := cmd.Flags()
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if flags.Changed("timeout") {
		config.Timeout = time.Duration(timeout) * time.Second
	}
	if flags.Changed("rate-limit") {
		config.RateLimit.RequestsPerSecond = rateLimit
	}
	if flags.Changed("format") {
		config.Output.Format = format
	}
	if noSession {
		config.Session.Enabled = false
	}
	if verbose {
		config.Log.Level = "info"
	}
	if debug {
		config.Log.Level = "debug"
	}
	return config, nil
}

func newApp(cmd *cobra.Command, extra ...ladder.Option) (*app, error) {
	config, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(config.Log.Level)
	if err != nil || config.Log.Level == "" {
		level = logger.WarnLevel
	}
	log := logger.New(logger.Config{
		Level:     level,
		Pretty:    config.Log.Pretty,
		Output:    os.Stderr,
		Component: "ladderctl",
	})
	logger.SetGlobal(log)

	h := shutdown.New(shutdown.Config{
		Timeout: config.Timeout,
		Logger:  log,
	})

	opts := []ladder.Option{
		ladder.WithConfig(config),
		ladder.WithLogger(log),
	}
	if assumeYes {
		opts = append(opts, ladder.WithPrompter(prompt.NewScripted(true).WithEcho(os.Stdout)))
	}
	if config.Session.Enabled {
		store, err := session.NewBoltStore(config.Session.Path)
		if err != nil {
			log.WithError(err).Warn("Session store unavailable, continuing without it")
		} else {
			h.RegisterCloser("session store", store)
			opts = append(opts, ladder.WithSessionStore(store))
		}
	}
	opts = append(opts, extra...)

	admin, err := ladder.New(opts...)
	if err != nil {
		h.Shutdown()
		return nil, err
	}
	h.RegisterCloser("admin", admin)
	h.RegisterStopper("lookups", admin.Scheduler())

	a := &app{admin: admin, shutdown: h, config: config, log: log}
	if err := a.loadPage(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// loadPage replaces the built-in forms with those found at --page.
func (a *app) loadPage() error {
	if pageSource == "" {
		return nil
	}

	var (
		forms []*form.Form
		err   error
	)
	isURL := strings.HasPrefix(pageSource, "http://") || strings.HasPrefix(pageSource, "https://")

	switch {
	case useBrowser:
		target := pageSource
		if !isURL {
			target = "file://" + pageSource
		}
		b, berr := browser.New(a.config.Browser)
		if berr != nil {
			return berr
		}
		a.shutdown.RegisterCloser("browser", b)
		forms, err = b.Forms(a.ctx(), target, a.admin.Client().Cookies())
	case isURL:
		forms, err = a.admin.Client().FetchForms(a.ctx(), pageSource)
	default:
		f, ferr := os.Open(pageSource)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		forms, err = form.ParseReader(f)
	}
	if err != nil {
		return err
	}

	for _, f := range forms {
		if f.ID == "" {
			continue
		}
		a.log.WithForm(f.ID).Debugf("Loaded form with %d fields", f.Len())
		a.admin.SetForm(f)
	}
	return nil
}

// applyEdits writes --set, --check and --uncheck into the form.
func (a *app) applyEdits(formID string) error {
	f, err := a.admin.Form(formID)
	if err != nil {
		return err
	}
	for _, kv := range setValues {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--set %q: want name=value", kv)
		}
		if err := f.SetValue(name, value); err != nil {
			return err
		}
	}
	for _, id := range checkIDs {
		if err := f.SetChecked(id, true); err != nil {
			return err
		}
	}
	for _, id := range uncheckIDs {
		if err := f.SetChecked(id, false); err != nil {
			return err
		}
	}
	return nil
}

func runPlayer(cmd *cobra.Command, args []string) error {
	var extra []ladder.Option
	if noDupCheck {
		extra = append(extra, ladder.WithDuplicateCheck(false))
	}
	a, err := newApp(cmd, extra...)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.applyEdits(form.PlayerForm); err != nil {
		return err
	}
	return a.admin.PlayerForm(a.ctx(), args[0])
}

func runMe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return a.admin.LoggedInPlayer(a.ctx())
}

func runAccount(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.applyEdits(form.AccountForm); err != nil {
		return err
	}
	return a.admin.AccountForm(a.ctx(), args[0])
}

func runMatch(cmd *cobra.Command, args []string) error {
	var extra []ladder.Option
	if nonAdmin {
		extra = append(extra, ladder.WithAdminMode(false))
	}
	a, err := newApp(cmd, extra...)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.applyEdits(form.MatchForm); err != nil {
		return err
	}
	return a.admin.MatchForm(a.ctx(), ladder.CmdAddMatch, matchSuffix)
}

func runPending(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return a.admin.PendingMatches(a.ctx())
}

func runValidate(action string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		return a.admin.ValidateMatch(a.ctx(), action, args[0])
	}
}

func runSeason(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.applyEdits(form.SeasonForm); err != nil {
		return err
	}
	return a.admin.SeasonForm(a.ctx(), ladder.CmdNewSeason)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return a.admin.Login(a.ctx(), args[0], password)
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return a.admin.Logout()
}

func runSessions(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !config.Session.Enabled {
		return fmt.Errorf("sessions are disabled")
	}

	store, err := session.NewBoltStore(config.Session.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	return listSessions(store, os.Stdout)
}

func listSessions(store *session.BoltStore, out io.Writer) error {
	hosts, err := store.Hosts()
	if err != nil {
		return err
	}
	if len(hosts) == 0 {
		fmt.Fprintln(out, "No stored sessions")
		return nil
	}
	for _, host := range hosts {
		sess, err := store.Load(host)
		if err != nil || sess == nil {
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", host, sess.User)
	}
	return nil
}

func runForms(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	r := render.New(os.Stdout, render.Config{Format: a.config.Output.Format, Pretty: a.config.Output.Pretty})
	for _, id := range form.BuiltinIDs() {
		if err := a.applyEditsIfTarget(id); err != nil {
			return err
		}
		f, err := a.admin.Form(id)
		if err != nil {
			return err
		}
		if err := r.Form(render.StateOf(f.Snapshot())); err != nil {
			return err
		}
	}
	return nil
}

// applyEditsIfTarget applies edits only to fields the form has, so one
// --set list can be previewed against every form.
func (a *app) applyEditsIfTarget(formID string) error {
	f, err := a.admin.Form(formID)
	if err != nil {
		return err
	}
	for _, kv := range setValues {
		name, value, _ := strings.Cut(kv, "=")
		if _, ok := f.Field(name); ok {
			f.SetValue(name, value)
		}
	}
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := config.SaveToFile(args[0]); err != nil {
		return err
	}
	fmt.Printf("Configuration written to %s\n", args[0])
	return nil
}

func runLookup(cmd *cobra.Command, args []string) error {
	t := newTracker(os.Stdout)
	opts := []ladder.Option{ladder.WithLookupHook(t.settled)}
	if lookupRate > 0 {
		opts = append(opts, ladder.WithCommandRate(ladder.CmdGetPlayer, lookupRate, 1))
	}
	a, err := newApp(cmd, opts...)
	if err != nil {
		return err
	}
	defer a.close()

	if err := feedKeystrokes(a.ctx(), a.admin, os.Stdin, t); err != nil {
		return err
	}
	return t.wait(a.ctx())
}

// feedKeystrokes reads box=value lines and arms the matching lookup.
func feedKeystrokes(ctx context.Context, admin *ladder.Admin, r io.Reader, t *tracker) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		box, value, _ := strings.Cut(line, "=")
		c, ok := ladder.CompletionFor(box)
		if !ok {
			return fmt.Errorf("%q is not a lookup box", box)
		}
		gen, err := admin.Keystroke(c, value)
		if err != nil {
			return err
		}
		t.armed(c.Slot, gen)
	}
	return scanner.Err()
}

// tracker waits until the last keystroke in every slot has settled.
type tracker struct {
	mu      sync.Mutex
	out     io.Writer
	latest  map[int]uint64
	settles map[int]uint64
}

func newTracker(out io.Writer) *tracker {
	return &tracker{out: out, latest: make(map[int]uint64), settles: make(map[int]uint64)}
}

func (t *tracker) armed(slot int, gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest[slot] = gen
}

func (t *tracker) settled(r ladder.LookupResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r.Outcome != ladder.OutcomeStale {
		fmt.Fprintf(t.out, "%s=%s (%s)\n", r.Completion.Dest(), r.Value, r.Outcome)
	}
	if r.Generation > t.settles[r.Completion.Slot] {
		t.settles[r.Completion.Slot] = r.Generation
	}
}

func (t *tracker) done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for slot, gen := range t.latest {
		if t.settles[slot] < gen {
			return false
		}
	}
	return true
}

func (t *tracker) wait(ctx context.Context) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for !t.done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
