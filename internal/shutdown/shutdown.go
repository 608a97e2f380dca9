// Package shutdown stops pending lookups and closes stores on exit.
package shutdown

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/PentesterFlow/ladderadmin/internal/logger"
)

// Callback is a function run during shutdown.
type Callback func(ctx context.Context) error

// Stopper is anything with a synchronous Stop, such as a debounce scheduler.
type Stopper interface {
	Stop()
}

type step struct {
	name string
	fn   Callback
}

// Handler runs registered cleanup steps once, on a signal or on demand.
type Handler struct {
	mu    sync.Mutex
	steps []step

	isShuttingDown atomic.Bool
	done           chan struct{}
	timeout        time.Duration
	result         Result

	ctx    context.Context
	cancel context.CancelFunc

	sigChan chan os.Signal
	log     *logger.Logger
}

// Config holds shutdown configuration.
type Config struct {
	Timeout time.Duration
	Signals []os.Signal
	Logger  *logger.Logger
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout: 5 * time.Second,
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// New creates a handler and starts listening for the configured signals.
func New(cfg Config) *Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if len(cfg.Signals) == 0 {
		cfg.Signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	h := &Handler{
		done:    make(chan struct{}),
		timeout: cfg.Timeout,
		ctx:     ctx,
		cancel:  cancel,
		sigChan: make(chan os.Signal, 1),
		log:     cfg.Logger.WithComponent("shutdown"),
	}

	signal.Notify(h.sigChan, cfg.Signals...)
	go h.listen()

	return h
}

func (h *Handler) listen() {
	select {
	case sig := <-h.sigChan:
		h.log.Infof("Received %s, shutting down", sig)
		h.Shutdown()
	case <-h.ctx.Done():
	}
}

// Register adds a named cleanup step. Steps run in reverse order.
func (h *Handler) Register(name string, fn Callback) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.steps = append(h.steps, step{name: name, fn: fn})
}

// RegisterStopper stops s on shutdown.
func (h *Handler) RegisterStopper(name string, s Stopper) {
	h.Register(name, func(ctx context.Context) error {
		s.Stop()
		return nil
	})
}

// RegisterCloser closes c on shutdown.
func (h *Handler) RegisterCloser(name string, c io.Closer) {
	h.Register(name, func(ctx context.Context) error {
		return c.Close()
	})
}

// Context is cancelled when shutdown begins. Long-running commands such as
// the interactive lookup loop run under it.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Result waits for shutdown to finish and reports how it went.
func (h *Handler) Result() Result {
	<-h.done
	return h.result
}

// Shutdown runs every step once. Later calls wait for the first to finish.
func (h *Handler) Shutdown() {
	if !h.isShuttingDown.CompareAndSwap(false, true) {
		<-h.done
		return
	}

	start := time.Now()
	h.cancel()
	signal.Stop(h.sigChan)

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	h.mu.Lock()
	steps := make([]step, len(h.steps))
	copy(steps, h.steps)
	h.mu.Unlock()

	var errs []error
	for i := len(steps) - 1; i >= 0; i-- {
		if err := run(ctx, steps[i]); err != nil {
			h.log.WithError(err).Warnf("Shutdown step %s failed", steps[i].name)
			errs = append(errs, err)
		}
	}

	h.result = Result{Elapsed: time.Since(start), Errors: errs}
	h.log.Debugf("Shutdown finished in %s", h.result.Elapsed)
	close(h.done)
}

func run(ctx context.Context, s step) error {
	done := make(chan error, 1)
	go func() {
		done <- s.fn(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return &TimeoutError{Step: s.name}
	}
}

// TimeoutError is returned when a step outlives the shutdown timeout.
type TimeoutError struct {
	Step string
}

func (e *TimeoutError) Error() string {
	return "shutdown step timed out: " + e.Step
}

// Result holds the outcome of a shutdown.
type Result struct {
	Elapsed time.Duration
	Errors  []error
}

// HasErrors reports whether any step failed.
func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}
