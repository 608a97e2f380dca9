package ladder

import (
	"io"
	"time"

	"github.com/PentesterFlow/ladderadmin/internal/form"
	"github.com/PentesterFlow/ladderadmin/internal/logger"
	"github.com/PentesterFlow/ladderadmin/internal/metrics"
	"github.com/PentesterFlow/ladderadmin/internal/prompt"
	"github.com/PentesterFlow/ladderadmin/internal/render"
	"github.com/PentesterFlow/ladderadmin/internal/session"
)

// Option is a functional option for configuring the Admin.
type Option func(*Admin) error

// WithConfig replaces the whole configuration.
func WithConfig(config *Config) Option {
	return func(a *Admin) error {
		a.config = config.Clone()
		return nil
	}
}

// WithBaseURL sets the backend root.
func WithBaseURL(url string) Option {
	return func(a *Admin) error {
		a.config.BaseURL = url
		return nil
	}
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Admin) error {
		a.config.Timeout = timeout
		return nil
	}
}

// WithRateLimit sets the client-side throttle. rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(a *Admin) error {
		a.config.RateLimit.RequestsPerSecond = rps
		a.config.RateLimit.Burst = burst
		return nil
	}
}

// WithCommandRate gives one backend command its own throttle on top of the
// global one. rps <= 0 removes it.
func WithCommandRate(command string, rps float64, burst int) Option {
	return func(a *Admin) error {
		if rps <= 0 {
			delete(a.config.RateLimit.Commands, command)
			return nil
		}
		if a.config.RateLimit.Commands == nil {
			a.config.RateLimit.Commands = make(map[string]CommandRate)
		}
		a.config.RateLimit.Commands[command] = CommandRate{RequestsPerSecond: rps, Burst: burst}
		return nil
	}
}

// WithLookupDelay sets the debounce interval for player lookups.
func WithLookupDelay(d time.Duration) Option {
	return func(a *Admin) error {
		a.config.Lookup.Delay = d
		return nil
	}
}

// WithAdminMode toggles admin behavior on the match form.
func WithAdminMode(admin bool) Option {
	return func(a *Admin) error {
		a.config.Admin = admin
		return nil
	}
}

// WithDuplicateCheck toggles the same-name check before add_player.
func WithDuplicateCheck(enabled bool) Option {
	return func(a *Admin) error {
		a.config.DuplicateCheck = enabled
		return nil
	}
}

// WithHeaders adds headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(a *Admin) error {
		if a.config.Headers == nil {
			a.config.Headers = make(map[string]string)
		}
		for k, v := range headers {
			a.config.Headers[k] = v
		}
		return nil
	}
}

// WithPrompter sets where alerts and confirmations go.
func WithPrompter(p prompt.Prompter) Option {
	return func(a *Admin) error {
		a.prompter = p
		return nil
	}
}

// WithRenderer sets the list renderer.
func WithRenderer(r render.Renderer) Option {
	return func(a *Admin) error {
		a.renderer = r
		return nil
	}
}

// WithOutput renders to w using the configured format.
func WithOutput(w io.Writer) Option {
	return func(a *Admin) error {
		a.output = w
		return nil
	}
}

// WithForm replaces the built-in form with the same ID, e.g. one read from
// a live page.
func WithForm(f *form.Form) Option {
	return func(a *Admin) error {
		a.forms[f.ID] = f
		return nil
	}
}

// WithSessionStore persists cookies between runs.
func WithSessionStore(s session.Store) Option {
	return func(a *Admin) error {
		a.store = s
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *Admin) error {
		a.log = l
		return nil
	}
}

// WithLogLevel sets the log level.
func WithLogLevel(level logger.Level) Option {
	return func(a *Admin) error {
		a.config.Log.Level = level.String()
		if a.log != nil {
			a.log.SetLevel(level)
		}
		return nil
	}
}

// WithLookupHook is called after every debounced lookup settles.
func WithLookupHook(fn func(LookupResult)) Option {
	return func(a *Admin) error {
		a.onLookup = fn
		return nil
	}
}

// WithMetrics sets a custom metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(a *Admin) error {
		a.metrics = m
		return nil
	}
}
