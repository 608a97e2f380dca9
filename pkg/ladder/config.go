package ladder

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/PentesterFlow/ladderadmin/internal/browser"
	"github.com/PentesterFlow/ladderadmin/internal/debounce"
)

// Environment variables read by the CLI.
const (
	EnvBaseURL = "LADDER_BASE_URL"
	EnvConfig  = "LADDER_CONFIG"
)

// Config holds all client configuration.
type Config struct {
	// Backend root, e.g. http://localhost:8080
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Request timeout
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	UserAgent string            `json:"user_agent" yaml:"user_agent"`
	Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Client-side throttle
	RateLimit RateLimitConfig `json:"rate_limit" yaml:"rate_limit"`

	// Debounced player lookups on the match form
	Lookup LookupConfig `json:"lookup" yaml:"lookup"`

	// Admin mode tags submitted matches and keeps a recent-matches list
	Admin bool `json:"admin" yaml:"admin"`

	// Look for players with the same name before add_player
	DuplicateCheck bool `json:"duplicate_check" yaml:"duplicate_check"`

	Session SessionConfig  `json:"session" yaml:"session"`
	Browser browser.Config `json:"browser" yaml:"browser"`
	Output  OutputConfig   `json:"output" yaml:"output"`
	Log     LogConfig      `json:"log" yaml:"log"`
}

// RateLimitConfig throttles outgoing requests. Commands gives individual
// backend commands, such as the get_player lookups, a budget of their own on
// top of the global one.
type RateLimitConfig struct {
	RequestsPerSecond float64                `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int                    `json:"burst" yaml:"burst"`
	Commands          map[string]CommandRate `json:"commands,omitempty" yaml:"commands,omitempty"`
}

// CommandRate is the dedicated rate for one backend command.
type CommandRate struct {
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`
}

// LookupConfig configures the debounce table.
type LookupConfig struct {
	Delay time.Duration `json:"delay" yaml:"delay"`
	Slots int           `json:"slots" yaml:"slots"`
}

// SessionConfig controls cookie persistence between invocations.
type SessionConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

// OutputConfig selects how lists are rendered.
type OutputConfig struct {
	Format string `json:"format" yaml:"format"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "http://localhost:8080",
		Timeout:   10 * time.Second,
		UserAgent: "ladderctl/1.0",
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Lookup: LookupConfig{
			Delay: debounce.DefaultDelay,
			Slots: debounce.DefaultSlots,
		},
		Admin:          true,
		DuplicateCheck: true,
		Session: SessionConfig{
			Enabled: true,
			Path:    defaultSessionPath(),
		},
		Browser: browser.DefaultConfig(),
		Output: OutputConfig{
			Format: "text",
			Pretty: true,
		},
		Log: LogConfig{
			Level:  "warn",
			Pretty: true,
		},
	}
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "ladderctl-sessions.db"
	}
	return filepath.Join(dir, "ladderctl", "sessions.db")
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// SaveToFile saves configuration to a file.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base URL must be an absolute http(s) URL: %q", c.BaseURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("rate limit must not be negative")
	}
	for cmd, r := range c.RateLimit.Commands {
		if r.RequestsPerSecond < 0 {
			return fmt.Errorf("rate limit for %s must not be negative", cmd)
		}
	}

	if c.Lookup.Slots < 1 {
		return fmt.Errorf("lookup slots must be at least 1")
	}

	if c.Lookup.Delay <= 0 {
		return fmt.Errorf("lookup delay must be positive")
	}

	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}

	if c.Session.Enabled && c.Session.Path == "" {
		return fmt.Errorf("session path is required when sessions are enabled")
	}

	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	data, _ := json.Marshal(c)
	clone := &Config{}
	json.Unmarshal(data, clone)
	return clone
}
