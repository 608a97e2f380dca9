package ladder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// =============================================================================
// DefaultConfig Tests
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if config.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", config.Timeout)
	}
	if config.Lookup.Slots != 4 {
		t.Errorf("Lookup.Slots = %d, want 4", config.Lookup.Slots)
	}
	if config.Lookup.Delay != time.Second {
		t.Errorf("Lookup.Delay = %v, want 1s", config.Lookup.Delay)
	}
	if !config.Admin {
		t.Error("Admin should be true")
	}
	if !config.DuplicateCheck {
		t.Error("DuplicateCheck should be true")
	}
	if config.Output.Format != "text" {
		t.Errorf("Output.Format = %q, want text", config.Output.Format)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

// =============================================================================
// Validate Tests
// =============================================================================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"https", func(c *Config) { c.BaseURL = "https://ladder.example.com" }, false},
		{"empty base url", func(c *Config) { c.BaseURL = "" }, true},
		{"ftp base url", func(c *Config) { c.BaseURL = "ftp://example.com" }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"negative rate", func(c *Config) { c.RateLimit.RequestsPerSecond = -1 }, true},
		{"unlimited rate", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, false},
		{"negative command rate", func(c *Config) {
			c.RateLimit.Commands = map[string]CommandRate{"get_player": {RequestsPerSecond: -1}}
		}, true},
		{"command rate", func(c *Config) {
			c.RateLimit.Commands = map[string]CommandRate{"get_player": {RequestsPerSecond: 2, Burst: 1}}
		}, false},
		{"no slots", func(c *Config) { c.Lookup.Slots = 0 }, true},
		{"zero delay", func(c *Config) { c.Lookup.Delay = 0 }, true},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, true},
		{"json format", func(c *Config) { c.Output.Format = "json" }, false},
		{"session without path", func(c *Config) { c.Session.Path = "" }, true},
		{"sessions disabled", func(c *Config) { c.Session.Enabled = false; c.Session.Path = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// File Tests
// =============================================================================

func TestLoadFromFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ladder.yaml")
	data := `
base_url: https://ladder.example.com
timeout: 3s
admin: false
lookup:
  delay: 250ms
  slots: 4
output:
  format: json
`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	config, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if config.BaseURL != "https://ladder.example.com" {
		t.Errorf("BaseURL = %q", config.BaseURL)
	}
	if config.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v", config.Timeout)
	}
	if config.Admin {
		t.Error("Admin should be false")
	}
	if config.Lookup.Delay != 250*time.Millisecond {
		t.Errorf("Lookup.Delay = %v", config.Lookup.Delay)
	}
	if config.Output.Format != "json" {
		t.Errorf("Output.Format = %q", config.Output.Format)
	}
	// Untouched keys keep their defaults.
	if !config.DuplicateCheck {
		t.Error("DuplicateCheck default lost")
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFromFile() should fail for a missing file")
	}
}

func TestLoadFromFile_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("base_url: [unclosed"), 0600)
	if _, err := LoadFromFile(path); err == nil {
		t.Error("LoadFromFile() should fail for unparsable content")
	}
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	for _, name := range []string{"ladder.yaml", "ladder.json"} {
		t.Run(name, func(t *testing.T) {
			config := DefaultConfig()
			config.BaseURL = "https://example.org"
			config.Headers = map[string]string{"X-Ladder": "1"}
			config.Session.Path = "/tmp/s.db"

			path := filepath.Join(t.TempDir(), name)
			if err := config.SaveToFile(path); err != nil {
				t.Fatalf("SaveToFile() error = %v", err)
			}
			loaded, err := LoadFromFile(path)
			if err != nil {
				t.Fatalf("LoadFromFile() error = %v", err)
			}
			if diff := cmp.Diff(config, loaded); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv(EnvBaseURL, "https://env.example.com")
	config := DefaultConfig()
	config.ApplyEnv()
	if config.BaseURL != "https://env.example.com" {
		t.Errorf("BaseURL = %q", config.BaseURL)
	}
}

func TestConfig_Clone(t *testing.T) {
	config := DefaultConfig()
	config.Headers = map[string]string{"A": "1"}

	clone := config.Clone()
	clone.Headers["A"] = "2"
	clone.Lookup.Slots = 9

	if config.Headers["A"] != "1" || config.Lookup.Slots != 4 {
		t.Error("Clone() should be a deep copy")
	}
}
