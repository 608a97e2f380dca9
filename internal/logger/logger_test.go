package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newBufferLogger(buf *bytes.Buffer, level Level) *Logger {
	return New(Config{
		Level:  level,
		Pretty: false,
		Output: buf,
	})
}

func TestNew(t *testing.T) {
	l := New(DefaultConfig())
	if l == nil {
		t.Fatal("New() returned nil")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != WarnLevel {
		t.Errorf("Level = %v, want WarnLevel", cfg.Level)
	}
	if !cfg.Pretty {
		t.Error("Pretty should be true by default")
	}
	if cfg.Output == nil {
		t.Error("Output should not be nil")
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, InfoLevel).WithComponent("debounce")
	l.Info("armed")

	if !strings.Contains(buf.String(), "debounce") {
		t.Errorf("Output should contain component: %s", buf.String())
	}
}

func TestLogger_WithCommandAndForm(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, InfoLevel).WithForm("player_form").WithCommand("add_player")
	l.Info("submitting")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["command"] != "add_player" {
		t.Errorf("command = %v, want add_player", entry["command"])
	}
	if entry["form"] != "player_form" {
		t.Errorf("form = %v, want player_form", entry["form"])
	}
}

func TestLogger_WithSlot(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, InfoLevel).WithSlot(3)
	l.Info("fired")

	if !strings.Contains(buf.String(), `"slot":3`) {
		t.Errorf("Output should contain slot: %s", buf.String())
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, InfoLevel).WithFields(map[string]interface{}{
		"field1": "value1",
		"field2": 123,
	})
	l.Info("test message")

	output := buf.String()
	if !strings.Contains(output, "field1") || !strings.Contains(output, "field2") {
		t.Errorf("Output should contain both fields: %s", output)
	}
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, InfoLevel).WithError(errors.New("boom"))
	l.Info("error context")

	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("Output should contain error: %s", buf.String())
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, WarnLevel)

	l.Debug("debug message")
	l.Info("info message")
	if buf.Len() != 0 {
		t.Errorf("Debug/Info should be filtered at WarnLevel: %s", buf.String())
	}

	l.Warn("warn message")
	if !strings.Contains(buf.String(), "warn message") {
		t.Errorf("Warn should pass at WarnLevel: %s", buf.String())
	}
}

func TestLogger_RequestEvent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, DebugLevel)

	l.RequestEvent("POST", "/add_player?first_name=Jim", 200, 120*time.Millisecond)

	output := buf.String()
	for _, want := range []string{"POST", "add_player", "status_code", "duration"} {
		if !strings.Contains(output, want) {
			t.Errorf("Output should contain %q: %s", want, output)
		}
	}
}

func TestLogger_LookupEvent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, DebugLevel)

	l.LookupEvent(2, "get_player?active=yes&last_name=Smith", "resolved")

	output := buf.String()
	if !strings.Contains(output, "resolved") || !strings.Contains(output, `"slot":2`) {
		t.Errorf("Output should contain slot and outcome: %s", output)
	}
}

func TestLogger_StatsEvent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, InfoLevel)

	l.StatsEvent(map[string]interface{}{"requests": 4})
	if !strings.Contains(buf.String(), "requests") {
		t.Errorf("Output should contain stats: %s", buf.String())
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ErrorLevel)

	l.Info("hidden")
	l.SetLevel(InfoLevel)
	l.Info("visible")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Error("message logged before SetLevel should be filtered")
	}
	if !strings.Contains(output, "visible") {
		t.Error("message logged after SetLevel should pass")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", DebugLevel, false},
		{"info", InfoLevel, false},
		{"warn", WarnLevel, false},
		{"error", ErrorLevel, false},
		{"nonsense", InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestGlobalLogger(t *testing.T) {
	original := Global()
	defer SetGlobal(original)

	var buf bytes.Buffer
	SetGlobal(newBufferLogger(&buf, InfoLevel))
	Global().Info("global message")

	if !strings.Contains(buf.String(), "global message") {
		t.Errorf("global logger did not write: %s", buf.String())
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("dropped")
	l.WithCommand("x").Warn("dropped")
}
