package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newJSON(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := &Config{Level: level, Format: "json"}
	return NewWithWriter(cfg, "rex", &buf), &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &m); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.Name() != "test-svc" {
		t.Errorf("expected name 'test-svc', got %q", l.Name())
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l, buf := newJSON(t, "invalid-level")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("invalid level should fall back to info, got %q", buf.String())
	}
	l.Info("shown")
	if buf.Len() == 0 {
		t.Error("expected info output")
	}
}

func TestLevels(t *testing.T) {
	l, buf := newJSON(t, "trace")
	l.Trace("t")
	if m := decode(t, buf); m["level"] != "trace" {
		t.Errorf("expected trace level, got %v", m["level"])
	}
	if !l.Enabled(zerolog.TraceLevel) {
		t.Error("trace should be enabled")
	}

	l2, _ := newJSON(t, "warn")
	if l2.Enabled(zerolog.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
}

func TestFatalDoesNotExit(t *testing.T) {
	l, buf := newJSON(t, "info")
	l.Fatal("boom")
	if m := decode(t, buf); m["level"] != "fatal" {
		t.Errorf("expected fatal level, got %v", m["level"])
	}
}

func TestWithComponentAndFields(t *testing.T) {
	l, buf := newJSON(t, "debug")
	l.WithComponent("tasks").WithFields(Fields("run_id", "abc")).Info("hello", UnitFields("task", "build"))

	m := decode(t, buf)
	if m[FieldComponent] != "tasks" {
		t.Errorf("component = %v", m[FieldComponent])
	}
	if m["run_id"] != "abc" {
		t.Errorf("run_id = %v", m["run_id"])
	}
	if m[FieldUnit] != "build" || m[FieldKind] != "task" {
		t.Errorf("unit fields missing: %v", m)
	}
}

func TestWithError(t *testing.T) {
	l, buf := newJSON(t, "info")
	l.WithError(errors.New("kaput")).Error("failed")
	if m := decode(t, buf); m["error"] != "kaput" {
		t.Errorf("error = %v", m["error"])
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "info", Format: "console", NoColor: true}, "rex", &buf)
	l.Warn("careful")
	out := buf.String()
	if !strings.Contains(out, "[REX][WRN]") || !strings.Contains(out, "careful") {
		t.Errorf("unexpected console output %q", out)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected invalid level error")
	}
}

func TestDurationFields(t *testing.T) {
	f := DurationFields("build", 1500*time.Millisecond)
	if f[FieldDuration] != int64(1500) {
		t.Errorf("duration = %v", f[FieldDuration])
	}
	if ErrorFields("build", errors.New("x"))[FieldError] != "x" {
		t.Error("expected error field")
	}
}
