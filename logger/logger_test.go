package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newJSONLogger(buf *bytes.Buffer, level string) *Logger {
	return New(&Config{Level: level, Format: "json", Writer: buf}, "user-service")
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line, got none")
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	return m
}

func TestNew_WritesServiceField(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "info")
	l.Info("started")

	m := decodeLine(t, &buf)
	if m[FieldService] != "user-service" {
		t.Errorf("expected service field, got %v", m[FieldService])
	}
	if m["message"] != "started" {
		t.Errorf("expected message 'started', got %v", m["message"])
	}
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "invalid-level")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug should be filtered at info level, got %q", buf.String())
	}
	l.Info("shown")
	if buf.Len() == 0 {
		t.Error("info should be written")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "warn")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "debug").WithComponent("credential")
	l.Debug("hashing")

	m := decodeLine(t, &buf)
	if m[FieldComponent] != "credential" {
		t.Errorf("expected component=credential, got %v", m[FieldComponent])
	}
}

func TestExtraFields(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "info")
	l.Info("msg", map[string]interface{}{"a": "b"}, Fields(FieldUserID, 7, "dangling"))

	m := decodeLine(t, &buf)
	if m["a"] != "b" {
		t.Errorf("expected a=b, got %v", m["a"])
	}
	if m[FieldUserID] != float64(7) {
		t.Errorf("expected user_id=7, got %v", m[FieldUserID])
	}
	if _, ok := m["dangling"]; ok {
		t.Error("odd trailing key must be ignored")
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf, "info").WithError(errors.New("boom")).Error("failed")

	m := decodeLine(t, &buf)
	if m["error"] != "boom" {
		t.Errorf("expected error=boom, got %v", m["error"])
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithUserID(ctx, "42")

	newJSONLogger(&buf, "info").WithContext(ctx).Info("handled")

	m := decodeLine(t, &buf)
	if m[FieldRequestID] != "req-1" {
		t.Errorf("expected request_id=req-1, got %v", m[FieldRequestID])
	}
	if m[FieldUserID] != "42" {
		t.Errorf("expected user_id=42, got %v", m[FieldUserID])
	}
}

func TestWithContext_Empty(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf, "info").WithContext(context.Background()).Info("handled")

	m := decodeLine(t, &buf)
	if _, ok := m[FieldRequestID]; ok {
		t.Error("request_id should be absent")
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "info", Format: "console", NoColor: true, Writer: &buf}, "user-service")
	l.Info("ready")

	out := buf.String()
	if !strings.Contains(out, "INF") || !strings.Contains(out, "service=user-service") {
		t.Errorf("expected level tag and service field, got %q", out)
	}
	if !strings.Contains(out, "ready") {
		t.Errorf("expected message, got %q", out)
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Error("nothing happens")
}

func TestGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)

	SetGlobalLogger(newJSONLogger(&buf, "info"))
	Info("global")
	if !strings.Contains(buf.String(), "global") {
		t.Errorf("expected global logger output, got %q", buf.String())
	}

	buf.Reset()
	WithComponent("server").Warn("w")
	m := decodeLine(t, &buf)
	if m[FieldComponent] != "server" {
		t.Errorf("expected component=server, got %v", m[FieldComponent])
	}
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stdout" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	bad := Config{Level: "loud", Format: "json", Output: "stdout"}
	if err := bad.Validate(); err == nil {
		t.Error("expected invalid level error")
	}
	bad = Config{Level: "info", Format: "xml", Output: "stdout"}
	if err := bad.Validate(); err == nil {
		t.Error("expected invalid format error")
	}
	bad = Config{Level: "info", Format: "json", Output: "file"}
	if err := bad.Validate(); err == nil {
		t.Error("expected invalid output error")
	}
}

func TestTimeFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&Config{Level: "info", Format: FormatJSON, TimeFormat: "2006-01-02", Writer: &buf}, "svc").Info("dated")

	m := decodeLine(t, &buf)
	ts, _ := m["time"].(string)
	if _, err := time.Parse("2006-01-02", ts); err != nil {
		t.Errorf("time = %q, want a 2006-01-02 date: %v", ts, err)
	}
}

func TestConfig_TimeFormatDefaults(t *testing.T) {
	jsonCfg := Config{Format: FormatJSON}
	jsonCfg.ApplyDefaults()
	if jsonCfg.TimeFormat != time.RFC3339 {
		t.Errorf("json time format = %q", jsonCfg.TimeFormat)
	}
	console := Config{}
	console.ApplyDefaults()
	if console.TimeFormat != time.TimeOnly {
		t.Errorf("console time format = %q", console.TimeFormat)
	}
}
