package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	slogctx "github.com/veqryn/slog-context"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"trace", slog.LevelWarn, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %q, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatText {
		t.Errorf("ParseFormat(\"\") = %q, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvFormat, "json")

	cfg := LoadConfigFromEnv(DefaultConfig())
	if cfg.Level != slog.LevelDebug {
		t.Errorf("Level = %v, want debug", cfg.Level)
	}
	if cfg.Format != FormatJSON {
		t.Errorf("Format = %q, want json", cfg.Format)
	}

	t.Setenv(EnvLevel, "loud")
	cfg = LoadConfigFromEnv(DefaultConfig())
	if cfg.Level != slog.LevelWarn {
		t.Errorf("invalid level should keep the default, got %v", cfg.Level)
	}
}

func TestNewJSONCarriesContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf})

	ctx := WithLogger(context.Background(), logger)
	ctx = slogctx.With(ctx, "file", "widget.h")
	slogctx.Debug(ctx, "hidden")
	slogctx.Info(ctx, "indexed", "symbols", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d: %q", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec["msg"] != "indexed" {
		t.Errorf("msg = %v", rec["msg"])
	}
	if rec["file"] != "widget.h" {
		t.Errorf("file = %v, want widget.h", rec["file"])
	}
	if rec["symbols"] != float64(3) {
		t.Errorf("symbols = %v", rec["symbols"])
	}
}

func TestNewTextHasNoColorOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Format: FormatText, Output: &buf})
	logger.Warn("no counterpart", "name", "area")

	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Errorf("text output to a buffer should not be colored: %q", out)
	}
	if !strings.Contains(out, "no counterpart") || !strings.Contains(out, "name=area") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Output: &buf})
	ctx := WithLogger(context.Background(), logger)
	if slogctx.FromCtx(ctx) != logger {
		t.Error("WithLogger should store the logger in the context")
	}
	slogctx.Info(ctx, "indexed")
	if !strings.Contains(buf.String(), `"msg":"indexed"`) {
		t.Errorf("context logger did not write: %q", buf.String())
	}
}
