// Package logging builds the structured loggers used across cppgen.
//
// Loggers are attached to a context with slogctx so that library code can
// log through slogctx.Debug/Warn without holding a logger of its own.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	slogctx "github.com/veqryn/slog-context"
)

// Environment variables that override the configured log settings.
const (
	EnvLevel  = "CPPGEN_LOG_LEVEL"
	EnvFormat = "CPPGEN_LOG_FORMAT"
)

// Format selects the handler used to render records.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

const timeFormat = "15:04:05.000"

// Config describes a logger.
type Config struct {
	Level  slog.Level
	Format Format
	// Output defaults to os.Stderr. Stdout carries command output and the
	// MCP protocol, so it must never receive log records.
	Output io.Writer
	Source bool
}

// DefaultConfig logs warnings and errors as text to stderr.
func DefaultConfig() Config {
	return Config{
		Level:  slog.LevelWarn,
		Format: FormatText,
		Output: os.Stderr,
	}
}

// ParseLevel accepts debug, info, warn (or warning) and error in any case.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("unknown log level %q", s)
}

// ParseFormat accepts text and json.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("unknown log format %q", s)
}

// LoadConfigFromEnv applies CPPGEN_LOG_LEVEL and CPPGEN_LOG_FORMAT on top of
// base. Unparseable values are ignored.
func LoadConfigFromEnv(base Config) Config {
	if v, ok := os.LookupEnv(EnvLevel); ok {
		if lvl, err := ParseLevel(v); err == nil {
			base.Level = lvl
		}
	}
	if v, ok := os.LookupEnv(EnvFormat); ok {
		if f, err := ParseFormat(v); err == nil {
			base.Format = f
		}
	}
	return base
}

// New creates a logger for cfg. Records carry any attributes added to the
// context with slogctx.With.
func New(cfg Config) *slog.Logger {
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}

	var h slog.Handler
	switch cfg.Format {
	case FormatJSON:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     cfg.Level,
			AddSource: cfg.Source,
		})
	default:
		h = tint.NewHandler(w, &tint.Options{
			Level:      cfg.Level,
			TimeFormat: timeFormat,
			AddSource:  cfg.Source,
			NoColor:    !isTerminal(w),
		})
	}

	return slog.New(slogctx.NewHandler(h, &slogctx.HandlerOptions{}))
}

// Default returns a logger built from DefaultConfig and the environment.
func Default() *slog.Logger {
	return New(LoadConfigFromEnv(DefaultConfig()))
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return slogctx.NewCtx(ctx, logger)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
