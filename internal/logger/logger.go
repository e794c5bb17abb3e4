// Package logger provides the process-wide structured logger, a thin wrapper
// over log/slog with a colored text handler for terminals and a JSON handler
// for machine consumption. Output defaults to stderr so command output on
// stdout stays clean.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stderr, stdout, or a file path
}

var (
	mu       sync.RWMutex
	output   io.Writer = os.Stderr
	useColor           = isTerminal(os.Stderr.Fd())
	level              = slog.LevelInfo
	format             = "text"
	slogger            = newLogger(output, level, format, useColor)
)

func newLogger(w io.Writer, lvl slog.Level, format string, color bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(newTextHandler(w, opts, color))
}

func reconfigure() {
	slogger = newLogger(output, level, format, useColor)
}

// Init applies the given configuration. Empty fields keep their current
// values.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(cfg.Output) {
	case "":
		// keep current
	case "stderr":
		output = os.Stderr
		useColor = isTerminal(os.Stderr.Fd())
	case "stdout":
		output = os.Stdout
		useColor = isTerminal(os.Stdout.Fd())
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file %q: %w", cfg.Output, err)
		}
		output = f
		useColor = false
	}

	if cfg.Level != "" {
		lvl, err := parseLevel(cfg.Level)
		if err != nil {
			return err
		}
		level = lvl
	}

	if cfg.Format != "" {
		f := strings.ToLower(cfg.Format)
		if f != "text" && f != "json" {
			return fmt.Errorf("unknown log format %q (valid: text, json)", cfg.Format)
		}
		format = f
	}

	reconfigure()
	return nil
}

// InitWithWriter points the logger at a custom writer. Primarily for tests.
func InitWithWriter(w io.Writer, lvl, fmtName string) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	useColor = false
	if lvl != "" {
		if parsed, err := parseLevel(lvl); err == nil {
			level = parsed
		}
	}
	if fmtName != "" {
		format = strings.ToLower(fmtName)
	}
	reconfigure()
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (valid: DEBUG, INFO, WARN, ERROR)", s)
	}
}

func get() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// Debug logs at debug level with key-value pairs.
func Debug(msg string, args ...any) { get().Debug(msg, args...) }

// Info logs at info level with key-value pairs.
func Info(msg string, args ...any) { get().Info(msg, args...) }

// Warn logs at warn level with key-value pairs.
func Warn(msg string, args ...any) { get().Warn(msg, args...) }

// Error logs at error level with key-value pairs.
func Error(msg string, args ...any) { get().Error(msg, args...) }
