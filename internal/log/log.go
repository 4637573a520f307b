// Package log provides a categorized, leveled file logger.
//
// The logger is silent until Init is called, so components can log freely
// while running under tests or inside a host that never enables logging.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log entry.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the upper-case label used in log lines.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a config string to a Level. Unknown names map to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Category groups log entries by subsystem.
type Category string

const (
	CatUI        Category = "ui"
	CatConfig    Category = "config"
	CatFormatter Category = "formatter"
	CatHost      Category = "host"
	CatWatcher   Category = "watcher"
)

type logger struct {
	mu       sync.Mutex
	out      io.Writer
	minLevel Level
	now      func() time.Time
}

var std = &logger{out: io.Discard, minLevel: LevelDebug, now: time.Now}

// Init opens (or creates) the log file at path and routes all entries to it.
// The returned cleanup restores the silent logger and closes the file.
func Init(path string) (func(), error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return func() {}, fmt.Errorf("creating log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return func() {}, fmt.Errorf("opening log file: %w", err)
	}

	SetOutput(f)
	return func() {
		SetOutput(io.Discard)
		_ = f.Close()
	}, nil
}

// SetOutput redirects log entries to w.
func SetOutput(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.out = w
}

// SetLevel drops entries below level.
func SetLevel(level Level) {
	std.mu.Lock()
	defer std.mu.Unlock()
	std.minLevel = level
}

// Debug logs at LevelDebug.
func Debug(cat Category, msg string, kv ...any) { std.log(LevelDebug, cat, msg, kv) }

// Info logs at LevelInfo.
func Info(cat Category, msg string, kv ...any) { std.log(LevelInfo, cat, msg, kv) }

// Warn logs at LevelWarn.
func Warn(cat Category, msg string, kv ...any) { std.log(LevelWarn, cat, msg, kv) }

// Error logs at LevelError.
func Error(cat Category, msg string, kv ...any) { std.log(LevelError, cat, msg, kv) }

func (l *logger) log(level Level, cat Category, msg string, kv []any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.minLevel || l.out == io.Discard {
		return
	}

	var b strings.Builder
	b.WriteString(l.now().Format("2006-01-02T15:04:05.000"))
	fmt.Fprintf(&b, " [%s] [%s] %s", level, cat, msg)
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
		} else {
			// Odd trailing value, keep it rather than drop it
			fmt.Fprintf(&b, " %v", kv[i])
		}
	}
	b.WriteByte('\n')
	_, _ = io.WriteString(l.out, b.String())
}
