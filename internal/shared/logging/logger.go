// Package logging provides a small component-scoped logger used across the
// core instead of bare fmt/log calls, matching the call-site shape used by
// the agent executor, router and tool registry (NewComponentLogger(name),
// Debug/Info/Warn/Error(format, args...)).
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Logger is a printf-style logger scoped to a named component, backed by
// log/slog. Output is not colorized: NewComponentLogger keeps a color.Color
// on the Logger, but no method applies it.
type Logger struct {
	component string
	slog      *slog.Logger
	color     *color.Color
}

var (
	mu      sync.Mutex
	handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
)

// SetHandler redirects every future component logger to the given slog
// handler. Tests may use this to capture output.
func SetHandler(h slog.Handler) {
	mu.Lock()
	defer mu.Unlock()
	handler = h
}

// NewComponentLogger returns a logger that prefixes every line with
// "[component]".
func NewComponentLogger(component string) *Logger {
	mu.Lock()
	h := handler
	mu.Unlock()
	return &Logger{
		component: component,
		slog:      slog.New(h).With("component", component),
		color:     color.New(color.FgCyan),
	}
}

func (l *Logger) format(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	return fmt.Sprintf("[%s] %s", l.component, msg)
}

// Debug logs at debug level.
func (l *Logger) Debug(format string, args ...any) {
	l.slog.Debug(l.format(format, args...))
}

// Info logs at info level.
func (l *Logger) Info(format string, args ...any) {
	l.slog.Info(l.format(format, args...))
}

// Warn logs at warn level.
func (l *Logger) Warn(format string, args ...any) {
	l.slog.Warn(l.format(format, args...))
}

// Error logs at error level.
func (l *Logger) Error(format string, args ...any) {
	l.slog.Error(l.format(format, args...))
}
