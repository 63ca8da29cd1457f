// Package logger provides leveled, structured logging shared by every component.
//
// The default level only lets warnings and errors through. The CLI raises it with
// --debug (info) and --verbose (debug).
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level controls which messages are emitted
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelSilent:
		return "silent"
	default:
		return "unknown"
	}
}

// ParseLevel converts a config or flag value into a Level. Unknown values fall back to warn.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "verbose":
		return LevelDebug
	case "info":
		return LevelInfo
	case "error":
		return LevelError
	case "silent", "off", "none":
		return LevelSilent
	default:
		return LevelWarn
	}
}

// Logger is the interface every component logs through
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	WithField(key string, value any) Logger
	WithFields(fields map[string]interface{}) Logger
}

type slogLogger struct {
	l *slog.Logger
}

var (
	mu       sync.RWMutex
	levelVar = new(slog.LevelVar)
	current  Level
	root     *slog.Logger
)

func init() {
	SetOutput(os.Stderr)
	SetLevel(LevelWarn)
}

// SetOutput redirects all loggers to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	root = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelVar}))
}

// SetLevel changes the minimum level for all loggers, including ones already derived.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	current = level
	switch level {
	case LevelDebug:
		levelVar.Set(slog.LevelDebug)
	case LevelInfo:
		levelVar.Set(slog.LevelInfo)
	case LevelWarn:
		levelVar.Set(slog.LevelWarn)
	case LevelError:
		levelVar.Set(slog.LevelError)
	default:
		levelVar.Set(slog.LevelError + 100)
	}
}

// GetLevel returns the active level
func GetLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func base() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &slogLogger{l: root}
}

func (s *slogLogger) Debug(msg string, args ...any) { s.l.Debug(msg, args...) }
func (s *slogLogger) Info(msg string, args ...any)  { s.l.Info(msg, args...) }
func (s *slogLogger) Warn(msg string, args ...any)  { s.l.Warn(msg, args...) }
func (s *slogLogger) Error(msg string, args ...any) { s.l.Error(msg, args...) }

func (s *slogLogger) WithField(key string, value any) Logger {
	return &slogLogger{l: s.l.With(key, value)}
}

func (s *slogLogger) WithFields(fields map[string]interface{}) Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &slogLogger{l: s.l.With(args...)}
}

// Package-level helpers log through the root logger

func Debug(msg string, args ...any) { base().Debug(msg, args...) }
func Info(msg string, args ...any)  { base().Info(msg, args...) }
func Warn(msg string, args ...any)  { base().Warn(msg, args...) }
func Error(msg string, args ...any) { base().Error(msg, args...) }

func WithField(key string, value any) Logger {
	return base().WithField(key, value)
}

func WithFields(fields map[string]interface{}) Logger {
	return base().WithFields(fields)
}
