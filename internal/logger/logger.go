// Package logger is the process-wide structured logger. Calls made before
// Init go to stderr at info level.
package logger

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var current atomic.Pointer[log.Logger]

func init() {
	current.Store(New(os.Stderr, "info", false))
}

// New builds a logger writing to w. level is one of debug, info, warn,
// error; unknown values fall back to info. json switches to the JSON
// formatter used in production.
func New(w io.Writer, level string, json bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           ParseLevel(level),
	})
	if json {
		l.SetFormatter(log.JSONFormatter)
	}
	return l
}

// Init replaces the global logger.
func Init(l *log.Logger) {
	if l != nil {
		current.Store(l)
	}
}

func Get() *log.Logger {
	return current.Load()
}

func ParseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Debug writes a message at DEBUG level.
func Debug(message string, keyvals ...any) { Get().Debug(message, keyvals...) }

// Info writes a message at INFO level.
func Info(message string, keyvals ...any) { Get().Info(message, keyvals...) }

// Warn writes a message at WARN level.
func Warn(message string, keyvals ...any) { Get().Warn(message, keyvals...) }

// Error writes a message at ERROR level.
func Error(message string, keyvals ...any) { Get().Error(message, keyvals...) }

// Fatal writes a message at FATAL level and exits.
func Fatal(message string, keyvals ...any) { Get().Fatal(message, keyvals...) }
