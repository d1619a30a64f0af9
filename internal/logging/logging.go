// Package logging provides the slog wrapper shared by the daemon and the
// client. It adds one thing the stdlib handler doesn't have out of the
// box: an "audit" tag, used by the authorization gate and every mutating
// daemon method, so operators can grep audit records out of the regular
// application log.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with printf-style helpers and an audit tag.
type Logger struct {
	logger *slog.Logger
}

// Log is the process-wide logger instance. Reconfigure it with Configure
// during daemon/client startup before any other package logs through it.
var Log = &Logger{
	logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})),
}

// Level names accepted by configuration, matching the level names spec.md
// §6 lists for logging.level.
const (
	LevelCritical = "CRITICAL"
	LevelError    = "ERROR"
	LevelWarning  = "WARNING"
	LevelInfo     = "INFO"
	LevelDebug    = "DEBUG"
	LevelNotset   = "NOTSET"
)

// ParseLevel converts a spec-style level name into a slog.Level. Unknown
// values fall back to Info.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(name) {
	case LevelCritical, LevelError:
		return slog.LevelError
	case LevelWarning:
		return slog.LevelWarn
	case LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Configure replaces the global logger with one at the given level,
// writing to stderr as daemons conventionally do under systemd.
func Configure(level string) {
	Log = &Logger{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: ParseLevel(level),
		})),
	}
}

// Infof logs an info-level message with formatting.
func (l *Logger) Infof(format string, args ...any) {
	l.logger.Info(sprintf(format, args...))
}

// Warnf logs a warning-level message with formatting.
func (l *Logger) Warnf(format string, args ...any) {
	l.logger.Warn(sprintf(format, args...))
}

// Errorf logs an error-level message with formatting.
func (l *Logger) Errorf(format string, args ...any) {
	l.logger.Error(sprintf(format, args...))
}

// Debugf logs a debug-level message with formatting.
func (l *Logger) Debugf(format string, args ...any) {
	l.logger.Debug(sprintf(format, args...))
}

// Audit logs an info-level message tagged audit=true. Every daemon
// mutation goes through this, never through Infof directly, so the tag
// can't be forgotten (spec.md §4.G).
func (l *Logger) Audit(format string, args ...any) {
	l.logger.Info(sprintf(format, args...), slog.Bool("audit", true))
}

// AuditWarn logs a warning-level message tagged audit=true, used for
// authorization failures (spec.md §4.F).
func (l *Logger) AuditWarn(format string, args ...any) {
	l.logger.Warn(sprintf(format, args...), slog.Bool("audit", true))
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
