// FILE: lixenwraith/ringlog/interface.go
package log

import (
	"github.com/lixenwraith/ringlog/formatter"
)

// Log writes message at level. Entries below the configured level, at an
// unknown level, or submitted while the logger is not running are dropped.
func (l *Logger) Log(level int64, message string) {
	if inst := l.acquire(level); inst != nil {
		l.log(inst, level, message)
	}
}

// Logf renders format with args and writes the result at level
func (l *Logger) Logf(level int64, format string, args ...any) {
	if inst := l.acquire(level); inst != nil {
		l.log(inst, level, formatter.Sprintf(format, args...))
	}
}

// LogWide writes a UTF-16 message, optionally NUL-terminated.
// Input that is not valid UTF-16 is logged as an empty message.
func (l *Logger) LogWide(level int64, message []uint16) {
	if inst := l.acquire(level); inst != nil {
		msg, _ := formatter.FromUTF16(message)
		l.log(inst, level, msg)
	}
}

// LogfWide is Logf with a UTF-16 format string
func (l *Logger) LogfWide(level int64, format []uint16, args ...any) {
	if inst := l.acquire(level); inst != nil {
		f, ok := formatter.FromUTF16(format)
		if !ok {
			l.log(inst, level, "")
			return
		}
		l.log(inst, level, formatter.Sprintf(f, args...))
	}
}

// LogUTF32 writes a UTF-32 message, optionally NUL-terminated
func (l *Logger) LogUTF32(level int64, message []rune) {
	if inst := l.acquire(level); inst != nil {
		msg, _ := formatter.FromUTF32(message)
		l.log(inst, level, msg)
	}
}

// Debug logs a message at debug level
func (l *Logger) Debug(args ...any) {
	l.logArgs(LevelDebug, args)
}

// Info logs a message at info level
func (l *Logger) Info(args ...any) {
	l.logArgs(LevelInfo, args)
}

// Warn logs a message at warning level
func (l *Logger) Warn(args ...any) {
	l.logArgs(LevelWarn, args)
}

// Error logs a message at error level
func (l *Logger) Error(args ...any) {
	l.logArgs(LevelError, args)
}

// Debugf logs a formatted message at debug level
func (l *Logger) Debugf(format string, args ...any) {
	l.Logf(LevelDebug, format, args...)
}

// Infof logs a formatted message at info level
func (l *Logger) Infof(format string, args ...any) {
	l.Logf(LevelInfo, format, args...)
}

// Warnf logs a formatted message at warning level
func (l *Logger) Warnf(format string, args ...any) {
	l.Logf(LevelWarn, format, args...)
}

// Errorf logs a formatted message at error level
func (l *Logger) Errorf(format string, args ...any) {
	l.Logf(LevelError, format, args...)
}

func (l *Logger) logArgs(level int64, args []any) {
	if inst := l.acquire(level); inst != nil {
		l.log(inst, level, formatter.Args(args...))
	}
}
