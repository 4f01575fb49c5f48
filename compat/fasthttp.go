// FILE: lixenwraith/ringlog/compat/fasthttp.go
package compat

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/ringlog"
	"github.com/valyala/fasthttp"
)

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// FastHTTPAdapter implements fasthttp's Logger on top of a ringlog logger
type FastHTTPAdapter struct {
	logger        Logger
	defaultLevel  int64
	levelDetector func(string) (int64, bool) // Detects a level from message content
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(logger Logger, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		logger:        logger,
		defaultLevel:  log.LevelInfo,
		levelDetector: DetectLogLevel,
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level used when detection finds nothing
func WithDefaultLevel(level int64) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect log level from message content
func WithLevelDetector(detector func(string) (int64, bool)) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected, ok := a.levelDetector(msg); ok {
			level = detected
		}
	}

	a.logger.Logf(level, "fasthttp: %s", msg)
}

// DetectLogLevel guesses a level from keywords in msg
func DetectLogLevel(msg string) (int64, bool) {
	msgLower := strings.ToLower(msg)

	switch {
	case containsAny(msgLower, "error", "failed", "fatal", "panic"):
		return log.LevelError, true
	case containsAny(msgLower, "warn", "deprecated"):
		return log.LevelWarn, true
	case containsAny(msgLower, "debug", "trace"):
		return log.LevelDebug, true
	default:
		return 0, false
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
