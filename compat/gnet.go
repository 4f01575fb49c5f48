// FILE: lixenwraith/ringlog/compat/gnet.go
package compat

import (
	"fmt"
	"os"
	"time"

	"github.com/lixenwraith/ringlog"
	"github.com/panjf2000/gnet/v2/pkg/logging"
)

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter implements gnet's logging.Logger on top of a ringlog logger
type GnetAdapter struct {
	logger       Logger
	prefix       string
	fatalHandler func(msg string) // Customizable fatal behavior
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(logger Logger, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		logger: logger,
		prefix: "gnet: ",
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// WithGnetPrefix replaces the "gnet: " message prefix
func WithGnetPrefix(prefix string) GnetOption {
	return func(a *GnetAdapter) {
		a.prefix = prefix
	}
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.logger.Logf(log.LevelDebug, "%s%s", a.prefix, fmt.Sprintf(format, args...))
}

// Infof logs at info level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.logger.Logf(log.LevelInfo, "%s%s", a.prefix, fmt.Sprintf(format, args...))
}

// Warnf logs at warn level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.logger.Logf(log.LevelWarn, "%s%s", a.prefix, fmt.Sprintf(format, args...))
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.logger.Logf(log.LevelError, "%s%s", a.prefix, fmt.Sprintf(format, args...))
}

// Fatalf logs at error level and triggers fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.logger.Logf(log.LevelError, "%sfatal: %s", a.prefix, msg)

	// Ensure log is on disk before exit
	_ = a.logger.Flush(100 * time.Millisecond)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}
