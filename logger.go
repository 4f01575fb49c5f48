// FILE: lixenwraith/ringlog/logger.go
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Logger is an asynchronous file logger. Producers encode entries on their own
// goroutine and hand them to a bounded ring; one drain goroutine per
// initialization writes them to a time-rotated file.
type Logger struct {
	currentConfig atomic.Value // stores *Config
	active        atomic.Pointer[instance]
	state         State
	initMu        sync.Mutex

	clock  Clock
	diag   io.Writer
	diagMu sync.Mutex
}

// Option customizes a Logger at construction
type Option func(*Logger)

// WithClock replaces the default cached wall clock, used for both timestamps and rotation
func WithClock(c Clock) Option {
	return func(l *Logger) {
		l.clock = c
	}
}

// WithDiagnostics redirects internal error reporting, stderr by default
func WithDiagnostics(w io.Writer) Option {
	return func(l *Logger) {
		if w != nil {
			l.diag = w
		}
	}
}

// NewLogger creates a stopped Logger with default settings
func NewLogger(opts ...Option) *Logger {
	l := &Logger{
		diag: os.Stderr,
	}
	l.currentConfig.Store(DefaultConfig())

	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Init (re)initializes the logger with a minimum level, output directory,
// file prefix and rotation policy, keeping all other settings.
// A running instance is finalized first, so its entries land in its own file.
func (l *Logger) Init(level int64, directory, prefix string, rotation Rotation) error {
	cfg := l.GetConfig()
	cfg.Level = level
	cfg.Directory = directory
	cfg.Name = prefix
	cfg.Rotation = rotation.String()
	return l.ApplyConfig(cfg)
}

// ApplyConfig validates cfg and re-initializes the logger with it
func (l *Logger) ApplyConfig(cfg *Config) error {
	if cfg == nil {
		return fmtErrorf("configuration cannot be nil")
	}

	if err := cfg.Validate(); err != nil {
		return fmtErrorf("invalid configuration: %w", err)
	}

	l.initMu.Lock()
	defer l.initMu.Unlock()

	return l.applyConfig(cfg.Clone())
}

// applyConfig is the internal implementation for applying configuration, assuming initMu is held
func (l *Logger) applyConfig(cfg *Config) error {
	if err := l.finalize(); err != nil {
		// The old drain loop owns only its own ring and file, so the new instance can still start
		l.internalLog("warning - previous instance did not stop cleanly: %v\n", err)
	}

	l.currentConfig.Store(cfg)
	l.start(l.newInstance(cfg))
	return nil
}

// GetConfig returns a copy of current configuration
func (l *Logger) GetConfig() *Config {
	return l.getConfig().Clone()
}

// Finalize stops accepting entries, drains what was published, then syncs and
// closes the file. Without a timeout the configured shutdown_timeout_ms applies.
// It is a no-op when the logger is not running; a later Init starts it again.
func (l *Logger) Finalize(timeout ...time.Duration) error {
	l.initMu.Lock()
	defer l.initMu.Unlock()

	return l.finalize(timeout...)
}

func (l *Logger) finalize(timeout ...time.Duration) error {
	inst := l.active.Load()
	if inst == nil {
		return nil
	}

	effectiveTimeout := inst.cfg.shutdownTimeout()
	if len(timeout) > 0 && timeout[0] > 0 {
		effectiveTimeout = timeout[0]
	}
	// The instance stays reachable while draining so Phase and Stats report it
	err := inst.stop(effectiveTimeout)
	l.active.CompareAndSwap(inst, nil)
	return err
}

// Flush waits until every entry submitted before the call is written and synced to disk
func (l *Logger) Flush(timeout time.Duration) error {
	inst := l.active.Load()
	if inst == nil || !inst.running.Load() {
		return fmtErrorf("logger not initialized or already finalized")
	}

	req := flushRequest{
		target: inst.ring.claimed(),
		done:   make(chan error, 1),
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case inst.flushRequests <- req:
		// Request sent
	case <-inst.done:
		return fmtErrorf("logger finalized during flush")
	case <-timer.C:
		return fmtErrorf("failed to send flush request to processor (possible deadlock or high load)")
	}

	select {
	case err := <-req.done:
		return err
	case <-inst.done:
		// The drain loop answers outstanding requests before exiting
		select {
		case err := <-req.done:
			return err
		default:
			return fmtErrorf("logger finalized during flush")
		}
	case <-timer.C:
		return fmtErrorf("timeout waiting for flush confirmation (%v)", timeout)
	}
}

// Phase reports the lifecycle phase of the current instance
func (l *Logger) Phase() Phase {
	inst := l.active.Load()
	if inst == nil {
		return PhaseStopped
	}
	return inst.phase()
}

// getConfig returns the current configuration (thread-safe)
func (l *Logger) getConfig() *Config {
	return l.currentConfig.Load().(*Config)
}

// internalLog handles writing internal logger diagnostics, never into the log file
func (l *Logger) internalLog(format string, args ...any) {
	if !l.getConfig().InternalErrorsToStderr {
		return
	}

	// Ensure consistent "log: " prefix
	if !strings.HasPrefix(format, "log: ") {
		format = "log: " + format
	}
	msg := fmt.Sprintf(format, args...)
	// Errors built with fmtErrorf already carry the prefix
	msg = strings.Replace(msg, "log: log: ", "log: ", 1)

	l.diagMu.Lock()
	defer l.diagMu.Unlock()
	io.WriteString(l.diag, msg)
}
