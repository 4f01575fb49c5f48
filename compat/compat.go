// FILE: lixenwraith/ringlog/compat/compat.go
// Package compat adapts a ringlog logger to the logger interfaces of third-party servers.
package compat

import (
	"time"
)

// Logger is the part of *log.Logger the adapters use
type Logger interface {
	Logf(level int64, format string, args ...any)
	Flush(timeout time.Duration) error
}
