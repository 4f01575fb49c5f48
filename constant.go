// FILE: lixenwraith/ringlog/constant.go
package log

import (
	"time"
)

// Log level constants
const (
	LevelDebug int64 = -4
	LevelInfo  int64 = 0
	LevelWarn  int64 = 4
	LevelError int64 = 8
)

// Ring buffer
const (
	// Smallest usable ring; one slot always stays empty to tell full from empty
	minBufferSize int64 = 2
	// Producer back-off while the ring is full
	claimRetryInterval = time.Millisecond
)

// Storage
const (
	// Size of the bufio.Writer in front of the log file
	sinkBufferSize = 64 * 1024
	// Size multiplier for KB
	sizeMultiplier = 1024
	// Directory and file permissions
	dirPerm  = 0755
	filePerm = 0644
)

// Timers
const (
	// Minimum wait time used throughout the package
	minWaitTime = 10 * time.Millisecond
	// Extra time granted to the drain loop past the shutdown deadline before Finalize gives up
	shutdownGrace = 100 * time.Millisecond
	// Entries drained between periodic sync checks under sustained load
	syncCheckEvery = 256
)

// Archiver
const (
	archiveQueueSize = 16
	checksumSuffix   = ".xxh3"
	tempSuffix       = ".tmp"
)
