// FILE: lixenwraith/ringlog/state.go
package log

import (
	"sync/atomic"
)

// Phase is the lifecycle position of a logger instance
type Phase int32

const (
	PhaseStopped  Phase = iota // No instance, or the drain loop has exited
	PhaseRunning               // Accepting and draining entries
	PhaseDraining              // Stop requested, writing out what was published
)

func (p Phase) String() string {
	switch p {
	case PhaseStopped:
		return "stopped"
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	default:
		return "unknown"
	}
}

// State holds the lifetime counters of a Logger; they survive re-initialization
type State struct {
	TotalLogsProcessed atomic.Uint64 // Lines handed to the file
	DroppedLogs        atomic.Uint64 // Lines lost to a missing handle or a write error
	ShutdownDrops      atomic.Uint64 // Entries abandoned because their instance stopped
	TotalRotations     atomic.Uint64 // Window changes
	TotalArchived      atomic.Uint64 // Closed windows compressed
	TotalDeletions     atomic.Uint64 // Files removed by retention
	TotalInits         atomic.Uint64 // Instances started
}
