// FILE: lixenwraith/ringlog/stats.go
package log

// Stats is a point-in-time snapshot of logger counters
type Stats struct {
	Phase         Phase
	CurrentFile   string // Empty when no instance is running
	Buffered      int    // Claimed entries not yet drained
	Capacity      int    // Usable ring slots
	Processed     uint64
	Dropped       uint64
	ShutdownDrops uint64
	Rotations     uint64
	Archived      uint64
	Deleted       uint64
	Inits         uint64
}

// Stats returns current counters. Lifetime counters accumulate across re-initialization.
func (l *Logger) Stats() Stats {
	s := Stats{
		Processed:     l.state.TotalLogsProcessed.Load(),
		Dropped:       l.state.DroppedLogs.Load(),
		ShutdownDrops: l.state.ShutdownDrops.Load(),
		Rotations:     l.state.TotalRotations.Load(),
		Archived:      l.state.TotalArchived.Load(),
		Deleted:       l.state.TotalDeletions.Load(),
		Inits:         l.state.TotalInits.Load(),
	}

	if inst := l.active.Load(); inst != nil {
		s.Phase = inst.phase()
		s.CurrentFile = inst.sink.currentPath()
		s.Buffered = inst.ring.len()
		s.Capacity = int(inst.ring.size) - 1
	}
	return s
}
