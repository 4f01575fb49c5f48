// FILE: lixenwraith/ringlog/record.go
package log

import (
	"time"
)

// acquire returns the running instance if an entry at level would be kept
func (l *Logger) acquire(level int64) *instance {
	inst := l.active.Load()
	if inst == nil || !inst.running.Load() {
		return nil
	}
	if !validLevel(level) || level < inst.cfg.Level {
		return nil
	}
	return inst
}

// log encodes message on the calling goroutine and submits the finished line
func (l *Logger) log(inst *instance, level int64, message string) {
	line := inst.formatter.Encode(level, inst.clock.Now(), message)
	l.submit(inst, line)
}

// submit claims a slot and publishes line into it. While the ring is full the
// producer backs off and retries; it gives up only once the instance stops.
func (l *Logger) submit(inst *instance, line []byte) {
	for {
		if ticket, ok := inst.ring.tryClaim(); ok {
			inst.ring.publish(ticket, line)
			return
		}
		if !inst.running.Load() {
			l.state.ShutdownDrops.Add(1)
			return
		}
		time.Sleep(claimRetryInterval)
	}
}
