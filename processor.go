// FILE: lixenwraith/ringlog/processor.go
package log

import (
	"errors"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/ringlog/formatter"
	"github.com/lixenwraith/ringlog/sanitizer"
)

// instance is one initialization of a Logger. Every Init builds a fresh one;
// instances never share a ring, a sink or rotation state.
type instance struct {
	cfg       *Config
	ring      *ringBuffer
	sink      *fileSink
	formatter *formatter.Formatter
	archiver  *archiver
	clock     Clock
	ownClock  *cachedClock // Stopped with the instance, nil for injected clocks

	rotation     Rotation
	lastBoundary time.Time // Drain loop only

	running  atomic.Bool  // Producers may submit
	phaseVal atomic.Int32 // Phase
	deadline atomic.Int64 // Unix nanos after which unpublished slots are abandoned

	suspended atomic.Bool // Drain loop holds off consuming while running
	paused    atomic.Bool // Drain loop has observed suspended

	flushRequests chan flushRequest
	done          chan struct{} // Closed when the drain loop returns
}

// flushRequest is confirmed once every entry claimed before it was made is on disk
type flushRequest struct {
	target uint64
	done   chan error
}

func (l *Logger) newInstance(cfg *Config) *instance {
	inst := &instance{
		cfg:           cfg,
		ring:          newRingBuffer(cfg.BufferSize),
		sink:          newFileSink(),
		rotation:      cfg.rotation(),
		flushRequests: make(chan flushRequest, 16),
		done:          make(chan struct{}),
	}

	if l.clock != nil {
		inst.clock = l.clock
	} else {
		inst.ownClock = newCachedClock()
		inst.clock = inst.ownClock
	}

	san := sanitizer.New().Policy(sanitizer.PolicyPreset(cfg.Sanitization))
	inst.formatter = formatter.New(san).
		TimestampFormat(cfg.TimestampFormat).
		MaxMessageBytes(int(cfg.MaxMessageKB * sizeMultiplier))

	inst.archiver = newArchiver(cfg, inst.clock, &l.state, l.internalLog)
	return inst
}

func (inst *instance) phase() Phase {
	return Phase(inst.phaseVal.Load())
}

// start opens the initial file and launches the drain loop. A file that cannot
// be opened is reported and leaves the instance running without a handle.
func (l *Logger) start(inst *instance) {
	now := inst.clock.Now()
	inst.lastBoundary = now

	path := fileNameFor(inst.cfg.Directory, inst.cfg.Name, inst.cfg.Extension, inst.rotation, now)
	if err := inst.sink.open(path); err != nil {
		l.internalLog("%v\n", err)
	}

	inst.phaseVal.Store(int32(PhaseRunning))
	inst.running.Store(true)
	l.active.Store(inst)
	l.state.TotalInits.Add(1)

	go l.processLogs(inst)
}

// stop signals the drain loop and waits for it. Entries published before the
// deadline are written; slots still unpublished at the deadline are abandoned.
func (inst *instance) stop(timeout time.Duration) error {
	inst.deadline.Store(time.Now().Add(timeout).UnixNano())
	inst.phaseVal.Store(int32(PhaseDraining))
	inst.running.Store(false)

	var err error
	timer := time.NewTimer(timeout + shutdownGrace)
	defer timer.Stop()

	select {
	case <-inst.done:
		inst.release()
	case <-timer.C:
		err = fmtErrorf("logger processor did not exit within timeout (%v)", timeout)
		// The drain loop still uses the clock and feeds the archiver
		go func() {
			<-inst.done
			inst.release()
		}()
	}
	return err
}

// release stops the archiver and the owned clock once the drain loop has returned
func (inst *instance) release() {
	inst.archiver.stop()
	if inst.ownClock != nil {
		inst.ownClock.Stop()
	}
}

// processLogs is the single consumer of the instance's ring
func (l *Logger) processLogs(inst *instance) {
	defer close(inst.done)

	cfg := inst.cfg
	pollInterval := cfg.pollInterval()
	lastSync := time.Now()
	drainedSinceCheck := 0
	sealed := false
	var pending []flushRequest

loop:
	for {
		pending = collectFlushRequests(inst, pending)

		if inst.suspended.Load() && inst.running.Load() {
			inst.paused.Store(true)
			time.Sleep(time.Millisecond)
			continue
		}
		inst.paused.Store(false)

		ticket, data, status := inst.ring.tryTake()
		switch status {
		case takeReady:
			l.checkRotation(inst)
			l.processLogRecord(inst, data)
			inst.ring.release(ticket)

			if len(pending) > 0 {
				pending = l.serveFlushRequests(inst, pending)
			}
			if drainedSinceCheck++; drainedSinceCheck >= syncCheckEvery {
				drainedSinceCheck = 0
				lastSync = l.periodicSync(inst, lastSync)
			}

		case takeNotReady:
			// A producer claimed the slot and is about to publish; FIFO forbids skipping it
			if !inst.running.Load() && time.Now().UnixNano() > inst.deadline.Load() {
				abandoned := inst.ring.seal() - ticket
				l.state.ShutdownDrops.Add(abandoned)
				l.internalLog("abandoned %d unpublished entries at shutdown deadline\n", abandoned)
				break loop
			}
			runtime.Gosched()

		case takeEmpty:
			if !inst.running.Load() {
				if sealed {
					break loop
				}
				// Producers that claimed before the seal still get drained
				inst.ring.seal()
				sealed = true
				continue
			}
			if err := inst.sink.flush(); err != nil {
				l.internalLog("%v\n", err)
			}
			pending = l.serveFlushRequests(inst, pending)
			lastSync = l.periodicSync(inst, lastSync)
			time.Sleep(pollInterval)
		}
	}

	// Final sync and close, then answer whoever is still waiting
	_, err := inst.sink.close()
	if err != nil {
		l.internalLog("%v\n", err)
	}
	pending = collectFlushRequests(inst, pending)
	for _, req := range pending {
		if err == nil && req.target > inst.ring.drained() {
			req.done <- fmtErrorf("logger finalized before flush target was reached")
			continue
		}
		req.done <- err
	}
	inst.phaseVal.Store(int32(PhaseStopped))
}

// processLogRecord writes one line, counting it as processed or dropped
func (l *Logger) processLogRecord(inst *instance, data []byte) {
	if err := inst.sink.append(data); err != nil {
		l.state.DroppedLogs.Add(1)
		if !errors.Is(err, errNoHandle) {
			l.internalLog("%v\n", err)
		}
		return
	}
	l.state.TotalLogsProcessed.Add(1)
}

func collectFlushRequests(inst *instance, pending []flushRequest) []flushRequest {
	for {
		select {
		case req := <-inst.flushRequests:
			pending = append(pending, req)
		default:
			return pending
		}
	}
}

// serveFlushRequests syncs once for all requests whose target has been drained
func (l *Logger) serveFlushRequests(inst *instance, pending []flushRequest) []flushRequest {
	if len(pending) == 0 {
		return pending
	}

	drained := inst.ring.drained()
	ready := false
	for _, req := range pending {
		if req.target <= drained {
			ready = true
			break
		}
	}
	if !ready {
		return pending
	}

	err := inst.sink.sync()
	if err != nil {
		l.internalLog("%v\n", err)
	}

	remaining := pending[:0]
	for _, req := range pending {
		if req.target <= drained {
			req.done <- err
		} else {
			remaining = append(remaining, req)
		}
	}
	return remaining
}

// periodicSync fsyncs the file when the flush interval has elapsed
func (l *Logger) periodicSync(inst *instance, lastSync time.Time) time.Time {
	if !inst.cfg.EnablePeriodicSync || time.Since(lastSync) < inst.cfg.flushInterval() {
		return lastSync
	}
	if err := inst.sink.sync(); err != nil {
		l.internalLog("%v\n", err)
	}
	return time.Now()
}
