// FILE: lixenwraith/ringlog/ring.go
package log

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// takeStatus is the outcome of a consumer read attempt
type takeStatus int

const (
	takeEmpty    takeStatus = iota // No slot claimed past tail
	takeNotReady                   // Tail slot claimed but its payload is not published yet
	takeReady                      // Tail slot holds a published payload
)

type slot struct {
	ready   atomic.Bool
	payload []byte
}

// ringBuffer is a bounded multi-producer single-consumer queue of encoded lines.
//
// head and tail are monotonically increasing claim counters; a counter maps to
// slot counter%size. One slot is always left empty, so at most size-1 entries
// are in flight. Claim order is FIFO order: the consumer never skips an
// unpublished slot.
// sealedBit marks head once the consumer has stopped accepting claims
const sealedBit uint64 = 1 << 63

type ringBuffer struct {
	_     cpu.CacheLinePad
	head  atomic.Uint64 // Next counter to claim, advanced by producers via CAS; high bit is sealedBit
	_     cpu.CacheLinePad
	tail  atomic.Uint64 // Next counter to drain, advanced only by the consumer
	_     cpu.CacheLinePad
	size  uint64
	slots []slot
}

func newRingBuffer(size int64) *ringBuffer {
	if size < minBufferSize {
		size = minBufferSize
	}
	return &ringBuffer{
		size:  uint64(size),
		slots: make([]slot, size),
	}
}

// tryClaim reserves the next slot for a producer. It fails when the ring is full or sealed.
func (rb *ringBuffer) tryClaim() (uint64, bool) {
	for {
		// tail is read first so that tail <= head holds for the pair
		tail := rb.tail.Load()
		head := rb.head.Load()
		if head&sealedBit != 0 || head-tail >= rb.size-1 {
			return 0, false
		}
		if rb.head.CompareAndSwap(head, head+1) {
			return head, true
		}
	}
}

// publish hands a claimed slot its payload. The payload must not be modified afterwards.
func (rb *ringBuffer) publish(ticket uint64, payload []byte) {
	s := &rb.slots[ticket%rb.size]
	s.payload = payload
	s.ready.Store(true)
}

// seal stops all further claims and returns the final head counter.
// Every entry below it was claimed before the seal; none can be claimed after.
func (rb *ringBuffer) seal() uint64 {
	for {
		head := rb.head.Load()
		if head&sealedBit != 0 {
			return head &^ sealedBit
		}
		if rb.head.CompareAndSwap(head, head|sealedBit) {
			return head
		}
	}
}

// tryTake inspects the tail slot without consuming it. Consumer only.
func (rb *ringBuffer) tryTake() (uint64, []byte, takeStatus) {
	tail := rb.tail.Load()
	if tail == rb.claimed() {
		return tail, nil, takeEmpty
	}
	s := &rb.slots[tail%rb.size]
	if !s.ready.Load() {
		return tail, nil, takeNotReady
	}
	return tail, s.payload, takeReady
}

// release frees the tail slot for reuse. Consumer only.
func (rb *ringBuffer) release(ticket uint64) {
	s := &rb.slots[ticket%rb.size]
	s.payload = nil
	s.ready.Store(false)
	rb.tail.Store(ticket + 1)
}

// claimed returns the head counter: every entry claimed so far has a counter below it
func (rb *ringBuffer) claimed() uint64 {
	return rb.head.Load() &^ sealedBit
}

// drained returns the tail counter: every entry below it has been consumed
func (rb *ringBuffer) drained() uint64 {
	return rb.tail.Load()
}

// len returns the number of claimed, not yet drained entries
func (rb *ringBuffer) len() int {
	tail := rb.tail.Load()
	return int(rb.claimed() - tail)
}
