// FILE: lixenwraith/ringlog/ring_test.go
package log

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingCapacity(t *testing.T) {
	rb := newRingBuffer(4)

	for i := 0; i < 3; i++ {
		_, ok := rb.tryClaim()
		require.True(t, ok, "claim %d", i)
	}
	_, ok := rb.tryClaim()
	assert.False(t, ok, "one slot must stay empty")
	assert.Equal(t, 3, rb.len())
}

func TestRingMinimumSize(t *testing.T) {
	rb := newRingBuffer(0)
	assert.Equal(t, uint64(minBufferSize), rb.size)

	_, ok := rb.tryClaim()
	require.True(t, ok)
	_, ok = rb.tryClaim()
	assert.False(t, ok)
}

func TestRingStatuses(t *testing.T) {
	rb := newRingBuffer(4)

	_, _, status := rb.tryTake()
	assert.Equal(t, takeEmpty, status)

	first, ok := rb.tryClaim()
	require.True(t, ok)
	second, ok := rb.tryClaim()
	require.True(t, ok)

	// Publishing out of order must not let the consumer skip the older slot
	rb.publish(second, []byte("second"))
	ticket, _, status := rb.tryTake()
	assert.Equal(t, takeNotReady, status)
	assert.Equal(t, first, ticket)

	rb.publish(first, []byte("first"))
	ticket, data, status := rb.tryTake()
	require.Equal(t, takeReady, status)
	assert.Equal(t, first, ticket)
	assert.Equal(t, "first", string(data))
	rb.release(ticket)

	ticket, data, status = rb.tryTake()
	require.Equal(t, takeReady, status)
	assert.Equal(t, second, ticket)
	assert.Equal(t, "second", string(data))
	rb.release(ticket)

	_, _, status = rb.tryTake()
	assert.Equal(t, takeEmpty, status)
	assert.Equal(t, rb.claimed(), rb.drained())
}

func TestRingReleaseClearsSlot(t *testing.T) {
	rb := newRingBuffer(2)

	ticket, ok := rb.tryClaim()
	require.True(t, ok)
	rb.publish(ticket, []byte("x"))
	rb.release(ticket)

	s := &rb.slots[ticket%rb.size]
	assert.Nil(t, s.payload)
	assert.False(t, s.ready.Load())

	// Wraps around onto the freed slot
	for i := 0; i < 10; i++ {
		ticket, ok = rb.tryClaim()
		require.True(t, ok)
		rb.publish(ticket, []byte{byte(i)})
		got, data, status := rb.tryTake()
		require.Equal(t, takeReady, status)
		require.Equal(t, ticket, got)
		require.Equal(t, []byte{byte(i)}, data)
		rb.release(got)
	}
}

func TestRingConcurrentClaims(t *testing.T) {
	const producers = 8
	const perProducer = 500

	rb := newRingBuffer(producers*perProducer + 1)

	var wg sync.WaitGroup
	tickets := make(chan uint64, producers*perProducer)
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				ticket, ok := rb.tryClaim()
				if !ok {
					t.Error("unexpected full ring")
					return
				}
				rb.publish(ticket, []byte("x"))
				tickets <- ticket
			}
		}()
	}
	wg.Wait()
	close(tickets)

	seen := make(map[uint64]bool)
	for ticket := range tickets {
		assert.False(t, seen[ticket], "ticket %d claimed twice", ticket)
		seen[ticket] = true
	}
	assert.Len(t, seen, producers*perProducer)

	// Single consumer drains in claim order
	for i := 0; i < producers*perProducer; i++ {
		ticket, _, status := rb.tryTake()
		require.Equal(t, takeReady, status)
		require.Equal(t, uint64(i), ticket)
		rb.release(ticket)
	}
}

func TestRingSeal(t *testing.T) {
	rb := newRingBuffer(8)

	first, ok := rb.tryClaim()
	require.True(t, ok)
	_, ok = rb.tryClaim()
	require.True(t, ok)

	assert.Equal(t, uint64(2), rb.seal())
	assert.Equal(t, uint64(2), rb.seal(), "sealing twice keeps the same head")

	_, ok = rb.tryClaim()
	assert.False(t, ok, "no claim after seal")
	assert.Equal(t, uint64(2), rb.claimed())
	assert.Equal(t, 2, rb.len())

	// Slots claimed before the seal still drain normally
	rb.publish(first, []byte("a"))
	ticket, data, status := rb.tryTake()
	require.Equal(t, takeReady, status)
	assert.Equal(t, "a", string(data))
	rb.release(ticket)

	_, _, status = rb.tryTake()
	assert.Equal(t, takeNotReady, status)
}
