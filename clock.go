// FILE: lixenwraith/ringlog/clock.go
package log

import (
	"time"

	timecache "github.com/agilira/go-timecache"
)

// Clock supplies wall time to producers (entry timestamps) and to the drain loop (rotation).
// Implementations must be safe for concurrent use.
type Clock interface {
	Now() time.Time
}

// cachedClock is the default Clock, a millisecond-resolution cached wall clock.
// It owns a ticker goroutine and must be stopped.
type cachedClock struct {
	tc *timecache.TimeCache
}

func newCachedClock() *cachedClock {
	return &cachedClock{tc: timecache.NewWithResolution(time.Millisecond)}
}

func (c *cachedClock) Now() time.Time {
	return c.tc.CachedTime()
}

func (c *cachedClock) Stop() {
	c.tc.Stop()
}
