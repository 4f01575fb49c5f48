// FILE: example/reconfig/main.go
package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/ringlog"
)

// Simulate rapid reconfiguration
func main() {
	var count atomic.Int64

	logger := log.NewLogger()

	// Initialize the logger with defaults first
	err := logger.Init(log.LevelInfo, "./logs", "reconfig", log.RotateNever)
	if err != nil {
		fmt.Printf("Initial Init error: %v\n", err)
		return
	}

	// Log something constantly
	stop := make(chan struct{})
	go func() {
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			logger.Info("Test log", i)
			count.Add(1)
			time.Sleep(time.Millisecond)
		}
	}()

	// Trigger multiple reconfigurations rapidly, each one drains the previous ring
	for i := 0; i < 10; i++ {
		bufSize := fmt.Sprintf("buffer_size=%d", 100*(i+1))
		if err := logger.ApplyConfigString(bufSize); err != nil {
			fmt.Printf("Reconfig error: %v\n", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(500 * time.Millisecond)
	close(stop)

	// Gracefully shut down the logger
	if err := logger.Finalize(time.Second); err != nil {
		fmt.Printf("Finalize error: %v\n", err)
	}

	stats := logger.Stats()
	fmt.Printf("Attempted: %d  Processed: %d  Dropped: %d  Shutdown drops: %d  Inits: %d\n",
		count.Load(), stats.Processed, stats.Dropped, stats.ShutdownDrops, stats.Inits)
}
