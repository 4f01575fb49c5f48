// FILE: lixenwraith/ringlog/lifecycle_test.go
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizeIdempotent(t *testing.T) {
	logger, tmpDir := createTestLogger(t)

	logger.Info("before finalize")
	require.NoError(t, logger.Finalize())
	assert.Equal(t, PhaseStopped, logger.Phase())

	// Second call is a no-op
	require.NoError(t, logger.Finalize())
	require.NoError(t, logger.Finalize(10*time.Millisecond))

	// Entries after finalize are dropped without blocking
	logger.Info("after finalize")
	logger.Errorf("after %s", "finalize")

	got := messages(t, readLines(t, filepath.Join(tmpDir, "log.log")))
	assert.Equal(t, []string{"before finalize"}, got)
	assert.Error(t, logger.Flush(50*time.Millisecond))
}

func TestFinalizeBeforeInit(t *testing.T) {
	logger := NewLogger()
	assert.NoError(t, logger.Finalize())
	assert.Equal(t, PhaseStopped, logger.Phase())
}

func TestFinalizeDrainsPublished(t *testing.T) {
	logger, tmpDir := createTestLogger(t, func(c *Config) { c.BufferSize = 1024 })

	for i := 0; i < 1000; i++ {
		logger.Infof("entry %d", i)
	}
	require.NoError(t, logger.Finalize())

	got := messages(t, readLines(t, filepath.Join(tmpDir, "log.log")))
	require.Len(t, got, 1000)
	for i, msg := range got {
		assert.Equal(t, fmt.Sprintf("entry %d", i), msg)
	}
	assert.Equal(t, uint64(0), logger.Stats().ShutdownDrops)
}

func TestReinitSequencing(t *testing.T) {
	tmpDir := t.TempDir()
	logger := NewLogger()
	defer logger.Finalize()

	require.NoError(t, logger.Init(LevelInfo, tmpDir, "first", RotateNever))
	for i := 0; i < 100; i++ {
		logger.Infof("first %d", i)
	}

	// No flush: re-init alone must deliver the first instance's entries to its own file
	require.NoError(t, logger.Init(LevelInfo, tmpDir, "second", RotateNever))
	for i := 0; i < 100; i++ {
		logger.Infof("second %d", i)
	}
	require.NoError(t, logger.Finalize())

	first := messages(t, readLines(t, filepath.Join(tmpDir, "first.log")))
	second := messages(t, readLines(t, filepath.Join(tmpDir, "second.log")))
	require.Len(t, first, 100)
	require.Len(t, second, 100)
	for i := 0; i < 100; i++ {
		assert.Equal(t, fmt.Sprintf("first %d", i), first[i])
		assert.Equal(t, fmt.Sprintf("second %d", i), second[i])
	}
	assert.Equal(t, uint64(2), logger.Stats().Inits)
}

func TestReinitBuildsFreshInstance(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	before := logger.active.Load()

	require.NoError(t, logger.Init(LevelInfo, tmpDir, "log", RotateNever))
	after := logger.active.Load()

	require.NotNil(t, after)
	assert.NotSame(t, before, after)
	assert.NotSame(t, before.ring, after.ring)
	assert.NotSame(t, before.sink, after.sink)
	assert.Equal(t, PhaseStopped, before.phase())
	assert.Equal(t, PhaseRunning, after.phase())
}

func TestInitAfterFinalize(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	logger.Info("one")
	require.NoError(t, logger.Finalize())

	require.NoError(t, logger.Init(LevelInfo, tmpDir, "log", RotateNever))
	logger.Info("two")
	require.NoError(t, logger.Finalize())

	// Same path is reopened in append mode
	got := messages(t, readLines(t, filepath.Join(tmpDir, "log.log")))
	assert.Equal(t, []string{"one", "two"}, got)
}

func TestFinalizeClosesFile(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	inst := logger.active.Load()
	logger.Info("x")
	require.NoError(t, logger.Finalize())

	assert.Nil(t, inst.sink.file)

	// The file is complete on disk and removable
	require.NoError(t, os.Remove(filepath.Join(tmpDir, "log.log")))
}

func TestInitActivatesInstance(t *testing.T) {
	tmpDir := t.TempDir()
	logger := NewLogger()
	defer logger.Finalize()

	require.NoError(t, logger.Init(LevelInfo, tmpDir, "app", RotateNever))
	assert.Equal(t, PhaseRunning, logger.Phase())
	require.NotNil(t, logger.active.Load())

	logger.Info("hello")
	require.NoError(t, logger.Flush(time.Second))
	require.NoError(t, logger.Finalize())

	assert.Equal(t, PhaseStopped, logger.Phase())
	assert.Nil(t, logger.active.Load())
	assert.Equal(t, []string{"hello"}, messages(t, readLines(t, filepath.Join(tmpDir, "app.log"))))
}

// TestFinalizeReportsDraining checks that the draining phase is visible while a claimed slot holds shutdown back
func TestFinalizeReportsDraining(t *testing.T) {
	logger, tmpDir := createTestLogger(t)
	inst := logger.active.Load()

	ticket, ok := inst.ring.tryClaim()
	require.True(t, ok)

	finalized := make(chan error, 1)
	go func() { finalized <- logger.Finalize(2 * time.Second) }()

	require.Eventually(t, func() bool { return logger.Phase() == PhaseDraining }, time.Second, time.Millisecond)
	assert.Equal(t, PhaseDraining, logger.Stats().Phase)

	inst.ring.publish(ticket, inst.formatter.Encode(LevelInfo, time.Now(), "late"))

	select {
	case err := <-finalized:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("finalize did not return after the slot was published")
	}
	assert.Equal(t, PhaseStopped, logger.Phase())
	assert.Equal(t, []string{"late"}, messages(t, readLines(t, filepath.Join(tmpDir, "log.log"))))
	assert.Equal(t, uint64(0), logger.Stats().ShutdownDrops)
}

// TestShutdownAccountsEveryEntry checks that entries racing Finalize are either written or counted
func TestShutdownAccountsEveryEntry(t *testing.T) {
	const producers = 4
	const perProducer = 2000

	logger, _ := createTestLogger(t)
	inst := logger.active.Load()
	line := inst.formatter.Encode(LevelInfo, time.Now(), "racing")

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				logger.submit(inst, line)
			}
		}()
	}

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, logger.Finalize())
	wg.Wait()

	stats := logger.Stats()
	assert.Equal(t, uint64(producers*perProducer), stats.Processed+stats.Dropped+stats.ShutdownDrops)
}

// gatedClock blocks Now while armed
type gatedClock struct {
	mu   sync.Mutex
	gate chan struct{}
}

func (c *gatedClock) Now() time.Time {
	c.mu.Lock()
	gate := c.gate
	c.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return time.Now()
}

func (c *gatedClock) arm() {
	c.mu.Lock()
	c.gate = make(chan struct{})
	c.mu.Unlock()
}

func (c *gatedClock) open() {
	c.mu.Lock()
	close(c.gate)
	c.gate = nil
	c.mu.Unlock()
}

// TestStopTimeoutReleasesLater checks that a drain loop outliving Finalize still gets its archiver stopped when it returns
func TestStopTimeoutReleasesLater(t *testing.T) {
	clock := &gatedClock{}
	logger := NewLogger(WithClock(clock), WithDiagnostics(io.Discard))

	cfg := DefaultConfig()
	cfg.Directory = t.TempDir()
	cfg.Rotation = "hourly"
	cfg.Compression = "gzip"
	require.NoError(t, logger.ApplyConfig(cfg))

	inst := suspendDrain(t, logger)
	require.NotNil(t, inst.archiver)
	logger.Info("held")

	// The drain loop blocks in its rotation check once it resumes
	clock.arm()
	err := logger.Finalize(10 * time.Millisecond)
	require.Error(t, err)
	assert.Nil(t, logger.active.Load())

	select {
	case <-inst.done:
		t.Fatal("drain loop returned while the clock was blocked")
	default:
	}

	clock.open()
	select {
	case <-inst.done:
	case <-time.After(2 * time.Second):
		t.Fatal("drain loop did not return")
	}
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-inst.archiver.jobs:
			return !ok
		default:
			return false
		}
	}, time.Second, time.Millisecond, "archiver queue must be closed once the drain loop returns")
}
