// FILE: lixenwraith/ringlog/cmd/stress/main.go
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lixenwraith/ringlog"
)

const (
	numWorkers       = 8
	entriesPerWorker = 10000
	maxMessageSize   = 512
)

const configFile = "stress_config.toml"

// Example TOML content for stress test; command line arguments such as
// --log.buffer_size=64 override it
var tomlContent = `
# Example stress_config.toml
[log]
  level = -4 # Debug
  name = "stress_test"
  directory = "./logs"
  extension = "log"
  rotation = "minutely"
  buffer_size = 256 # Small ring to exercise backpressure
  poll_interval_ms = 5
  flush_interval_ms = 50
  shutdown_timeout_ms = 5000
  sanitization = "txt"
`

var levels = []int64{
	log.LevelDebug,
	log.LevelInfo,
	log.LevelWarn,
	log.LevelError,
}

var lineRe = regexp.MustCompile(`^\S+ \[(DEBUG|INFO|WARN|ERROR)\] w=(\d+) seq=(\d+) [0-9A-Za-z ]*$`)

func generateRandomMessage(r *rand.Rand, size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[r.Intn(len(chars))])
	}
	return sb.String()
}

// worker logs its sequence numbers in order so the output can be checked per worker
func worker(logger *log.Logger, id int, stop <-chan struct{}, wg *sync.WaitGroup, written *atomic.Int64) {
	defer wg.Done()
	r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)))

	for seq := 0; seq < entriesPerWorker; seq++ {
		select {
		case <-stop:
			return
		default:
		}
		level := levels[r.Intn(len(levels))]
		msg := generateRandomMessage(r, r.Intn(maxMessageSize)+1)
		logger.Logf(level, "w=%d seq=%d %s", id, seq, msg)
		written.Add(1)
	}
}

// verify reads every log file in dir and checks that each line is complete and
// that each worker's sequence numbers appear in order without gaps
func verify(dir, name, ext string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, name+"*."+ext))
	if err != nil {
		return 0, err
	}
	// Window suffixes sort chronologically
	sort.Strings(paths)

	next := make(map[int]int)
	total := 0
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return total, err
		}
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		lineNo := 0
		for scanner.Scan() {
			lineNo++
			m := lineRe.FindStringSubmatch(scanner.Text())
			if m == nil {
				f.Close()
				return total, fmt.Errorf("%s:%d: malformed line", path, lineNo)
			}
			var id, seq int
			fmt.Sscan(m[2], &id)
			fmt.Sscan(m[3], &seq)
			if seq != next[id] {
				f.Close()
				return total, fmt.Errorf("%s:%d: worker %d expected seq %d, got %d", path, lineNo, id, next[id], seq)
			}
			next[id]++
			total++
		}
		f.Close()
		if err := scanner.Err(); err != nil {
			return total, err
		}
	}
	return total, nil
}

func main() {
	fmt.Println("--- Logger Stress Test ---")

	// --- Setup Config ---
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write example config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created example config file: %s\n", configFile)
	}

	cfg, err := log.NewConfigFromFile(configFile, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Compression != "none" {
		fmt.Println("Compression enabled: closed windows are archived and skipped by verification.")
	}
	_ = os.RemoveAll(cfg.Directory) // Clean previous run's logs before starting

	// --- Initialize Logger ---
	logger := log.NewLogger()
	if err := logger.ApplyConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Logger initialized. Logs will be written to: %s\n", cfg.Directory)
	fmt.Printf("Starting stress test: %d workers, %d entries each, ring of %d slots.\n",
		numWorkers, entriesPerWorker, cfg.BufferSize)
	fmt.Println("Press Ctrl+C to stop early.")

	// --- Setup Workers and Signal Handling ---
	var wg sync.WaitGroup
	var written atomic.Int64
	stop := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\n[Signal Received] Stopping workers...")
		close(stop)
	}()

	startTime := time.Now()
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go worker(logger, i, stop, &wg, &written)
	}

	// --- Progress ---
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	ticker := time.NewTicker(500 * time.Millisecond)
progress:
	for {
		select {
		case <-done:
			break progress
		case <-ticker.C:
			s := logger.Stats()
			fmt.Printf("\rSubmitted: %d  Processed: %d  Buffered: %d/%d",
				written.Load(), s.Processed, s.Buffered, s.Capacity)
		}
	}
	ticker.Stop()
	duration := time.Since(startTime)

	fmt.Printf("\n--- Submission Finished ---")
	fmt.Printf("\nSubmitted %d entries in %v\n", written.Load(), duration.Round(time.Millisecond))
	if duration.Seconds() > 0 {
		fmt.Printf("Approximate entries/sec: %.2f\n", float64(written.Load())/duration.Seconds())
	}

	// --- Finalize Logger ---
	fmt.Println("Finalizing logger...")
	if err := logger.Finalize(10 * time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Logger finalize error: %v\n", err)
	}

	stats := logger.Stats()
	fmt.Printf("Processed: %d  Dropped: %d  Shutdown drops: %d  Rotations: %d  Archived: %d\n",
		stats.Processed, stats.Dropped, stats.ShutdownDrops, stats.Rotations, stats.Archived)

	// --- Verify Output ---
	if cfg.Compression != "none" {
		return
	}
	total, err := verify(cfg.Directory, cfg.Name, cfg.Extension)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Verification failed after %d lines: %v\n", total, err)
		os.Exit(1)
	}
	if int64(total) != written.Load() {
		fmt.Fprintf(os.Stderr, "Verification failed: %d lines on disk, %d submitted\n", total, written.Load())
		os.Exit(1)
	}
	fmt.Printf("Verified %d complete lines, ordered per worker.\n", total)
}
