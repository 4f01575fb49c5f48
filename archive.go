// FILE: lixenwraith/ringlog/archive.go
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/xxh3"
)

// compressionExt maps each supported codec to the suffix appended to archived files
var compressionExt = map[string]string{
	"none":   "",
	"gzip":   ".gz",
	"zstd":   ".zst",
	"lz4":    ".lz4",
	"snappy": ".sz",
}

// archiveJob describes one closed rotation window
type archiveJob struct {
	closed string // File that was just closed
	active string // File now receiving entries, never touched
}

// archiver post-processes closed window files on its own goroutine so the
// drain loop never waits on compression or directory scans.
type archiver struct {
	compression string
	checksum    bool
	retention   time.Duration
	dir         string
	prefix      string

	clock Clock
	state *State
	diag  func(format string, args ...any)

	jobs chan archiveJob
	wg   sync.WaitGroup
	once sync.Once
}

// newArchiver returns nil when the configuration asks for no post-processing
func newArchiver(cfg *Config, clock Clock, state *State, diag func(string, ...any)) *archiver {
	if cfg.rotation() == RotateNever {
		return nil
	}
	if cfg.Compression == "none" && !cfg.Checksum && cfg.RetentionPeriodHrs <= 0 {
		return nil
	}

	a := &archiver{
		compression: cfg.Compression,
		checksum:    cfg.Checksum,
		retention:   cfg.retentionPeriod(),
		dir:         cfg.Directory,
		prefix:      cfg.Name,
		clock:       clock,
		state:       state,
		diag:        diag,
		jobs:        make(chan archiveJob, archiveQueueSize),
	}
	a.wg.Add(1)
	go a.run()
	return a
}

// submit queues a closed file without waiting. With the queue full the window
// stays on disk uncompressed and the skip is reported.
func (a *archiver) submit(job archiveJob) bool {
	if a == nil {
		return false
	}
	select {
	case a.jobs <- job:
		return true
	default:
		a.diag("archive queue full, leaving '%s' unarchived\n", job.closed)
		return false
	}
}

// stop drains the queue and waits for the worker
func (a *archiver) stop() {
	if a == nil {
		return
	}
	a.once.Do(func() { close(a.jobs) })
	a.wg.Wait()
}

func (a *archiver) run() {
	defer a.wg.Done()

	for job := range a.jobs {
		out := job.closed
		if a.compression != "none" {
			compressed, err := compressFile(job.closed, a.compression)
			if err != nil {
				a.diag("failed to compress log file '%s': %v\n", job.closed, err)
			} else {
				out = compressed
				a.state.TotalArchived.Add(1)
			}
		}

		if a.checksum {
			if err := writeChecksum(out); err != nil {
				a.diag("failed to write checksum for '%s': %v\n", out, err)
			}
		}

		if a.retention > 0 {
			if err := a.cleanExpired(job.active); err != nil {
				a.diag("%v\n", err)
			}
		}
	}
}

// compressFile writes path+ext through a temp file, then removes the source
func compressFile(path, codec string) (string, error) {
	ext, ok := compressionExt[codec]
	if !ok || ext == "" {
		return "", fmtErrorf("unsupported compression: '%s'", codec)
	}

	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst := path + ext
	// A window reopened after a clock step back must not overwrite its earlier archive
	for i := 1; fileExists(dst); i++ {
		dst = fmt.Sprintf("%s.%d%s", path, i, ext)
	}
	tmp, err := os.OpenFile(dst+tempSuffix, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePerm)
	if err != nil {
		return "", err
	}

	if err := encodeTo(tmp, src, codec); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	src.Close()
	if err := os.Remove(path); err != nil {
		return dst, fmtErrorf("compressed '%s' but failed to remove source: %w", path, err)
	}
	return dst, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// encodeTo streams src into w with the named codec
func encodeTo(w io.Writer, src io.Reader, codec string) error {
	var enc io.WriteCloser
	switch codec {
	case "gzip":
		enc = gzip.NewWriter(w)
	case "zstd":
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		enc = zw
	case "lz4":
		enc = lz4.NewWriter(w)
	case "snappy":
		enc = snappy.NewBufferedWriter(w)
	default:
		return fmtErrorf("unsupported compression: '%s'", codec)
	}

	if _, err := io.Copy(enc, src); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// writeChecksum stores the xxh3-64 digest of path in path+".xxh3"
func writeChecksum(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}

	line := fmt.Sprintf("%016x  %s\n", h.Sum64(), filepath.Base(path))
	return os.WriteFile(path+checksumSuffix, []byte(line), filePerm)
}

// cleanExpired removes this prefix's rotated files older than the retention period
func (a *archiver) cleanExpired(active string) error {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return fmtErrorf("failed to read log directory '%s' for retention cleanup: %w", a.dir, err)
	}

	cutoff := a.clock.Now().Add(-a.retention)
	activeName := filepath.Base(active)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == activeName || !strings.HasPrefix(name, a.prefix+"_") {
			continue
		}
		if strings.HasSuffix(name, tempSuffix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(a.dir, name)
			if err := os.Remove(path); err != nil {
				a.diag("failed to remove expired log file '%s': %v\n", path, err)
				continue
			}
			a.state.TotalDeletions.Add(1)
		}
	}
	return nil
}
