// FILE: lixenwraith/ringlog/storage.go
package log

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// errNoHandle is returned by fileSink.append while no file is open
var errNoHandle = errors.New("log: no open log file")

// fileSink owns the handle of the active log file. The drain loop is its only
// writer; the mutex keeps Stats readers and shutdown from racing a reopen.
type fileSink struct {
	mu   sync.Mutex
	file *os.File
	bw   *bufio.Writer
	path string
}

func newFileSink() *fileSink {
	return &fileSink{}
}

// open replaces the current handle with one for path, creating the directory if needed.
// On failure the sink is left without a handle and the error is returned.
func (s *fileSink) open(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.path = path
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmtErrorf("failed to create log directory '%s': %w", filepath.Dir(path), err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmtErrorf("failed to open/create log file '%s': %w", path, err)
	}

	s.file = file
	if s.bw == nil {
		s.bw = bufio.NewWriterSize(file, sinkBufferSize)
	} else {
		s.bw.Reset(file)
	}
	return nil
}

// append writes one complete line. A failed write discards whatever part of
// the buffer could not reach the file so later lines start clean.
func (s *fileSink) append(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return errNoHandle
	}
	if _, err := s.bw.Write(data); err != nil {
		s.bw.Reset(s.file)
		return fmtErrorf("failed to write to log file '%s': %w", s.path, err)
	}
	return nil
}

// flush moves buffered lines to the OS
func (s *fileSink) flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// sync flushes and fsyncs the file
func (s *fileSink) sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flushLocked(); err != nil {
		return err
	}
	if s.file == nil {
		return nil
	}
	if err := s.file.Sync(); err != nil {
		return fmtErrorf("failed to sync log file '%s': %w", s.path, err)
	}
	return nil
}

// close flushes, fsyncs and releases the handle. It reports whether a file was open.
func (s *fileSink) close() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return false, nil
	}

	err := s.flushLocked()
	if syncErr := s.file.Sync(); syncErr != nil {
		err = combineErrors(err, fmtErrorf("failed to sync log file '%s': %w", s.path, syncErr))
	}
	if closeErr := s.file.Close(); closeErr != nil {
		err = combineErrors(err, fmtErrorf("failed to close log file '%s': %w", s.path, closeErr))
	}
	s.file = nil
	return true, err
}

// currentPath returns the path last passed to open
func (s *fileSink) currentPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

func (s *fileSink) flushLocked() error {
	if s.file == nil || s.bw.Buffered() == 0 {
		return nil
	}
	if err := s.bw.Flush(); err != nil {
		s.bw.Reset(s.file)
		return fmtErrorf("failed to flush log file '%s': %w", s.path, err)
	}
	return nil
}

// checkRotation moves the sink to a new file when the clock has left the current window
func (l *Logger) checkRotation(inst *instance) {
	if inst.rotation == RotateNever {
		return
	}
	now := inst.clock.Now()
	if !shouldRotate(inst.rotation, now, inst.lastBoundary) {
		return
	}
	inst.lastBoundary = now
	l.rotateLogFile(inst, now)
}

// rotateLogFile closes the current window file and opens the one covering now.
// A failed open leaves the sink without a handle until the next window.
func (l *Logger) rotateLogFile(inst *instance, now time.Time) {
	prev := inst.sink.currentPath()
	hadFile, err := inst.sink.close()
	if err != nil {
		l.internalLog("failed to close log file before rotation: %v\n", err)
	}

	next := fileNameFor(inst.cfg.Directory, inst.cfg.Name, inst.cfg.Extension, inst.rotation, now)
	if err := inst.sink.open(next); err != nil {
		l.internalLog("%v\n", err)
	}
	l.state.TotalRotations.Add(1)

	if hadFile && prev != next {
		inst.archiver.submit(archiveJob{closed: prev, active: next})
	}
}
