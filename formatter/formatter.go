// Package formatter turns a level, a timestamp and a message into one
// immutable UTF-8 log line of the form "<timestamp> [<LEVEL>] <message>\n".
package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/lixenwraith/ringlog/sanitizer"
)

// DefaultTimestampFormat is RFC3339 with millisecond precision and an explicit numeric offset
const DefaultTimestampFormat = "2006-01-02T15:04:05.000-07:00"

// maxTimestampLen bounds the stack buffer used to measure a rendered timestamp
const maxTimestampLen = 64

// Formatter encodes log lines. Encode is safe for concurrent use by any number of producers;
// the fluent setters are not and must be called before the Formatter is shared.
type Formatter struct {
	timestampFormat string
	maxMessageBytes int
	base            *sanitizer.Sanitizer
	pool            sync.Pool // *sanitizer.Sanitizer clones of base
}

// New creates a formatter with the provided sanitizer, or a passthrough one
func New(s ...*sanitizer.Sanitizer) *Formatter {
	var san *sanitizer.Sanitizer
	if len(s) > 0 && s[0] != nil {
		san = s[0]
	} else {
		san = sanitizer.New().Policy(sanitizer.PolicyRaw)
	}
	f := &Formatter{
		timestampFormat: DefaultTimestampFormat,
		base:            san,
	}
	f.pool.New = func() any { return f.base.Clone() }
	return f
}

// TimestampFormat sets the time layout; empty keeps the current one
func (f *Formatter) TimestampFormat(format string) *Formatter {
	if format != "" {
		f.timestampFormat = format
	}
	return f
}

// MaxMessageBytes caps the message body length, 0 disables the cap
func (f *Formatter) MaxMessageBytes(n int) *Formatter {
	if n >= 0 {
		f.maxMessageBytes = n
	}
	return f
}

// Encode renders one complete line. The returned slice is freshly allocated and owned by the caller.
func (f *Formatter) Encode(level int64, timestamp time.Time, message string) []byte {
	message = f.prepare(message)

	var tsBuf [maxTimestampLen]byte
	ts := timestamp.AppendFormat(tsBuf[:0], f.timestampFormat)
	lvl := LevelToString(level)

	// Measure first, then render into an exact-size allocation
	size := len(ts) + len(" [") + len(lvl) + len("] ") + len(message) + 1
	buf := make([]byte, 0, size)
	buf = append(buf, ts...)
	buf = append(buf, " ["...)
	buf = append(buf, lvl...)
	buf = append(buf, "] "...)
	buf = append(buf, message...)
	buf = append(buf, '\n')
	return buf
}

// prepare sanitizes, repairs and caps the message body
func (f *Formatter) prepare(message string) string {
	if message == "" {
		return message
	}

	s := f.pool.Get().(*sanitizer.Sanitizer)
	message = s.Sanitize(message)
	f.pool.Put(s)

	if strings.IndexByte(message, 0) >= 0 {
		message = strings.ReplaceAll(message, "\x00", "")
	}
	if !utf8.ValidString(message) {
		message = strings.ToValidUTF8(message, string(utf8.RuneError))
	}
	return truncate(message, f.maxMessageBytes)
}

// truncate cuts s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Sprintf renders a format string with its ordered arguments into one owned string
func Sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

// LevelToString converts integer level values to their fixed token
func LevelToString(level int64) string {
	switch level {
	case -4:
		return "DEBUG"
	case 0:
		return "INFO"
	case 4:
		return "WARN"
	case 8:
		return "ERROR"
	default:
		return "LEVEL(" + strconv.FormatInt(level, 10) + ")"
	}
}
