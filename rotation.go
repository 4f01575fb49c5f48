// FILE: lixenwraith/ringlog/rotation.go
package log

import (
	"path/filepath"
	"strings"
	"time"
)

// Rotation selects the time window covered by one log file
type Rotation int

const (
	RotateNever Rotation = iota
	RotateMinutely
	RotateHourly
	RotateDaily
)

var rotationNames = map[Rotation]string{
	RotateNever:    "never",
	RotateMinutely: "minutely",
	RotateHourly:   "hourly",
	RotateDaily:    "daily",
}

// File name suffix layouts per window
var rotationLayouts = map[Rotation]string{
	RotateMinutely: "20060102_1504",
	RotateHourly:   "20060102_15",
	RotateDaily:    "20060102",
}

func (r Rotation) String() string {
	if name, ok := rotationNames[r]; ok {
		return name
	}
	return "unknown"
}

// ParseRotation converts a rotation name to its kind. Empty means never.
func ParseRotation(s string) (Rotation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "never", "none":
		return RotateNever, nil
	case "minutely", "minute":
		return RotateMinutely, nil
	case "hourly", "hour":
		return RotateHourly, nil
	case "daily", "day":
		return RotateDaily, nil
	default:
		return RotateNever, fmtErrorf("invalid rotation: '%s' (use never, minutely, hourly, or daily)", s)
	}
}

// shouldRotate reports whether now falls into a different window than last.
// Windows are calendar units of the times' own location, so a clock moving
// backwards across a boundary rotates as well.
func shouldRotate(r Rotation, now, last time.Time) bool {
	if r == RotateNever {
		return false
	}

	ny, nm, nd := now.Date()
	ly, lm, ld := last.Date()
	if ny != ly || nm != lm || nd != ld {
		return true
	}
	if r == RotateDaily {
		return false
	}

	if now.Hour() != last.Hour() {
		return true
	}
	if r == RotateHourly {
		return false
	}

	return now.Minute() != last.Minute()
}

// fileNameFor builds the path of the file covering t
func fileNameFor(dir, prefix, ext string, r Rotation, t time.Time) string {
	if ext == "" {
		ext = "log"
	}

	layout, ok := rotationLayouts[r]
	if !ok {
		return filepath.Join(dir, prefix+"."+ext)
	}
	return filepath.Join(dir, prefix+"_"+t.Format(layout)+"."+ext)
}
