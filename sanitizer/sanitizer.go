// FILE: lixenwraith/ringlog/sanitizer/sanitizer.go
// Package sanitizer rewrites message text before it is framed into a log line.
// Rules are matched per rune with bitwise filter flags and applied with a transform.
package sanitizer

import (
	"encoding/hex"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Filter flags for character matching
const (
	FilterNonPrintable uint64 = 1 << iota // Runes not printable per strconv.IsPrint
	FilterControl                         // unicode.IsControl
	FilterLineBreak                       // '\n' and '\r', the only runes that can split a line
	FilterNUL                             // U+0000
)

// Transform flags for character transformation
const (
	TransformStrip     uint64 = 1 << iota // Removes the rune
	TransformHexEncode                    // Encodes the rune's UTF-8 bytes as "<XX>"
	TransformSpace                        // Replaces the rune with a single space
)

// PolicyPreset names a pre-configured rule set
type PolicyPreset string

const (
	PolicyRaw   PolicyPreset = "raw"   // Passthrough, NUL still stripped
	PolicyTxt   PolicyPreset = "txt"   // Hex-encodes anything non-printable
	PolicyStrip PolicyPreset = "strip" // Folds line breaks into spaces, drops other control runes
)

type rule struct {
	filter    uint64
	transform uint64
}

var policyRules = map[PolicyPreset][]rule{
	PolicyRaw: {{filter: FilterNUL, transform: TransformStrip}},
	PolicyTxt: {
		{filter: FilterNUL, transform: TransformStrip},
		{filter: FilterNonPrintable, transform: TransformHexEncode},
	},
	PolicyStrip: {
		{filter: FilterNUL, transform: TransformStrip},
		{filter: FilterLineBreak, transform: TransformSpace},
		{filter: FilterControl, transform: TransformStrip},
	},
}

// filterOrder fixes the evaluation order of filter bits inside one rule
var filterOrder = []uint64{FilterNUL, FilterLineBreak, FilterControl, FilterNonPrintable}

var filterCheckers = map[uint64]func(rune) bool{
	FilterNonPrintable: func(r rune) bool { return !strconv.IsPrint(r) },
	FilterControl:      unicode.IsControl,
	FilterLineBreak:    func(r rune) bool { return r == '\n' || r == '\r' },
	FilterNUL:          func(r rune) bool { return r == 0 },
}

// Sanitizer applies its rules in insertion order, first match wins.
// A Sanitizer reuses an internal buffer and is not safe for concurrent use.
type Sanitizer struct {
	rules []rule
	buf   []byte
}

// New creates a Sanitizer with no rules
func New() *Sanitizer {
	return &Sanitizer{
		rules: []rule{},
		buf:   make([]byte, 0, 256),
	}
}

// ValidPolicy reports whether name is a known preset
func ValidPolicy(name string) bool {
	_, ok := policyRules[PolicyPreset(name)]
	return ok
}

// Rule appends a custom rule
func (s *Sanitizer) Rule(filter uint64, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Policy appends the rules of a preset; unknown presets are ignored
func (s *Sanitizer) Policy(preset PolicyPreset) *Sanitizer {
	if rules, ok := policyRules[preset]; ok {
		s.rules = append(s.rules, rules...)
	}
	return s
}

// Clone returns an independent Sanitizer with the same rules
func (s *Sanitizer) Clone() *Sanitizer {
	c := New()
	c.rules = append(c.rules, s.rules...)
	return c
}

// Sanitize applies all rules to data. Strings that need no change are returned as-is.
func (s *Sanitizer) Sanitize(data string) string {
	if len(s.rules) == 0 || s.clean(data) {
		return data
	}

	s.buf = s.buf[:0]
	for _, r := range data {
		matched := false
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				applyTransform(&s.buf, r, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			s.buf = utf8.AppendRune(s.buf, r)
		}
	}

	return string(s.buf)
}

// clean reports whether no rule matches any rune of data
func (s *Sanitizer) clean(data string) bool {
	for _, r := range data {
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				return false
			}
		}
	}
	return true
}

func matchesFilter(r rune, filterMask uint64) bool {
	for _, flag := range filterOrder {
		if filterMask&flag != 0 && filterCheckers[flag](r) {
			return true
		}
	}
	return false
}

func applyTransform(buf *[]byte, r rune, transformMask uint64) {
	switch {
	case transformMask&TransformStrip != 0:
		// dropped

	case transformMask&TransformHexEncode != 0:
		var runeBytes [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeBytes[:], r)
		*buf = append(*buf, '<')
		*buf = append(*buf, hex.EncodeToString(runeBytes[:n])...)
		*buf = append(*buf, '>')

	case transformMask&TransformSpace != 0:
		*buf = append(*buf, ' ')
	}
}
