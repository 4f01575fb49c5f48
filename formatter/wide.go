package formatter

import (
	"unicode/utf16"
	"unicode/utf8"
)

// FromUTF16 transcodes a UTF-16 wide string to UTF-8.
// Input is read up to the first NUL. An unpaired surrogate makes the whole input invalid,
// in which case the empty string and false are returned.
func FromUTF16(ws []uint16) (string, bool) {
	ws = cutNUL16(ws)
	if len(ws) == 0 {
		return "", true
	}

	buf := make([]byte, 0, len(ws)*2)
	for i := 0; i < len(ws); i++ {
		r := rune(ws[i])
		if utf16.IsSurrogate(r) {
			if i+1 >= len(ws) {
				return "", false
			}
			r = utf16.DecodeRune(r, rune(ws[i+1]))
			if r == utf8.RuneError {
				return "", false
			}
			i++
		}
		buf = utf8.AppendRune(buf, r)
	}
	return string(buf), true
}

// FromUTF32 transcodes a UTF-32 wide string to UTF-8 with the same NUL and validity rules as FromUTF16
func FromUTF32(ws []rune) (string, bool) {
	for i, r := range ws {
		if r == 0 {
			ws = ws[:i]
			break
		}
	}
	if len(ws) == 0 {
		return "", true
	}

	buf := make([]byte, 0, len(ws)*2)
	for _, r := range ws {
		if !utf8.ValidRune(r) {
			return "", false
		}
		buf = utf8.AppendRune(buf, r)
	}
	return string(buf), true
}

func cutNUL16(ws []uint16) []uint16 {
	for i, c := range ws {
		if c == 0 {
			return ws[:i]
		}
	}
	return ws
}
