package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"
)

// dumper renders composite values on one line with sorted map keys
var dumper = &spew.ConfigState{
	Indent:                  " ",
	MaxDepth:                10,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Args renders variadic arguments as space-separated values
func Args(args ...any) string {
	switch len(args) {
	case 0:
		return ""
	case 1:
		if s, ok := args[0].(string); ok {
			return s
		}
	}

	var sb strings.Builder
	buf := make([]byte, 0, 64)
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		buf = appendValue(buf[:0], arg)
		sb.Write(buf)
	}
	return sb.String()
}

func appendValue(buf []byte, v any) []byte {
	switch val := v.(type) {
	case string:
		return append(buf, val...)
	case []byte:
		return append(buf, val...)
	case rune:
		return utf8.AppendRune(buf, val)
	case int:
		return strconv.AppendInt(buf, int64(val), 10)
	case int64:
		return strconv.AppendInt(buf, val, 10)
	case uint:
		return strconv.AppendUint(buf, uint64(val), 10)
	case uint64:
		return strconv.AppendUint(buf, val, 10)
	case float32:
		return strconv.AppendFloat(buf, float64(val), 'f', -1, 32)
	case float64:
		return strconv.AppendFloat(buf, val, 'f', -1, 64)
	case bool:
		return strconv.AppendBool(buf, val)
	case nil:
		return append(buf, "nil"...)
	case time.Time:
		return val.AppendFormat(buf, DefaultTimestampFormat)
	case error:
		return append(buf, val.Error()...)
	case fmt.Stringer:
		return append(buf, val.String()...)
	default:
		// Structs, maps, pointers, slices
		return append(buf, dumper.Sprint(val)...)
	}
}
