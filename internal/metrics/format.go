package metrics

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueKind selects the display rendering for a value
type ValueKind int

const (
	Plain ValueKind = iota
	Currency
	Percent
)

// FormatValue renders a value for display. Undefined values render as
// the literal token "None"; currency as a 2-decimal amount with the
// rupee glyph and comma grouping; percent with a trailing "%".
func FormatValue(v *float64, kind ValueKind) string {
	if !defined(v) {
		return "None"
	}
	switch kind {
	case Currency:
		return "₹" + groupDigits(fmt.Sprintf("%.2f", *v))
	case Percent:
		return fmt.Sprintf("%.2f%%", *v)
	default:
		return strconv.FormatFloat(*v, 'f', -1, 64)
	}
}

// FormatPair renders a stored "<buy>/<sell>" pair, "None" when absent
func FormatPair(pair *string) string {
	if pair == nil || *pair == "" {
		return "None"
	}
	return *pair
}

// groupDigits inserts comma grouping into the integer part of a fixed
// decimal string, e.g. "1234567.89" -> "1,234,567.89"
func groupDigits(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart = s[:dot]
		fracPart = s[dot:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + fracPart
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + fracPart
}
