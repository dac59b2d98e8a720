package engine

import (
	"strconv"
	"strings"
)

// Unit phrases the platforms append to viewer counts. Longer forms first so
// " viewers" is not left as "s" after stripping " viewer".
var viewerUnits = []string{" viewers", " viewer", " watching"}

// ParseViewerCount converts a platform viewer label such as "12.3K viewers",
// "3M watching" or "1,234" into a plain count. It never fails: anything that
// does not start with a number yields 0.
//
// A trailing K or M (case-sensitive) scales the numeric prefix by 1e3 or 1e6.
// The scaled value is truncated, and computed in decimal so "2.3K" is 2300
// rather than a float artefact. Comma thousands separators are ignored.
func ParseViewerCount(raw string) int64 {
	s := strings.TrimSpace(raw)
	for _, unit := range viewerUnits {
		if strings.HasSuffix(s, unit) {
			s = strings.TrimSpace(strings.TrimSuffix(s, unit))
			break
		}
	}
	s = strings.ReplaceAll(s, ",", "")

	switch {
	case strings.HasSuffix(s, "K"):
		return scaleDecimal(strings.TrimSuffix(s, "K"), 3)
	case strings.HasSuffix(s, "M"):
		return scaleDecimal(strings.TrimSuffix(s, "M"), 6)
	default:
		n, err := strconv.ParseInt(leadingDigits(s), 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
}

// scaleDecimal multiplies the leading decimal number in s by 10^exp and
// truncates toward zero.
func scaleDecimal(s string, exp int) int64 {
	s = strings.TrimSpace(s)
	whole := leadingDigits(s)
	rest := s[len(whole):]

	var frac string
	if strings.HasPrefix(rest, ".") {
		frac = leadingDigits(rest[1:])
	}
	if whole == "" && frac == "" {
		return 0
	}

	if len(frac) > exp {
		frac = frac[:exp]
	}
	frac += strings.Repeat("0", exp-len(frac))

	n, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// leadingDigits returns the run of ASCII digits at the start of s.
func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}
