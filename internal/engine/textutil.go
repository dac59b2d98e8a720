package engine

import (
	"regexp"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

var spaceRe = regexp.MustCompile(`\s+`)

// CleanText collapses whitespace runs (newlines inside card labels included)
// into single spaces and trims the result.
func CleanText(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// TitleContains reports whether title contains sub, ignoring case.
func TitleContains(title, sub string) bool {
	return strings.Contains(strings.ToLower(title), strings.ToLower(sub))
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
