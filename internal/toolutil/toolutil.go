// Package toolutil provides shared helper functions for go_streams MCP tools.
package toolutil

import (
	"fmt"
	"strings"
)

// NormPlatform normalises a platform field: trimmed, lowercased, empty string → "all".
func NormPlatform(platform string) string {
	p := strings.ToLower(strings.TrimSpace(platform))
	if p == "" {
		return "all"
	}
	return p
}

// Platforms reports which collectors a normalised platform value selects.
func Platforms(platform string) (twitch, kick bool, err error) {
	switch platform {
	case "all":
		return true, true, nil
	case "twitch":
		return true, false, nil
	case "kick":
		return false, true, nil
	}
	return false, false, fmt.Errorf("unknown platform %q (want all, twitch or kick)", platform)
}

// Match returns the trimmed filter phrase and whether the caller supplied one.
func Match(match string) (string, bool) {
	m := strings.TrimSpace(match)
	return m, m != ""
}
