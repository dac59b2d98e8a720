package engine

import (
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  1.2K\n viewers ", "1.2K viewers"},
		{"\t842\t\tviewers", "842 viewers"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanText(tt.in); got != tt.want {
			t.Errorf("CleanText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleContains(t *testing.T) {
	if !TitleContains("!drops RUST KINGDOM wipe", "rust kingdom") {
		t.Error("expected case-insensitive match")
	}
	if TitleContains("Rust solo raids", "rust kingdom") {
		t.Error("unexpected match")
	}
}

func TestMetricsFormat(t *testing.T) {
	IncrCardsSeen()
	out := FormatMetrics()
	for _, k := range []string{"cards_seen", "cards_failed", "streams_opened", "cache_hits"} {
		if !strings.Contains(out, k+" ") {
			t.Errorf("FormatMetrics missing %q:\n%s", k, out)
		}
	}
	if GetMetrics()["cards_seen"] < 1 {
		t.Error("cards_seen not incremented")
	}
}
