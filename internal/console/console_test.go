package console

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_streams/internal/engine"
)

func TestPrintRanking(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out)

	c.PrintRanking("Twitch \"Rust Kingdom\" streams:", []engine.StreamRecord{
		engine.NewStreamRecord(engine.Twitch, "B", "2.5K viewers"),
		engine.NewStreamRecord(engine.Kick, "A", "500 watching"),
	}, "none")

	want := strings.Join([]string{
		"Twitch \"Rust Kingdom\" streams:",
		Separator,
		"1. Platform: Twitch, Title: B, Viewers: 2.5K viewers",
		"2. Platform: Kick, Title: A, Viewers: 500 watching",
		Separator,
		"",
	}, "\n")
	assert.Equal(t, want, out.String())
}

func TestPrintRankingEmpty(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader(""), &out)

	c.PrintRanking("All streams:", nil, "No streams found.")

	assert.Equal(t, "All streams:\n"+Separator+"\nNo streams found.\n"+Separator+"\n", out.String())
}

func TestFormatRecordTruncatesLongTitles(t *testing.T) {
	c := New(strings.NewReader(""), &bytes.Buffer{})
	long := strings.Repeat("rust kingdom ", 30)

	line := c.FormatRecord(0, engine.NewStreamRecord(engine.Twitch, long, "1 viewer"))

	assert.Contains(t, line, "…")
	assert.Less(t, len([]rune(line)), len([]rune(long)))
}

func TestPrompt(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("2\r\nsecond\nlast-without-newline"), &out)

	a, err := c.Prompt("pick: ")
	require.NoError(t, err)
	assert.Equal(t, "2", a)
	assert.Equal(t, "pick: ", out.String())

	a, err = c.Prompt("")
	require.NoError(t, err)
	assert.Equal(t, "second", a)

	a, err = c.Prompt("")
	require.NoError(t, err)
	assert.Equal(t, "last-without-newline", a)

	a, err = c.Prompt("")
	require.NoError(t, err)
	assert.Empty(t, a, "end of input is an empty answer")
}

func TestChoose(t *testing.T) {
	c := New(strings.NewReader("3\n\n"), &bytes.Buffer{})

	idx, ok, err := c.Choose("? ", 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok, err = c.Choose("? ", 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		answer string
		n      int
		idx    int
		ok     bool
	}{
		{"1", 3, 0, true},
		{" 3 ", 3, 2, true},
		{"", 3, 0, false},
		{"0", 3, 0, false},
		{"4", 3, 0, false},
		{"-1", 3, 0, false},
		{"two", 3, 0, false},
		{"1", 0, 0, false},
	}
	for _, tt := range tests {
		idx, ok := ParseChoice(tt.answer, tt.n)
		assert.Equal(t, tt.ok, ok, "answer %q", tt.answer)
		assert.Equal(t, tt.idx, idx, "answer %q", tt.answer)
	}
}
