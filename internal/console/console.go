// Package console is the operator-facing side of the picker: numbered stream
// listings and the selection prompt.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/anatolykoptev/go_streams/internal/engine"
)

// Separator frames every listing.
const Separator = "----------------------------------------------"

const maxTitleRunes = 120

// Console reads answers from in and writes listings to out.
type Console struct {
	in      *bufio.Reader
	out     io.Writer
	viewers lipgloss.Style
}

// New returns a Console. Viewer labels are rendered red when out is a color terminal.
func New(in io.Reader, out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		in:      bufio.NewReader(in),
		out:     out,
		viewers: r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// Print writes one line.
func (c *Console) Print(line string) {
	fmt.Fprintln(c.out, line)
}

// Prompt writes question and returns the next input line without its line
// ending. End of input counts as an empty answer.
func (c *Console) Prompt(question string) (string, error) {
	fmt.Fprint(c.out, question)
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// FormatRecord renders one numbered listing line; index is 0-based.
func (c *Console) FormatRecord(index int, r engine.StreamRecord) string {
	return fmt.Sprintf("%d. Platform: %s, Title: %s, Viewers: %s",
		index+1, r.Platform, engine.TruncateRunes(r.Title, maxTitleRunes, "…"), c.viewers.Render(r.ViewersText))
}

// PrintRanking prints heading, then the records numbered from 1 between
// separators, or empty when there are none.
func (c *Console) PrintRanking(heading string, records []engine.StreamRecord, empty string) {
	c.Print(heading)
	c.Print(Separator)
	if len(records) == 0 {
		c.Print(empty)
		c.Print(Separator)
		return
	}
	for i, r := range records {
		c.Print(c.FormatRecord(i, r))
	}
	c.Print(Separator)
}

// Choose prompts for a 1-based selection among n entries and returns the
// 0-based index. ok is false for an empty, non-numeric or out-of-range answer.
func (c *Console) Choose(question string, n int) (index int, ok bool, err error) {
	answer, err := c.Prompt(question)
	if err != nil {
		return 0, false, err
	}
	index, ok = ParseChoice(answer, n)
	return index, ok, nil
}

// ParseChoice converts a 1-based answer into a 0-based index within n entries.
func ParseChoice(answer string, n int) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v - 1, true
}
