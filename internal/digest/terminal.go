package digest

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/janusbot/janus/internal/snapshot"
)

const maxNameWidth = 28

// TerminalFormatter formats a snapshot as an aligned table for the terminal.
type TerminalFormatter struct {
	color bool
}

// NewTerminal creates a terminal formatter. Set color=true for ANSI colors.
func NewTerminal(color bool) *TerminalFormatter {
	return &TerminalFormatter{color: color}
}

// Format writes one line per station followed by the recorded errors.
func (f *TerminalFormatter) Format(w io.Writer, doc *snapshot.Document) error {
	rows := rowsOf(doc)
	failures := countFailures(rows)

	header := fmt.Sprintf("janus — %d stations, %d failed, generated %s",
		len(rows), failures, doc.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))
	fmt.Fprintln(w, f.bold(header))
	fmt.Fprintln(w)

	if len(rows) == 0 {
		fmt.Fprintln(w, "No stations fetched.")
		return nil
	}

	nameWidth := len("STATION")
	for _, r := range rows {
		nameWidth = max(nameWidth, runewidth.StringWidth(truncName(r.Name)))
	}

	cols := []string{
		runewidth.FillRight("STATION", nameWidth),
		pad("TEMP", 9), pad("HUM", 6), pad("RAIN", 8), pad("WIND", 14), "STATUS",
	}
	fmt.Fprintln(w, f.dim(strings.Join(cols, "  ")))

	for _, r := range rows {
		status := statusOf(r.Reading)
		line := []string{
			runewidth.FillRight(truncName(r.Name), nameWidth),
			pad(formatNumber(r.Reading.Temperature, "°C"), 9),
			pad(formatNumber(r.Reading.Humidity, "%"), 6),
			pad(formatNumber(r.Reading.RainMM, "mm"), 8),
			pad(runewidth.Truncate(orDash(r.Reading.Wind), 14, "…"), 14),
			f.status(status),
		}
		fmt.Fprintln(w, strings.Join(line, "  "))
	}

	if failures > 0 {
		fmt.Fprintln(w)
		for _, r := range rows {
			if r.Reading.OK() {
				continue
			}
			fmt.Fprintf(w, "  %s: %s\n", r.ID, f.dim(r.Reading.Error))
		}
	}

	return nil
}

func truncName(s string) string {
	return runewidth.Truncate(s, maxNameWidth, "…")
}

func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func (f *TerminalFormatter) status(s string) string {
	switch s {
	case StatusOK:
		return f.green(s)
	case StatusPreview:
		return f.yellow(s)
	default:
		return f.red(s)
	}
}

// ANSI helpers; no-op when color is false.

func (f *TerminalFormatter) bold(s string) string {
	return f.ansi("1", s)
}

func (f *TerminalFormatter) green(s string) string {
	return f.ansi("32", s)
}

func (f *TerminalFormatter) yellow(s string) string {
	return f.ansi("33", s)
}

func (f *TerminalFormatter) red(s string) string {
	return f.ansi("31", s)
}

func (f *TerminalFormatter) dim(s string) string {
	return f.ansi("2", s)
}

func (f *TerminalFormatter) ansi(code, s string) string {
	if !f.color {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}
