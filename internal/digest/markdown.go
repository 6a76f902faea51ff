package digest

import (
	"fmt"
	"io"
	"strings"

	"github.com/janusbot/janus/internal/snapshot"
)

// MarkdownFormatter formats a snapshot as a Markdown table.
type MarkdownFormatter struct{}

// NewMarkdown creates a Markdown formatter.
func NewMarkdown() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format writes the snapshot as Markdown to w.
func (f *MarkdownFormatter) Format(w io.Writer, doc *snapshot.Document) error {
	rows := rowsOf(doc)

	fmt.Fprintf(w, "# janus snapshot\n\n")
	fmt.Fprintf(w, "%d stations, %d failed, generated %s\n\n",
		len(rows), countFailures(rows), doc.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))

	if len(rows) == 0 {
		fmt.Fprintln(w, "No stations fetched.")
		return nil
	}

	fmt.Fprintln(w, "| Station | Time | Temp | Humidity | Rain | Wind | Status |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|")
	for _, r := range rows {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s |\n",
			cell(r.Name),
			cell(orDash(r.Reading.Timestamp)),
			formatNumber(r.Reading.Temperature, "°C"),
			formatNumber(r.Reading.Humidity, "%"),
			formatNumber(r.Reading.RainMM, "mm"),
			cell(orDash(r.Reading.Wind)),
			statusOf(r.Reading),
		)
	}

	var failed []stationRow
	for _, r := range rows {
		if !r.Reading.OK() {
			failed = append(failed, r)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintf(w, "\n## Errors\n\n")
		for _, r := range failed {
			fmt.Fprintf(w, "- **%s**: %s\n", r.ID, r.Reading.Error)
		}
	}

	return nil
}

// cell escapes pipes so values cannot break the table.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
