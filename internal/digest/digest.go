// Package digest renders a human-readable summary of a snapshot.
package digest

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/janusbot/janus/internal/snapshot"
	"github.com/janusbot/janus/internal/source"
)

// Station status values.
const (
	StatusOK      = "ok"
	StatusPreview = "preview"
	StatusError   = "error"
)

// Formatter writes a formatted snapshot summary to w.
type Formatter interface {
	Format(w io.Writer, doc *snapshot.Document) error
}

// New returns the formatter for a format name: terminal, markdown or json.
func New(format string, color bool) (Formatter, error) {
	switch format {
	case "", "terminal":
		return NewTerminal(color), nil
	case "markdown":
		return NewMarkdown(), nil
	case "json":
		return NewJSON(), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want terminal, markdown or json)", format)
	}
}

type stationRow struct {
	ID      string
	Name    string
	Reading source.Reading
}

// rowsOf lists stations in fetch order. Documents decoded from disk carry no
// order and are listed by id.
func rowsOf(doc *snapshot.Document) []stationRow {
	ids := doc.IDs()
	if len(ids) != len(doc.Stations) {
		ids = ids[:0]
		for id := range doc.Stations {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}

	rows := make([]stationRow, 0, len(ids))
	for _, id := range ids {
		e := doc.Stations[id]
		rows = append(rows, stationRow{ID: id, Name: e.Meta.Name, Reading: e.Data})
	}
	return rows
}

func statusOf(r source.Reading) string {
	switch {
	case !r.OK():
		return StatusError
	case r.RawRow == nil && r.Temperature == nil && r.RawPreview != "":
		return StatusPreview
	default:
		return StatusOK
	}
}

func formatNumber(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	if unit != "" {
		s += " " + unit
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func countFailures(rows []stationRow) int {
	n := 0
	for _, r := range rows {
		if !r.Reading.OK() {
			n++
		}
	}
	return n
}
