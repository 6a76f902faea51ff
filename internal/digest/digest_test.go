package digest

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/janusbot/janus/internal/snapshot"
	"github.com/janusbot/janus/internal/source"
	"github.com/janusbot/janus/internal/station"
)

func ptr(v float64) *float64 { return &v }

func testDoc() *snapshot.Document {
	doc := snapshot.New(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), 15)
	doc.Add(station.Station{ID: "marzana", Name: "Marzana"}, source.Reading{
		Timestamp:   "18/10/2026",
		Temperature: ptr(21.4),
		Humidity:    ptr(65),
		RainMM:      ptr(0.2),
		Wind:        "NE 5 km/h",
		RawRow:      map[string]string{"temp": "21,4"},
	})
	doc.Add(station.Station{ID: "montorio", Name: "Montorio"}, source.Reading{
		RawPreview: "Montorio Veronese meteo",
	})
	doc.Add(station.Station{ID: "gazzego", Name: "Contrada Gazzego"}, source.Reading{
		Error: "fetch https://evrgreen.it/: HTTP 503",
	})
	return doc
}

func TestNew(t *testing.T) {
	for _, name := range []string{"", "terminal", "markdown", "json"} {
		if _, err := New(name, false); err != nil {
			t.Errorf("New(%q): %v", name, err)
		}
	}
	if _, err := New("xml", false); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		r    source.Reading
		want string
	}{
		{"error", source.Reading{Error: "x", RawPreview: "y"}, StatusError},
		{"preview", source.Reading{RawPreview: "text"}, StatusPreview},
		{"row", source.Reading{RawRow: map[string]string{"a": "b"}}, StatusOK},
		{"feed", source.Reading{Temperature: ptr(1), RawPreview: "text"}, StatusOK},
	}
	for _, tt := range tests {
		if got := statusOf(tt.r); got != tt.want {
			t.Errorf("%s: status = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTerminalFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTerminal(false).Format(&buf, testDoc()); err != nil {
		t.Fatalf("format: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"janus — 3 stations, 1 failed, generated 2026-10-18 12:00 UTC",
		"STATION",
		"21.4 °C",
		"0.2 mm",
		"NE 5 km/h",
		"preview",
		"gazzego: fetch https://evrgreen.it/: HTTP 503",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("no ANSI codes expected with color=false")
	}

	lines := strings.Split(out, "\n")
	var marzana, montorio string
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "Marzana"):
			marzana = l
		case strings.HasPrefix(l, "Montorio"):
			montorio = l
		}
	}
	if marzana == "" || montorio == "" {
		t.Fatalf("station lines missing:\n%s", out)
	}
	if strings.Index(marzana, "21.4") != strings.Index(montorio, "-") {
		t.Errorf("columns not aligned:\n%s\n%s", marzana, montorio)
	}
}

func TestTerminalFormat_Color(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTerminal(true).Format(&buf, testDoc()); err != nil {
		t.Fatalf("format: %v", err)
	}
	if !strings.Contains(buf.String(), "\033[31merror\033[0m") {
		t.Error("expected red error status")
	}
}

func TestTerminalFormat_Empty(t *testing.T) {
	var buf bytes.Buffer
	doc := snapshot.New(time.Now(), 15)
	if err := NewTerminal(false).Format(&buf, doc); err != nil {
		t.Fatalf("format: %v", err)
	}
	if !strings.Contains(buf.String(), "No stations fetched.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestMarkdownFormat(t *testing.T) {
	var buf bytes.Buffer
	doc := testDoc()
	doc.Add(station.Station{ID: "pipe", Name: "A|B"}, source.Reading{Wind: "N|E"})

	if err := NewMarkdown().Format(&buf, doc); err != nil {
		t.Fatalf("format: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# janus snapshot",
		"4 stations, 1 failed",
		"| Marzana | 18/10/2026 | 21.4 °C | 65 % | 0.2 mm | NE 5 km/h | ok |",
		`| A\|B |`,
		"## Errors",
		"- **gazzego**: fetch https://evrgreen.it/: HTTP 503",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSON().Format(&buf, testDoc()); err != nil {
		t.Fatalf("format: %v", err)
	}

	var result jsonSummary
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v\noutput: %s", err, buf.String())
	}

	if result.Stations != 3 || result.Failures != 1 {
		t.Errorf("stations/failures = %d/%d, want 3/1", result.Stations, result.Failures)
	}
	if len(result.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(result.Items))
	}
	if result.Items[0].ID != "marzana" || result.Items[0].Status != StatusOK {
		t.Errorf("first item = %+v", result.Items[0])
	}
	if result.Items[2].Error == "" {
		t.Error("gazzego error missing")
	}
}

func TestRowsOf_DecodedDocumentSortedByID(t *testing.T) {
	var buf bytes.Buffer
	if err := snapshot.Encode(&buf, testDoc()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var decoded snapshot.Document
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rows := rowsOf(&decoded)
	if len(rows) != 3 || rows[0].ID != "gazzego" || rows[2].ID != "montorio" {
		t.Errorf("rows = %v, want sorted by id", rows)
	}
}
