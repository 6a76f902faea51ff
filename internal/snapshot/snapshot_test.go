package snapshot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/janusbot/janus/internal/source"
	"github.com/janusbot/janus/internal/station"
)

func ptr(v float64) *float64 { return &v }

func testDocument() *Document {
	fetched := time.Date(2026, 10, 18, 12, 0, 1, 0, time.UTC)
	d := New(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), 15)
	d.Add(station.Station{ID: "marzana", Name: "Marzana"}, source.Reading{
		Timestamp:   "18/10/2026",
		Temperature: ptr(21.4),
		RawRow:      map[string]string{"umidità": "65 %"},
		FetchedAt:   fetched,
		URL:         "https://stazioni.meteoproject.it/dati/marzana/?a=1&b=2",
	})
	d.Add(station.Station{ID: "gazzego", Name: "Contrada Gazzego"}, source.Reading{
		Error:     "fetch https://evrgreen.it/: HTTP 503",
		FetchedAt: fetched,
		URL:       "https://evrgreen.it/",
	})
	return d
}

func TestEncode_Shape(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testDocument()); err != nil {
		t.Fatalf("encode: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("unmarshal: %v\noutput: %s", err, buf.String())
	}

	if m["generated_at"] != "2026-10-18T12:00:00Z" {
		t.Errorf("generated_at = %v", m["generated_at"])
	}
	if m["interval_minutes"] != float64(15) {
		t.Errorf("interval_minutes = %v", m["interval_minutes"])
	}

	stations := m["stations"].(map[string]any)
	if len(stations) != 2 {
		t.Fatalf("stations = %d, want 2", len(stations))
	}

	marzana := stations["marzana"].(map[string]any)
	if marzana["meta"].(map[string]any)["name"] != "Marzana" {
		t.Errorf("meta = %v", marzana["meta"])
	}
	data := marzana["data"].(map[string]any)
	if data["temperature"] != 21.4 {
		t.Errorf("temperature = %v", data["temperature"])
	}
	if _, ok := data["humidity"]; ok {
		t.Error("humidity should be omitted when absent")
	}
	if _, ok := data["error"]; ok {
		t.Error("error should be omitted on success")
	}
	if data["fetched_at"] != "2026-10-18T12:00:01Z" {
		t.Errorf("fetched_at = %v", data["fetched_at"])
	}

	gazzego := stations["gazzego"].(map[string]any)["data"].(map[string]any)
	if gazzego["error"] == nil || gazzego["url"] != "https://evrgreen.it/" || gazzego["fetched_at"] == nil {
		t.Errorf("failed station data = %v, want error, url and fetched_at", gazzego)
	}
}

func TestEncode_NoEscaping(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testDocument()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "umidità") {
		t.Error("non-ASCII text should not be escaped")
	}
	if !strings.Contains(out, "?a=1&b=2") {
		t.Error("& in URLs should not be escaped")
	}
}

func TestDocument_OrderAndFailures(t *testing.T) {
	d := testDocument()
	ids := d.IDs()
	if len(ids) != 2 || ids[0] != "marzana" || ids[1] != "gazzego" {
		t.Errorf("ids = %v", ids)
	}
	if d.Failures() != 1 {
		t.Errorf("failures = %d, want 1", d.Failures())
	}

	d.Add(station.Station{ID: "marzana", Name: "Marzana"}, source.Reading{})
	if len(d.IDs()) != 2 || len(d.Stations) != 2 {
		t.Errorf("re-adding an id should replace, got ids %v", d.IDs())
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs", "data", "dati.json")

	if err := Write(path, testDocument()); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(d.Stations) != 2 {
		t.Errorf("stations = %d, want 2", len(d.Stations))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the snapshot", len(entries))
	}
}

func TestWrite_EmptyPath(t *testing.T) {
	if err := Write("  ", testDocument()); err == nil {
		t.Fatal("expected error for empty path")
	}
}
