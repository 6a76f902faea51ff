// Package snapshot builds and writes the JSON document produced by one run.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/janusbot/janus/internal/source"
	"github.com/janusbot/janus/internal/station"
)

// Meta carries the display data of a station.
type Meta struct {
	Name string `json:"name"`
}

// Entry is one station in the snapshot.
type Entry struct {
	Meta Meta           `json:"meta"`
	Data source.Reading `json:"data"`
}

// Document is the snapshot of every station fetched in one run.
type Document struct {
	GeneratedAt     time.Time        `json:"generated_at"`
	IntervalMinutes int              `json:"interval_minutes"`
	Stations        map[string]Entry `json:"stations"`

	// order keeps the station list order for formatters; not serialized.
	order []string
}

// New creates an empty document stamped with generatedAt.
func New(generatedAt time.Time, intervalMinutes int) *Document {
	return &Document{
		GeneratedAt:     generatedAt.UTC(),
		IntervalMinutes: intervalMinutes,
		Stations:        make(map[string]Entry),
	}
}

// Add records the reading of st, replacing any earlier reading for the same id.
func (d *Document) Add(st station.Station, r source.Reading) {
	if _, exists := d.Stations[st.ID]; !exists {
		d.order = append(d.order, st.ID)
	}
	d.Stations[st.ID] = Entry{Meta: Meta{Name: st.Name}, Data: r}
}

// IDs returns station ids in the order they were added.
func (d *Document) IDs() []string {
	return append([]string(nil), d.order...)
}

// Failures counts stations whose reading carries an error.
func (d *Document) Failures() int {
	n := 0
	for _, e := range d.Stations {
		if !e.Data.OK() {
			n++
		}
	}
	return n
}

// Encode writes the document as indented JSON. Non-ASCII text and HTML
// characters are written as-is.
func Encode(w io.Writer, d *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(d)
}

// Write encodes d to path, creating parent directories. The file is replaced
// atomically so readers never see a partial document.
func Write(path string, d *Document) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("output path is required")
	}

	var buf bytes.Buffer
	if err := Encode(&buf, d); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
