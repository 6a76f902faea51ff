package digest

import (
	"encoding/json"
	"io"

	"github.com/janusbot/janus/internal/snapshot"
)

type jsonSummary struct {
	GeneratedAt string        `json:"generated_at"`
	Stations    int           `json:"stations"`
	Failures    int           `json:"failures"`
	Items       []jsonStation `json:"items"`
}

type jsonStation struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	Timestamp   string   `json:"timestamp,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	RainMM      *float64 `json:"rain_mm,omitempty"`
	Wind        string   `json:"wind,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// JSONFormatter formats a flat per-station summary as JSON.
type JSONFormatter struct{}

// NewJSON creates a JSON formatter.
func NewJSON() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes the summary as JSON to w.
func (f *JSONFormatter) Format(w io.Writer, doc *snapshot.Document) error {
	rows := rowsOf(doc)

	out := jsonSummary{
		GeneratedAt: doc.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Stations:    len(rows),
		Failures:    countFailures(rows),
		Items:       make([]jsonStation, 0, len(rows)),
	}
	for _, r := range rows {
		out.Items = append(out.Items, jsonStation{
			ID:          r.ID,
			Name:        r.Name,
			Status:      statusOf(r.Reading),
			Timestamp:   r.Reading.Timestamp,
			Temperature: r.Reading.Temperature,
			Humidity:    r.Reading.Humidity,
			RainMM:      r.Reading.RainMM,
			Wind:        r.Reading.Wind,
			Error:       r.Reading.Error,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}
