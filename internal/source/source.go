package source

import (
	"context"
	"time"

	"github.com/janusbot/janus/internal/station"
)

// Reading is the loosely-typed result of fetching one station. Every field
// except FetchedAt and URL is optional.
type Reading struct {
	Timestamp   string            `json:"timestamp,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
	Humidity    *float64          `json:"humidity,omitempty"`
	RainMM      *float64          `json:"rain_mm,omitempty"`
	Wind        string            `json:"wind,omitempty"`
	RawRow      map[string]string `json:"raw_row,omitempty"`
	RawPreview  string            `json:"raw_preview,omitempty"`
	Error       string            `json:"error,omitempty"`
	FetchedAt   time.Time         `json:"fetched_at"`
	URL         string            `json:"url"`
}

// OK reports whether the reading was fetched without error.
func (r Reading) OK() bool {
	return r.Error == ""
}

// Strategy fetches and normalizes one kind of station page.
type Strategy interface {
	// Name returns the strategy identifier (e.g. "table").
	Name() string

	// Fetch retrieves the station page and extracts what it can.
	Fetch(ctx context.Context, st station.Station) (Reading, error)
}
