package source

import (
	"context"
	"net/http"
	"time"

	"github.com/janusbot/janus/internal/station"
)

const (
	tableStrategyName = "table"
	pageStrategyName  = "page"
)

// TableStrategy reads the latest reading out of the first HTML table on a
// station page. Pages without a usable table degrade to a text preview.
type TableStrategy struct {
	client  *http.Client
	timeout time.Duration
}

// NewTable creates a table strategy with a per-request timeout.
func NewTable(client *http.Client, timeout time.Duration) *TableStrategy {
	return &TableStrategy{client: client, timeout: timeout}
}

func (ts *TableStrategy) Name() string {
	return tableStrategyName
}

func (ts *TableStrategy) Fetch(ctx context.Context, st station.Station) (Reading, error) {
	doc, err := fetchDocument(ctx, ts.client, st.URL, ts.timeout)
	if err != nil {
		return Reading{}, err
	}

	row := ExtractRow(doc, st.Row)
	if row == nil {
		return Reading{RawPreview: Preview(doc, tablePreviewRunes)}, nil
	}
	return Normalize(row), nil
}

// PageStrategy records a plain-text preview of a page with no known layout.
type PageStrategy struct {
	client  *http.Client
	timeout time.Duration
}

// NewPage creates a generic page strategy with a per-request timeout.
func NewPage(client *http.Client, timeout time.Duration) *PageStrategy {
	return &PageStrategy{client: client, timeout: timeout}
}

func (ps *PageStrategy) Name() string {
	return pageStrategyName
}

func (ps *PageStrategy) Fetch(ctx context.Context, st station.Station) (Reading, error) {
	doc, err := fetchDocument(ctx, ps.client, st.URL, ps.timeout)
	if err != nil {
		return Reading{}, err
	}
	return Reading{RawPreview: Preview(doc, genericPreviewRunes)}, nil
}
