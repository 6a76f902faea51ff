package source

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/janusbot/janus/internal/station"
)

const testUserAgent = "JanusTest/1.0"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestScraper() *Scraper {
	return NewScraper(Options{
		UserAgent:      testUserAgent,
		TableTimeout:   5 * time.Second,
		GenericTimeout: 5 * time.Second,
		Logger:         quietLogger(),
	})
}

func TestScraper_TablePage(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = io.WriteString(w, meteoProjectPage)
	}))
	defer srv.Close()

	r := newTestScraper().Fetch(context.Background(), station.Station{
		ID: "marzana", URL: srv.URL, Type: station.TypeMeteoProject,
	})

	if !r.OK() {
		t.Fatalf("unexpected error: %s", r.Error)
	}
	if gotUA != testUserAgent {
		t.Errorf("user-agent = %q, want %q", gotUA, testUserAgent)
	}
	if r.Timestamp != "18/10/2026" {
		t.Errorf("timestamp = %q", r.Timestamp)
	}
	if r.Temperature == nil || *r.Temperature != 21.4 {
		t.Errorf("temperature = %v, want 21.4", r.Temperature)
	}
	if r.RawRow == nil {
		t.Error("raw_row missing")
	}
	if r.RawPreview != "" {
		t.Errorf("raw_preview = %q, want empty for table hit", r.RawPreview)
	}
}

func TestScraper_TablePageLastRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, meteoProjectPage)
	}))
	defer srv.Close()

	r := newTestScraper().Fetch(context.Background(), station.Station{
		ID: "marzana", URL: srv.URL, Type: station.TypeMeteoProject, Row: station.RowLast,
	})
	if r.Temperature == nil || *r.Temperature != 21.9 {
		t.Errorf("temperature = %v, want 21.9 from last row", r.Temperature)
	}
}

func TestScraper_TablePageWithoutTableFallsBackToPreview(t *testing.T) {
	body := "<html><body><p>" + strings.Repeat("pioggia ", 100) + "</p></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	r := newTestScraper().Fetch(context.Background(), station.Station{
		ID: "torricelle", URL: srv.URL, Type: station.TypeMeteoProject,
	})

	if !r.OK() {
		t.Fatalf("no table should not be an error, got %q", r.Error)
	}
	if n := len([]rune(r.RawPreview)); n != tablePreviewRunes {
		t.Errorf("preview runes = %d, want %d", n, tablePreviewRunes)
	}
	if r.RawRow != nil {
		t.Errorf("raw_row = %v, want nil", r.RawRow)
	}
}

func TestScraper_GenericPage(t *testing.T) {
	body := "<html><body>" + strings.Repeat("<p>vento</p>", 200) + "</body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	}))
	defer srv.Close()

	for _, typ := range []string{station.TypeEvrgreen, station.TypeARPAV, "something-new", ""} {
		r := newTestScraper().Fetch(context.Background(), station.Station{ID: "x", URL: srv.URL, Type: typ})
		if !r.OK() {
			t.Fatalf("type %q: unexpected error %q", typ, r.Error)
		}
		if n := len([]rune(r.RawPreview)); n != genericPreviewRunes {
			t.Errorf("type %q: preview runes = %d, want %d", typ, n, genericPreviewRunes)
		}
	}
}

func TestScraper_Latin1Page(t *testing.T) {
	// "Umidità" encoded as ISO-8859-1.
	body := []byte("<table><tr><th>Umidit\xe0</th></tr><tr><td>70</td></tr></table>")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	r := newTestScraper().Fetch(context.Background(), station.Station{
		ID: "x", URL: srv.URL, Type: station.TypeTable,
	})
	if r.Humidity == nil || *r.Humidity != 70 {
		t.Errorf("humidity = %v, want 70 (raw_row %v)", r.Humidity, r.RawRow)
	}
}

func TestScraper_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := newTestScraper().Fetch(context.Background(), station.Station{
		ID: "x", URL: srv.URL, Type: station.TypeMeteoProject,
	})
	if !strings.Contains(r.Error, "HTTP 500") {
		t.Errorf("error = %q, want containing HTTP 500", r.Error)
	}
}

func TestScraper_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	sc := NewScraper(Options{
		UserAgent:      testUserAgent,
		TableTimeout:   50 * time.Millisecond,
		GenericTimeout: 50 * time.Millisecond,
		Logger:         quietLogger(),
	})
	r := sc.Fetch(context.Background(), station.Station{ID: "x", URL: srv.URL})
	if r.OK() {
		t.Fatal("expected timeout error")
	}
}

type panicStrategy struct{}

func (panicStrategy) Name() string { return "boom" }

func (panicStrategy) Fetch(context.Context, station.Station) (Reading, error) {
	panic("layout changed")
}

func TestScraper_PanicRecorded(t *testing.T) {
	sc := newTestScraper()
	sc.Register("boom", panicStrategy{})

	r := sc.Fetch(context.Background(), station.Station{ID: "x", URL: "https://example.invalid", Type: "boom"})
	if r.Error != "exception: layout changed" {
		t.Errorf("error = %q, want exception: layout changed", r.Error)
	}
}

func TestScraper_StrategyFor(t *testing.T) {
	sc := newTestScraper()
	tests := map[string]string{
		station.TypeMeteoProject: tableStrategyName,
		station.TypeTable:        tableStrategyName,
		station.TypeFeed:         feedStrategyName,
		station.TypeMontorio:     pageStrategyName,
		station.TypeMeteonline:   pageStrategyName,
		"":                       pageStrategyName,
	}
	for tag, want := range tests {
		if got := sc.StrategyFor(tag).Name(); got != want {
			t.Errorf("StrategyFor(%q) = %q, want %q", tag, got, want)
		}
	}
}
