package source

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/janusbot/janus/internal/station"
)

const feedStrategyName = "feed"

var (
	lineBreakRe  = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</li>|</tr>|</div>`)
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	fieldSplitRe = regexp.MustCompile(`[\n;|]+`)
	spacesRe     = regexp.MustCompile(`[ \t\r]+`)
)

// FeedStrategy reads a station's RSS/Atom feed, as published by Cumulus or
// Weather Display, and normalizes the newest item.
type FeedStrategy struct {
	client  *http.Client
	timeout time.Duration
}

// NewFeed creates a feed strategy with a per-request timeout.
func NewFeed(client *http.Client, timeout time.Duration) *FeedStrategy {
	return &FeedStrategy{client: client, timeout: timeout}
}

func (fs *FeedStrategy) Name() string {
	return feedStrategyName
}

func (fs *FeedStrategy) Fetch(ctx context.Context, st station.Station) (Reading, error) {
	if fs.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, fs.timeout)
		defer cancel()
	}

	fp := gofeed.NewParser()
	fp.Client = fs.client
	feed, err := fp.ParseURLWithContext(st.URL, ctx)
	if err != nil {
		return Reading{}, fmt.Errorf("fetch %s: %w", st.URL, err)
	}

	item := newestItem(feed)
	if item == nil {
		return Reading{}, errors.New("feed has no items")
	}

	raw := item.Content
	if raw == "" {
		raw = item.Description
	}

	r := normalizeWith(parseFields(raw), feedKeys)
	if r.Timestamp == "" {
		if t := itemPublishedTime(item); !t.IsZero() {
			r.Timestamp = t.UTC().Format(time.RFC3339)
		}
	}

	preview := stripHTML(raw)
	if item.Title != "" && !strings.Contains(preview, item.Title) {
		preview = item.Title + " " + preview
	}
	r.RawPreview = firstNRunes(strings.TrimSpace(preview), genericPreviewRunes)

	return r, nil
}

// newestItem picks the item with the latest timestamp, or the first item
// when none carry one.
func newestItem(feed *gofeed.Feed) *gofeed.Item {
	if feed == nil || len(feed.Items) == 0 {
		return nil
	}
	best := feed.Items[0]
	bestAt := itemPublishedTime(best)
	for _, item := range feed.Items[1:] {
		if at := itemPublishedTime(item); at.After(bestAt) {
			best, bestAt = item, at
		}
	}
	return best
}

func itemPublishedTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}

// parseFields turns "Temperature: 12.3 °C<br>Humidity: 85%" style markup
// into a lower-cased key/value row.
func parseFields(raw string) map[string]string {
	text := lineBreakRe.ReplaceAllString(raw, "\n")
	text = htmlTagRe.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)

	row := make(map[string]string)
	for _, part := range fieldSplitRe.Split(text, -1) {
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(spacesRe.ReplaceAllString(key, " ")))
		value = strings.TrimSpace(spacesRe.ReplaceAllString(value, " "))
		if key == "" || value == "" {
			continue
		}
		if _, dup := row[key]; !dup {
			row[key] = value
		}
	}
	return row
}

func stripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
