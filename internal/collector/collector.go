// Package collector runs the sequential fetch loop over the station list.
package collector

import (
	"context"
	"log/slog"
	"time"

	"github.com/janusbot/janus/internal/snapshot"
	"github.com/janusbot/janus/internal/source"
	"github.com/janusbot/janus/internal/station"
)

// Fetcher returns the reading of one station. Errors are reported in the
// reading, never as a return value.
type Fetcher interface {
	Fetch(ctx context.Context, st station.Station) source.Reading
}

// Collector fetches stations one at a time with a fixed pause between requests.
type Collector struct {
	fetcher  Fetcher
	delay    time.Duration
	interval int
	log      *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a collector. interval is the refresh hint, in minutes, written
// into every snapshot.
func New(fetcher Fetcher, delay time.Duration, interval int, log *slog.Logger) *Collector {
	if log == nil {
		log = slog.Default()
	}
	return &Collector{
		fetcher:  fetcher,
		delay:    delay,
		interval: interval,
		log:      log,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Run fetches every station in order and returns the snapshot. Every station
// id appears in the result exactly once. When ctx is canceled the remaining
// stations are recorded with a "canceled" error.
func (c *Collector) Run(ctx context.Context, stations []station.Station) *snapshot.Document {
	doc := snapshot.New(c.now(), c.interval)

	for i, st := range stations {
		var r source.Reading
		if err := ctx.Err(); err != nil {
			r = source.Reading{Error: "canceled"}
		} else {
			c.log.Info("fetching", "station", st.ID, "url", st.URL)
			r = c.fetcher.Fetch(ctx, st)
		}

		r.FetchedAt = c.now().UTC()
		r.URL = st.URL
		doc.Add(st, r)

		if i < len(stations)-1 && ctx.Err() == nil {
			// A canceled sleep is picked up by the ctx check above.
			_ = c.sleep(ctx, c.delay)
		}
	}

	c.log.Info("collected", "stations", len(stations), "failures", doc.Failures())
	return doc
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
