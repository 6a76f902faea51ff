package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/janusbot/janus/internal/station"
)

// Options configures the strategies a Scraper dispatches to.
type Options struct {
	Client         *http.Client
	UserAgent      string
	TableTimeout   time.Duration
	GenericTimeout time.Duration
	Logger         *slog.Logger
}

// Scraper maps station type tags onto fetch strategies.
type Scraper struct {
	strategies map[string]Strategy
	fallback   Strategy
	log        *slog.Logger
}

// NewScraper builds the default tag table: meteoproject and table pages go
// through the table extractor, feed stations through the feed reader, and
// every other tag gets a generic page preview.
func NewScraper(opts Options) *Scraper {
	client := opts.Client
	if client == nil {
		client = NewHTTPClient(opts.UserAgent)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	table := NewTable(client, opts.TableTimeout)
	page := NewPage(client, opts.GenericTimeout)
	feed := NewFeed(client, opts.GenericTimeout)

	return &Scraper{
		strategies: map[string]Strategy{
			station.TypeMeteoProject: table,
			station.TypeTable:        table,
			station.TypeFeed:         feed,
		},
		fallback: page,
		log:      log,
	}
}

// Register binds a type tag to a strategy, replacing any existing binding.
func (s *Scraper) Register(tag string, strategy Strategy) {
	s.strategies[tag] = strategy
}

// StrategyFor returns the strategy used for a type tag.
func (s *Scraper) StrategyFor(tag string) Strategy {
	if strategy, ok := s.strategies[tag]; ok {
		return strategy
	}
	return s.fallback
}

// Fetch runs the station's strategy. It never fails: errors and panics are
// recorded in Reading.Error.
func (s *Scraper) Fetch(ctx context.Context, st station.Station) (r Reading) {
	strategy := s.StrategyFor(st.Type)

	defer func() {
		if p := recover(); p != nil {
			s.log.Error("strategy panicked", "station", st.ID, "strategy", strategy.Name(), "panic", p)
			r = Reading{Error: fmt.Sprintf("exception: %v", p)}
		}
	}()

	r, err := strategy.Fetch(ctx, st)
	if err != nil {
		s.log.Warn("fetch failed", "station", st.ID, "strategy", strategy.Name(), "error", err)
		return Reading{Error: err.Error()}
	}
	s.log.Debug("fetched", "station", st.ID, "strategy", strategy.Name(), "row", r.RawRow != nil)
	return r
}
