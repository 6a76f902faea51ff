// Package station holds the static list of weather stations janus tracks.
package station

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Fetch-strategy tags. Tags not listed here fall back to the generic page preview.
const (
	TypeMeteoProject = "meteoproject"
	TypeTable        = "table"
	TypeFeed         = "feed"
	TypeARPAV        = "arpav"
	TypeEvrgreen     = "evrgreen"
	TypeMontorio     = "montorio"
	TypeMeteonline   = "meteonline"
	TypeGeneric      = "generic"
)

// Row selectors for table stations.
const (
	RowFirst = "first"
	RowLast  = "last"
)

// Station describes one external weather-data source.
type Station struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Type string `yaml:"type"`
	Row  string `yaml:"row,omitempty"` // "first" (default) or "last"; table stations only
}

// Defaults returns the built-in station list.
func Defaults() []Station {
	return []Station{
		{ID: "grezzana", Name: "Grezzana (ARPAV)", URL: "https://wwwold.arpa.veneto.it/bollettini/meteo/h24/img12/Mappa_TEMP.htm?x=24060", Type: TypeARPAV},
		{ID: "marzana", Name: "Marzana", URL: "https://stazioni.meteoproject.it/dati/marzana/", Type: TypeMeteoProject},
		{ID: "torricelle", Name: "Torricelle", URL: "https://stazioni.meteoproject.it/dati/torricelle/", Type: TypeMeteoProject},
		{ID: "gazzego", Name: "Contrada Gazzego", URL: "https://evrgreen.it/", Type: TypeEvrgreen},
		{ID: "belvedere", Name: "Via Belvedere", URL: "https://evrgreen.it/", Type: TypeEvrgreen},
		{ID: "biancospini", Name: "Via dei Biancospini", URL: "https://evrgreen.it/", Type: TypeEvrgreen},
		{ID: "montorio", Name: "Montorio", URL: "https://www.montorioveronese.it/template/indexDesktop.php", Type: TypeMontorio},
		{ID: "antonio_legnago", Name: "Via Antonio da Legnago", URL: "https://evrgreen.it/", Type: TypeEvrgreen},
		{ID: "borgo_venezia", Name: "Borgo Venezia", URL: "https://www.meteonlinebvvr.altervista.org/", Type: TypeMeteonline},
		{ID: "forte_san_mattia", Name: "Forte San Mattia", URL: "https://evrgreen.it/", Type: TypeEvrgreen},
	}
}

// Validate checks that ids are present and unique, URLs are absolute http(s)
// and row selectors are known.
func Validate(stations []Station) error {
	if len(stations) == 0 {
		return errors.New("at least one station is required")
	}

	seen := make(map[string]bool, len(stations))
	for i, st := range stations {
		id := strings.TrimSpace(st.ID)
		if id == "" {
			return fmt.Errorf("station %d: id is required", i)
		}
		if seen[id] {
			return fmt.Errorf("station %q: duplicate id", id)
		}
		seen[id] = true

		u, err := url.Parse(st.URL)
		if err != nil {
			return fmt.Errorf("station %q: parse url: %w", id, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("station %q: url %q must be absolute http(s)", id, st.URL)
		}

		switch st.Row {
		case "", RowFirst, RowLast:
		default:
			return fmt.Errorf("station %q: unknown row %q (want first or last)", id, st.Row)
		}
	}
	return nil
}

// Filter returns the stations whose ids are listed in ids, keeping list order.
// An empty ids slice returns all stations. Unknown ids are an error.
func Filter(stations []Station, ids []string) ([]Station, error) {
	if len(ids) == 0 {
		return stations, nil
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[strings.TrimSpace(id)] = true
	}

	var out []Station
	for _, st := range stations {
		if want[st.ID] {
			out = append(out, st)
			delete(want, st.ID)
		}
	}
	for id := range want {
		return nil, fmt.Errorf("unknown station %q", id)
	}
	return out, nil
}
