package source

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var numberRe = regexp.MustCompile(`-?\d+(\.\d+)?`)

// Header synonyms per canonical field, in priority order.
var (
	timestampKeys   = []string{"data", "ora", "timestamp", "time"}
	temperatureKeys = []string{"temperatura", "temp", "t"}
	humidityKeys    = []string{"umidità", "umidita", "rhum", "rh"}
	rainKeys        = []string{"pioggia", "precipitazione", "rain", "prcp"}
	windKeys        = []string{"vento", "wind", "ws"}
)

// fieldKeys groups the synonym lists used by one normalizer.
type fieldKeys struct {
	timestamp   []string
	temperature []string
	humidity    []string
	rain        []string
	wind        []string
}

var tableKeys = fieldKeys{
	timestamp:   timestampKeys,
	temperature: temperatureKeys,
	humidity:    humidityKeys,
	rain:        rainKeys,
	wind:        windKeys,
}

// Station feeds are usually labelled in English.
var feedKeys = fieldKeys{
	timestamp:   slices.Concat(timestampKeys, []string{"date", "updated"}),
	temperature: slices.Concat(temperatureKeys, []string{"temperature", "outside temperature"}),
	humidity:    slices.Concat(humidityKeys, []string{"humidity", "outside humidity"}),
	rain:        slices.Concat(rainKeys, []string{"rainfall", "rain today", "precipitation"}),
	wind:        slices.Concat(windKeys, []string{"wind speed"}),
}

// ParseNumber extracts the first numeric token from s, reading decimal
// commas as points. "21,4 °C" gives 21.4; "--" gives ok == false.
func ParseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Normalize maps a raw table row onto the canonical reading fields. The
// first synonym present in row wins for each field. The row itself is kept
// as RawRow.
func Normalize(row map[string]string) Reading {
	return normalizeWith(row, tableKeys)
}

func normalizeWith(row map[string]string, keys fieldKeys) Reading {
	var r Reading

	if v, ok := lookup(row, keys.timestamp); ok {
		r.Timestamp = v
	}
	if v, ok := lookup(row, keys.temperature); ok {
		r.Temperature = numberPtr(v)
	}
	if v, ok := lookup(row, keys.humidity); ok {
		r.Humidity = numberPtr(v)
	}
	if v, ok := lookup(row, keys.rain); ok {
		r.RainMM = numberPtr(v)
	}
	if v, ok := lookup(row, keys.wind); ok {
		r.Wind = v
	}

	r.RawRow = row
	return r
}

func lookup(row map[string]string, keys []string) (string, bool) {
	for _, k := range keys {
		if v, ok := row[k]; ok {
			return v, true
		}
	}
	return "", false
}

func numberPtr(s string) *float64 {
	v, ok := ParseNumber(s)
	if !ok {
		return nil
	}
	return &v
}
