// Package store keeps a SQLite history of fetch runs and station readings.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/janusbot/janus/internal/snapshot"
	"github.com/janusbot/janus/internal/source"
)

type Store struct {
	db *sql.DB
}

// StationStats aggregates the history of one station.
type StationStats struct {
	StationID       string
	Name            string
	Runs            int
	Failures        int
	LastFetched     time.Time
	LastSuccess     time.Time // zero when the station never succeeded
	LastTemperature *float64
	LastError       string
}

// SuccessRate is the share of runs without error, in percent.
func (s StationStats) SuccessRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Runs-s.Failures) / float64(s.Runs) * 100
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordSnapshot stores one run and every station reading in it. Returns the run id.
func (s *Store) RecordSnapshot(ctx context.Context, doc *snapshot.Document) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("store is not initialized")
	}
	if doc == nil {
		return 0, errors.New("snapshot is required")
	}
	if doc.GeneratedAt.IsZero() {
		return 0, errors.New("generated_at is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO runs(generated_at, stations, failures) VALUES(?, ?, ?)",
		formatTime(doc.GeneratedAt), len(doc.Stations), doc.Failures(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO readings (
			run_id, station_id, name, url, fetched_at, timestamp, temperature, humidity, rain_mm, wind, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare reading insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, id := range doc.IDs() {
		e := doc.Stations[id]
		r := e.Data
		if _, err := stmt.ExecContext(ctx,
			runID,
			id,
			e.Meta.Name,
			r.URL,
			formatTime(r.FetchedAt),
			nullString(r.Timestamp),
			nullFloat(r.Temperature),
			nullFloat(r.Humidity),
			nullFloat(r.RainMM),
			nullString(r.Wind),
			nullString(r.Error),
		); err != nil {
			return 0, fmt.Errorf("insert reading %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit snapshot: %w", err)
	}
	return runID, nil
}

// LatestReadings returns the readings of the most recent run, keyed by station id.
func (s *Store) LatestReadings(ctx context.Context) (map[string]source.Reading, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT station_id, url, fetched_at, timestamp, temperature, humidity, rain_mm, wind, error
		FROM readings
		WHERE run_id = (SELECT MAX(id) FROM runs)
	`)
	if err != nil {
		return nil, fmt.Errorf("latest readings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]source.Reading)
	for rows.Next() {
		var (
			id, fetchedAt               string
			r                           source.Reading
			ts, wind, errText           sql.NullString
			temperature, humidity, rain sql.NullFloat64
		)
		if err := rows.Scan(&id, &r.URL, &fetchedAt, &ts, &temperature, &humidity, &rain, &wind, &errText); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		r.FetchedAt, err = parseTime(fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("parse fetched_at: %w", err)
		}
		r.Timestamp = ts.String
		r.Wind = wind.String
		r.Error = errText.String
		r.Temperature = floatPtr(temperature)
		r.Humidity = floatPtr(humidity)
		r.RainMM = floatPtr(rain)
		out[id] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate readings: %w", err)
	}
	return out, nil
}

// GetStationStats returns per-station aggregates for runs since the given time.
func (s *Store) GetStationStats(ctx context.Context, since time.Time) ([]StationStats, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.station_id,
			MAX(r.name),
			COUNT(*) AS runs,
			SUM(CASE WHEN r.error IS NOT NULL THEN 1 ELSE 0 END) AS failures,
			MAX(r.fetched_at) AS last_fetched,
			MAX(CASE WHEN r.error IS NULL THEN r.fetched_at END) AS last_success,
			(SELECT l.temperature FROM readings l
				WHERE l.station_id = r.station_id AND l.temperature IS NOT NULL AND l.fetched_at >= ?
				ORDER BY l.fetched_at DESC LIMIT 1) AS last_temperature,
			(SELECT l.error FROM readings l
				WHERE l.station_id = r.station_id AND l.fetched_at >= ?
				ORDER BY l.fetched_at DESC LIMIT 1) AS last_error
		FROM readings r
		WHERE r.fetched_at >= ?
		GROUP BY r.station_id
		ORDER BY r.station_id
	`, formatTime(since), formatTime(since), formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("get station stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []StationStats
	for rows.Next() {
		var (
			st                     StationStats
			lastFetched            string
			lastSuccess, lastError sql.NullString
			lastTemperature        sql.NullFloat64
		)
		if err := rows.Scan(&st.StationID, &st.Name, &st.Runs, &st.Failures,
			&lastFetched, &lastSuccess, &lastTemperature, &lastError); err != nil {
			return nil, fmt.Errorf("scan station stats: %w", err)
		}
		if st.LastFetched, err = parseTime(lastFetched); err != nil {
			return nil, fmt.Errorf("parse last_fetched: %w", err)
		}
		if st.LastSuccess, err = parseTime(lastSuccess.String); err != nil {
			return nil, fmt.Errorf("parse last_success: %w", err)
		}
		st.LastTemperature = floatPtr(lastTemperature)
		st.LastError = lastError.String
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate station stats: %w", err)
	}

	return stats, nil
}

// CountRuns returns the number of recorded runs.
func (s *Store) CountRuns(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("store is not initialized")
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("count runs: %w", err)
	}
	return n, nil
}

// PruneOld deletes runs older than retainDays together with their readings.
// Returns the number of runs removed.
func (s *Store) PruneOld(ctx context.Context, retainDays int) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("store is not initialized")
	}
	if retainDays <= 0 {
		return 0, nil
	}

	cutoff := formatTime(time.Now().AddDate(0, 0, -retainDays))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// foreign_keys is per connection, so readings are not left to the cascade.
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM readings WHERE run_id IN (SELECT id FROM runs WHERE generated_at < ?)", cutoff,
	); err != nil {
		return 0, fmt.Errorf("prune old readings: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE generated_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune old runs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}

	n, _ := res.RowsAffected()
	return n, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// timeLayout is fixed width so stored timestamps sort as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(timeLayout, value); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}
