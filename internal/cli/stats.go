package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/janusbot/janus/internal/store"
)

var (
	statsSince  string
	statsFormat string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-station fetch history",
	RunE:  statsAction,
}

func init() {
	statsCmd.Flags().StringVar(&statsSince, "since", "7d", "time window (e.g. 7d, 48h)")
	statsCmd.Flags().StringVar(&statsFormat, "format", "terminal", "output format: terminal, json")
	rootCmd.AddCommand(statsCmd)
}

func statsAction(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sinceDur, err := parseDuration(statsSince)
	if err != nil {
		return fmt.Errorf("parse --since: %w", err)
	}

	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	stats, err := db.GetStationStats(cmd.Context(), time.Now().Add(-sinceDur))
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	switch statsFormat {
	case "json":
		return printStatsJSON(os.Stdout, stats)
	case "terminal", "":
		if len(stats) == 0 {
			fmt.Println("No history found. Run 'janus fetch' first.")
			return nil
		}
		printStats(os.Stdout, stats, sinceDur)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want terminal or json)", statsFormat)
	}
}

type jsonStationStats struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Runs            int        `json:"runs"`
	Failures        int        `json:"failures"`
	SuccessPct      float64    `json:"success_pct"`
	LastFetched     time.Time  `json:"last_fetched"`
	LastSuccess     *time.Time `json:"last_success,omitempty"`
	LastTemperature *float64   `json:"last_temperature,omitempty"`
	LastError       string     `json:"last_error,omitempty"`
}

func printStatsJSON(w io.Writer, stats []store.StationStats) error {
	out := struct {
		Stations []jsonStationStats `json:"stations"`
	}{Stations: make([]jsonStationStats, 0, len(stats))}

	for _, s := range stats {
		js := jsonStationStats{
			ID:              s.StationID,
			Name:            s.Name,
			Runs:            s.Runs,
			Failures:        s.Failures,
			SuccessPct:      s.SuccessRate(),
			LastFetched:     s.LastFetched,
			LastTemperature: s.LastTemperature,
			LastError:       s.LastError,
		}
		if !s.LastSuccess.IsZero() {
			ls := s.LastSuccess
			js.LastSuccess = &ls
		}
		out.Stations = append(out.Stations, js)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printStats(w io.Writer, stats []store.StationStats, since time.Duration) {
	runs := 0
	failures := 0
	nameWidth := len("Station")
	for _, s := range stats {
		runs += s.Runs
		failures += s.Failures
		nameWidth = max(nameWidth, runewidth.StringWidth(s.Name))
	}
	nameWidth = min(nameWidth, 32)

	_, _ = fmt.Fprintf(w, "janus stats — %s, %d readings from %d stations, %.0f%% ok\n\n",
		formatStatsDuration(since), runs, len(stats), pct(runs-failures, runs))

	_, _ = fmt.Fprintf(w, "  %s  %4s  %6s  %7s  %8s  %-16s  %s\n",
		runewidth.FillRight("Station", nameWidth), "Runs", "Failed", "Success", "Temp", "Last success", "Last error")
	for _, s := range stats {
		name := runewidth.Truncate(s.Name, nameWidth, "…")
		temp := "-"
		if s.LastTemperature != nil {
			temp = fmt.Sprintf("%.1f °C", *s.LastTemperature)
		}
		lastSuccess := "never"
		if !s.LastSuccess.IsZero() {
			lastSuccess = s.LastSuccess.Local().Format("2006-01-02 15:04")
		}
		_, _ = fmt.Fprintf(w, "  %s  %4d  %6d  %6.0f%%  %8s  %-16s  %s\n",
			runewidth.FillRight(name, nameWidth), s.Runs, s.Failures, s.SuccessRate(), temp, lastSuccess, s.LastError)
	}
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// parseDuration handles both Go durations and "Nd" day notation.
func parseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func formatStatsDuration(d time.Duration) string {
	hours := int(d.Hours())
	if hours >= 24 && hours%24 == 0 {
		return fmt.Sprintf("%d days", hours/24)
	}
	return fmt.Sprintf("%dh", hours)
}
