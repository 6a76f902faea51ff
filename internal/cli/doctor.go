package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/janusbot/janus/internal/config"
	"github.com/janusbot/janus/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config, output directory and history database",
	RunE:  doctorAction,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// staleDays is how long a station may go without a successful fetch before doctor flags it.
const staleDays = 2

func doctorAction(cmd *cobra.Command, _ []string) error {
	ok := true

	// Config dir is optional: without it the built-in defaults apply.
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printInfo("config directory %s not found, using defaults (run 'janus init')", configDir)
	} else {
		printCheck(true, "config directory %s", configDir)
	}

	cfg, err := loadConfig()
	if err != nil {
		printCheck(false, "config.yaml: %v", err)
		return fmt.Errorf("some checks failed")
	}
	printCheck(true, "config (%d stations, delay %s)", len(cfg.Stations), cfg.Fetch.Delay.Duration)

	if err := checkWritableDir(filepath.Dir(cfg.Output.Path)); err != nil {
		printCheck(false, "output directory: %v", err)
		ok = false
	} else {
		printCheck(true, "output directory %s", filepath.Dir(cfg.Output.Path))
	}

	if !cfg.Storage.On() {
		printInfo("history disabled (storage.enabled: false)")
	} else {
		db, err := store.Open(cfg.Storage.Path)
		if err != nil {
			printCheck(false, "database: %v", err)
			ok = false
		} else {
			defer func() { _ = db.Close() }()
			printCheck(true, "database %s", cfg.Storage.Path)
			checkStationHealth(cmd.Context(), db, cfg)
		}
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

// checkWritableDir creates dir if needed and probes it with a temp file.
func checkWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".janus-doctor-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func checkStationHealth(ctx context.Context, db *store.Store, cfg *config.Config) {
	if ctx == nil {
		ctx = context.Background()
	}

	stats, err := db.GetStationStats(ctx, time.Now().AddDate(0, 0, -cfg.Storage.RetainDays))
	if err != nil || len(stats) == 0 {
		return
	}

	configured := make(map[string]bool, len(cfg.Stations))
	for _, st := range cfg.Stations {
		configured[st.ID] = true
	}

	staleThreshold := time.Now().AddDate(0, 0, -staleDays)
	fmt.Println()
	for _, s := range stats {
		if !configured[s.StationID] {
			continue
		}
		switch {
		case s.LastSuccess.IsZero():
			printInfo("never succeeded: %s (%d runs, last error: %s)", s.StationID, s.Runs, s.LastError)
		case s.LastSuccess.Before(staleThreshold):
			daysAgo := int(time.Since(s.LastSuccess).Hours() / 24)
			printInfo("stale: %s, last success %d days ago", s.StationID, daysAgo)
		}
	}
}

func printCheck(pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Printf("[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Printf("[INFO] %s\n", fmt.Sprintf(format, args...))
}
