package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/janusbot/janus/internal/collector"
	"github.com/janusbot/janus/internal/config"
	"github.com/janusbot/janus/internal/digest"
	"github.com/janusbot/janus/internal/snapshot"
	"github.com/janusbot/janus/internal/source"
	"github.com/janusbot/janus/internal/station"
	"github.com/janusbot/janus/internal/store"
)

var (
	fetchOutput string
	fetchOnly   string
	fetchFormat string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch every station and write the JSON snapshot",
	RunE:  fetchAction,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "snapshot path (overrides config)")
	fetchCmd.Flags().StringVar(&fetchOnly, "only", "", "comma-separated station ids to fetch")
	fetchCmd.Flags().StringVar(&fetchFormat, "format", "", "print a summary: terminal, markdown, json")
	rootCmd.AddCommand(fetchCmd)
}

func fetchAction(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	var formatter digest.Formatter
	if fetchFormat != "" {
		formatter, err = digest.New(fetchFormat, useColor(os.Stdout))
		if err != nil {
			return fmt.Errorf("--format: %w", err)
		}
	}

	stations, err := station.Filter(cfg.Stations, splitIDs(fetchOnly))
	if err != nil {
		return fmt.Errorf("--only: %w", err)
	}

	outputPath := cfg.Output.Path
	if fetchOutput != "" {
		outputPath = fetchOutput
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	doc := collect(ctx, cfg, stations, log)

	if err := snapshot.Write(outputPath, doc); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	fmt.Printf("Wrote %s (%d stations, %d failed)\n", outputPath, len(doc.Stations), doc.Failures())

	if cfg.Storage.On() {
		// History is best effort; the snapshot is already on disk.
		if err := recordHistory(ctx, cfg, doc); err != nil {
			log.Warn("history not recorded", "path", cfg.Storage.Path, "error", err)
		}
	}

	if formatter != nil {
		fmt.Println()
		return formatter.Format(os.Stdout, doc)
	}
	return nil
}

func collect(ctx context.Context, cfg *config.Config, stations []station.Station, log *slog.Logger) *snapshot.Document {
	sc := source.NewScraper(source.Options{
		UserAgent:      cfg.Fetch.UserAgent,
		TableTimeout:   cfg.Fetch.TableTimeout.Duration,
		GenericTimeout: cfg.Fetch.GenericTimeout.Duration,
		Logger:         log,
	})
	c := collector.New(sc, cfg.Fetch.Delay.Duration, cfg.Output.IntervalMinutes, log)
	return c.Run(ctx, stations)
}

func recordHistory(ctx context.Context, cfg *config.Config, doc *snapshot.Document) error {
	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.RecordSnapshot(ctx, doc); err != nil {
		return err
	}
	if _, err := db.PruneOld(ctx, cfg.Storage.RetainDays); err != nil {
		return err
	}
	return nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}
