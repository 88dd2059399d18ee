package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/BoardPulse/internal/config"
	"github.com/IshaanNene/BoardPulse/internal/crawler"
	"github.com/IshaanNene/BoardPulse/internal/fetcher"
	"github.com/IshaanNene/BoardPulse/internal/observability"
	"github.com/IshaanNene/BoardPulse/internal/storage"
	"github.com/IshaanNene/BoardPulse/internal/types"
)

func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&startPage, "start", "s", -1, "newest listing page to crawl (0 = discover, -1 = use config)")
	cmd.Flags().IntVarP(&pages, "pages", "p", 0, "number of listing pages to walk backward (0 = use config)")
	cmd.Flags().StringVarP(&boardName, "board", "b", "", "board name, e.g. Food")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "fetcher type: http, browser")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "raw dataset output path")
	cmd.Flags().StringVarP(&outputType, "format", "f", "", "output format: csv, jsonl, sqlite")
	cmd.Flags().StringVar(&locale, "header-locale", "", "CSV header language: en, zh")
}

// crawlCmd creates the "crawl" subcommand.
func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl a board and write the raw dataset",
		Long:  "Walk listing pages from the start page backward, extract every post body and write one row per post.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closeLog, err := loadConfig()
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, cancel := signalContext(logger)
			defer cancel()

			metrics := newMetrics(cfg, logger)
			defer metrics.LogSnapshot("run metrics")

			_, err = crawlAndStore(ctx, cfg, logger, metrics)
			return err
		},
	}
	addCrawlFlags(cmd)
	return cmd
}

// runCmd creates the "run" subcommand: crawl, then score the fresh dataset.
func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Crawl a board, then score the posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closeLog, err := loadConfig()
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, cancel := signalContext(logger)
			defer cancel()

			metrics := newMetrics(cfg, logger)
			defer metrics.LogSnapshot("run metrics")

			ds, err := crawlAndStore(ctx, cfg, logger, metrics)
			if err != nil {
				return err
			}
			return scoreAndStore(cfg, ds, logger, metrics)
		},
	}
	addCrawlFlags(cmd)
	cmd.Flags().StringVar(&scoredPath, "scored", "", "scored dataset output path")
	return cmd
}

// crawlAndStore runs the crawl and writes whatever was gathered, even when
// the crawl was interrupted.
func crawlAndStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (types.Dataset, error) {
	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Error("fetcher close error", "error", err)
		}
	}()

	c := crawler.New(cfg, f, logger, crawler.WithMetrics(metrics))

	start := time.Now()
	ds, crawlErr := c.Crawl(ctx, cfg.Crawl.StartPage, cfg.Crawl.Pages)
	if crawlErr != nil && len(ds) == 0 {
		return nil, fmt.Errorf("crawl: %w", crawlErr)
	}
	if crawlErr != nil {
		logger.Warn("crawl interrupted, writing partial dataset", "records", len(ds), "error", crawlErr)
	}

	if err := writeDataset(cfg, cfg.Storage.OutputPath, types.Unscored(ds), false, logger, metrics); err != nil {
		return nil, err
	}

	logger.Info("crawl complete",
		"elapsed", time.Since(start).Round(time.Millisecond),
		"records", len(ds),
		"output", cfg.Storage.OutputPath,
	)
	if crawlErr != nil {
		return ds, fmt.Errorf("crawl: %w", crawlErr)
	}
	return ds, nil
}

func writeDataset(cfg *config.Config, path string, rows []types.ScoredRecord, scored bool, logger *slog.Logger, metrics *observability.Metrics) error {
	store, err := storage.NewStorage(cfg, path, scored, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	if err := storage.WriteAll(store, rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	metrics.RecordsStored.Add(int64(len(rows)))
	return nil
}
