package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/BoardPulse/internal/config"
	"github.com/IshaanNene/BoardPulse/internal/observability"
)

var (
	cfgFile     string
	verbose     bool
	startPage   int
	pages       int
	boardName   string
	fetcherType string
	outputPath  string
	scoredPath  string
	inputPath   string
	inputFormat string
	outputType  string
	locale      string
	topN        int
	asMarkdown  bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "boardpulse",
		Short: "BoardPulse: forum board crawler and sentiment analyzer",
		Long: `BoardPulse crawls a PTT-style forum board, extracts the text of every post,
scores each post's sentences for sentiment and counts word frequencies.

Commands:
  crawl      walk listing pages newest first and write the raw dataset
  sentiment  score a raw dataset and write the enriched dataset
  wordfreq   print a word frequency ranking of a raw dataset
  run        crawl then score, in one go`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(sentimentCmd())
	rootCmd.AddCommand(wordfreqCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())
	return rootCmd
}

// loadConfig loads, overrides and validates the configuration, then builds
// the logger it describes.
func loadConfig() (*config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	applyCLIOverrides(cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	switch inputFormat {
	case "", "csv", "jsonl", "sqlite":
	default:
		return nil, nil, nil, fmt.Errorf("--input-format must be csv, jsonl or sqlite, got %q", inputFormat)
	}

	logger, closeLog, err := setupLogger(&cfg.Logging)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, closeLog, nil
}

// setupLogger creates a structured logger from the logging config.
func setupLogger(lc *config.LoggingConfig) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	switch strings.ToLower(lc.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stderr
	closeFn := func() {}
	switch lc.Output {
	case "", "stderr":
	case "stdout":
		out = os.Stdout
	default:
		f, err := os.OpenFile(lc.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if lc.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler), closeFn, nil
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if startPage >= 0 {
		cfg.Crawl.StartPage = startPage
	}
	if pages > 0 {
		cfg.Crawl.Pages = pages
	}
	if boardName != "" {
		cfg.Board.Name = boardName
	}
	if fetcherType != "" {
		cfg.Fetcher.Type = strings.ToLower(fetcherType)
	}
	if outputPath != "" {
		cfg.Storage.OutputPath = outputPath
	}
	if scoredPath != "" {
		cfg.Storage.ScoredPath = scoredPath
	}
	if outputType != "" {
		cfg.Storage.Type = strings.ToLower(outputType)
	}
	if locale != "" {
		cfg.Storage.HeaderLocale = strings.ToLower(locale)
	}
	inputFormat = strings.ToLower(inputFormat)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down...", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// newMetrics creates the run's counters and serves them when enabled.
func newMetrics(cfg *config.Config, logger *slog.Logger) *observability.Metrics {
	metrics := observability.NewMetrics(logger)
	if cfg.Metrics.Enabled {
		metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path)
	}
	return metrics
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "BoardPulse %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Board:\n")
			fmt.Fprintf(w, "  Base URL:          %s\n", cfg.Board.BaseURL)
			fmt.Fprintf(w, "  Name:              %s\n", cfg.Board.Name)
			fmt.Fprintf(w, "\nCrawl:\n")
			fmt.Fprintf(w, "  Start Page:        %d\n", cfg.Crawl.StartPage)
			fmt.Fprintf(w, "  Pages:             %d\n", cfg.Crawl.Pages)
			fmt.Fprintf(w, "  Delay:             %s - %s\n", cfg.Crawl.DelayMin, cfg.Crawl.DelayMax)
			fmt.Fprintf(w, "\nFetcher:\n")
			fmt.Fprintf(w, "  Type:              %s\n", cfg.Fetcher.Type)
			fmt.Fprintf(w, "  Request Timeout:   %s\n", cfg.Fetcher.RequestTimeout)
			fmt.Fprintf(w, "  Max Body Size:     %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Fprintf(w, "\nSentiment:\n")
			fmt.Fprintf(w, "  Lexicon:           %s\n", orDefault(cfg.Sentiment.LexiconPath, "(embedded)"))
			fmt.Fprintf(w, "  Tokenizer Dict:    %s\n", cfg.Tokenizer.Dict)
			fmt.Fprintf(w, "\nStorage:\n")
			fmt.Fprintf(w, "  Type:              %s\n", cfg.Storage.Type)
			fmt.Fprintf(w, "  Output Path:       %s\n", cfg.Storage.OutputPath)
			fmt.Fprintf(w, "  Scored Path:       %s\n", cfg.Storage.ScoredPath)
			fmt.Fprintf(w, "  Header Locale:     %s\n", cfg.Storage.HeaderLocale)
			fmt.Fprintf(w, "  MongoDB Mirror:    %v\n", cfg.Storage.Mongo.Enabled)
			fmt.Fprintf(w, "\nMetrics:\n")
			fmt.Fprintf(w, "  Enabled:           %v\n", cfg.Metrics.Enabled)
			fmt.Fprintf(w, "  Port:              %d\n", cfg.Metrics.Port)
			return nil
		},
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
