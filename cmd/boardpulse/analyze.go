package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/BoardPulse/internal/config"
	"github.com/IshaanNene/BoardPulse/internal/observability"
	"github.com/IshaanNene/BoardPulse/internal/sentiment"
	"github.com/IshaanNene/BoardPulse/internal/storage"
	"github.com/IshaanNene/BoardPulse/internal/types"
	"github.com/IshaanNene/BoardPulse/internal/wordfreq"
)

// sentimentCmd creates the "sentiment" subcommand.
func sentimentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sentiment",
		Short: "Score a raw dataset and write the enriched dataset",
		Long:  "Split every post body into sentences, score them and add good_count, bad_count and avg_score columns.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closeLog, err := loadConfig()
			if err != nil {
				return err
			}
			defer closeLog()

			metrics := newMetrics(cfg, logger)
			defer metrics.LogSnapshot("run metrics")

			input := inputPath
			if input == "" {
				input = cfg.Storage.OutputPath
			}
			ds, err := storage.ReadDataset(input, inputFormat)
			if err != nil {
				return fmt.Errorf("read dataset: %w", err)
			}
			logger.Info("dataset loaded", "path", input, "rows", len(ds))
			return scoreAndStore(cfg, ds, logger, metrics)
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "raw dataset path (default: storage.output_path)")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "raw dataset format: csv, jsonl, sqlite (default: detect)")
	cmd.Flags().StringVarP(&scoredPath, "output", "o", "", "scored dataset output path")
	cmd.Flags().StringVarP(&outputType, "format", "f", "", "output format: csv, jsonl, sqlite")
	cmd.Flags().StringVar(&locale, "header-locale", "", "CSV header language: en, zh")
	return cmd
}

func newAggregator(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*sentiment.Aggregator, error) {
	tok, err := wordfreq.NewGseTokenizer(cfg.Tokenizer.Dict, cfg.Tokenizer.HMM)
	if err != nil {
		return nil, err
	}
	lex, err := sentiment.LoadLexicon(cfg.Sentiment.LexiconPath)
	if err != nil {
		return nil, err
	}
	return sentiment.NewAggregator(
		sentiment.PunctSegmenter{},
		sentiment.NewLexiconScorer(tok, lex),
		logger,
		sentiment.WithMissingToken(cfg.Sentiment.MissingToken),
		sentiment.WithMetrics(metrics),
	), nil
}

func scoreAndStore(cfg *config.Config, ds types.Dataset, logger *slog.Logger, metrics *observability.Metrics) error {
	agg, err := newAggregator(cfg, logger, metrics)
	if err != nil {
		return fmt.Errorf("create scorer: %w", err)
	}
	rows := agg.ScoreDataset(ds)
	if err := writeDataset(cfg, cfg.Storage.ScoredPath, rows, true, logger, metrics); err != nil {
		return err
	}
	logger.Info("sentiment complete", "rows", len(rows), "output", cfg.Storage.ScoredPath)
	return nil
}

// wordfreqCmd creates the "wordfreq" subcommand. Only an input file that
// cannot be opened is an error; an unreadable or empty dataset is reported
// as having no content.
func wordfreqCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wordfreq",
		Short: "Print the word frequency ranking of a raw dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closeLog, err := loadConfig()
			if err != nil {
				return err
			}
			defer closeLog()

			metrics := newMetrics(cfg, logger)
			defer metrics.LogSnapshot("run metrics")

			input := inputPath
			if input == "" {
				input = cfg.Storage.OutputPath
			}
			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open dataset: %w", err)
			}
			f.Close()

			ds, err := storage.ReadDataset(input, inputFormat)
			if err != nil {
				logger.Warn("dataset could not be parsed", "path", input, "error", err)
				ds = nil
			}
			if len(ds) == 0 {
				return printRanking(cmd.OutOrStdout(), input, nil, wordfreq.ErrNoContent)
			}

			tok, err := wordfreq.NewGseTokenizer(cfg.Tokenizer.Dict, cfg.Tokenizer.HMM)
			if err != nil {
				return fmt.Errorf("create tokenizer: %w", err)
			}
			entries, err := wordfreq.NewAnalyzer(tok, logger, metrics).Analyze(ds)
			return printRanking(cmd.OutOrStdout(), input, entries, err)
		},
	}
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "raw dataset path (default: storage.output_path)")
	cmd.Flags().StringVar(&inputFormat, "input-format", "", "raw dataset format: csv, jsonl, sqlite (default: detect)")
	cmd.Flags().IntVarP(&topN, "top", "n", 0, "print only the N most frequent tokens (0 = all)")
	cmd.Flags().BoolVar(&asMarkdown, "markdown", false, "print the ranking as a Markdown table")
	return cmd
}

func printRanking(w io.Writer, source string, entries []wordfreq.Entry, err error) error {
	if errors.Is(err, wordfreq.ErrNoContent) {
		fmt.Fprintln(w, wordfreq.ErrNoContent.Error())
		return nil
	}
	if err != nil {
		return err
	}
	entries = wordfreq.Top(entries, topN)
	if asMarkdown {
		return wordfreq.WriteMarkdown(w, source, entries)
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\n", e.Token, e.Count)
	}
	return nil
}
