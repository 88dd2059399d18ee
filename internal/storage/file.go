package storage

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/IshaanNene/BoardPulse/internal/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MissingValue is written in place of each derived field of a row that
// could not be scored.
const MissingValue = "NaN"

func createOutput(outputPath string) (*os.File, error) {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}

// --- CSV Storage ---

// CSVStorage writes rows with a fixed header: the five raw columns, plus
// the three sentiment columns in scored mode.
type CSVStorage struct {
	path    string
	file    *os.File
	writer  *csv.Writer
	headers []string
	scored  bool
	mu      sync.Mutex
	count   int
	logger  *slog.Logger
}

// NewCSVStorage creates the CSV file and writes its header row, so an empty
// dataset still yields a readable file.
func NewCSVStorage(outputPath, locale string, scored bool, logger *slog.Logger) (*CSVStorage, error) {
	f, err := createOutput(outputPath)
	if err != nil {
		return nil, err
	}

	s := &CSVStorage{
		path:    outputPath,
		file:    f,
		writer:  csv.NewWriter(f),
		headers: Headers(locale, scored),
		scored:  scored,
		logger:  logger.With("component", "csv_storage"),
	}
	if err := s.writer.Write(s.headers); err != nil {
		f.Close()
		return nil, fmt.Errorf("write CSV header: %w", err)
	}
	return s, nil
}

func (s *CSVStorage) Name() string { return "csv" }

func (s *CSVStorage) Store(rows []types.ScoredRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		if err := s.writer.Write(csvRow(row, s.scored)); err != nil {
			return fmt.Errorf("write CSV row: %w", err)
		}
		s.count++
	}

	s.writer.Flush()
	return s.writer.Error()
}

func (s *CSVStorage) Close() error {
	s.logger.Info("CSV written", "path", s.path, "rows", s.count)
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

func csvRow(row types.ScoredRecord, scored bool) []string {
	out := []string{
		row.Date,
		row.Title,
		row.Link,
		strconv.Itoa(row.Push.Value()),
		row.Body,
	}
	if !scored {
		return out
	}
	if row.Sentiment == nil {
		return append(out, MissingValue, MissingValue, MissingValue)
	}
	return append(out,
		strconv.Itoa(row.Sentiment.GoodCount),
		strconv.Itoa(row.Sentiment.BadCount),
		strconv.FormatFloat(row.Sentiment.AvgScore, 'f', -1, 64),
	)
}

// --- JSONL Storage ---

// jsonlRecord is one line of JSONL output. Sentiment fields are null for a
// row that failed scoring, and absent in raw mode.
type jsonlRecord struct {
	Date      string   `json:"date"`
	Title     string   `json:"title"`
	Link      string   `json:"link"`
	PushCount int      `json:"push_count"`
	Body      string   `json:"body"`
	GoodCount *int     `json:"good_count,omitempty"`
	BadCount  *int     `json:"bad_count,omitempty"`
	AvgScore  *float64 `json:"avg_score,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// JSONLStorage writes rows as newline-delimited JSON (one object per line).
type JSONLStorage struct {
	path   string
	file   *os.File
	enc    *jsoniter.Encoder
	scored bool
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewJSONLStorage creates a new JSONL file storage (streaming writes).
func NewJSONLStorage(outputPath string, scored bool, logger *slog.Logger) (*JSONLStorage, error) {
	f, err := createOutput(outputPath)
	if err != nil {
		return nil, err
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &JSONLStorage{
		path:   outputPath,
		file:   f,
		enc:    enc,
		scored: scored,
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(rows []types.ScoredRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		rec := jsonlRecord{
			Date:      row.Date,
			Title:     row.Title,
			Link:      row.Link,
			PushCount: row.Push.Value(),
			Body:      row.Body,
		}
		if s.scored {
			if res := row.Sentiment; res != nil {
				good, bad, avg := res.GoodCount, res.BadCount, res.AvgScore
				rec.GoodCount, rec.BadCount, rec.AvgScore = &good, &bad, &avg
			} else if row.Err != nil {
				rec.Error = row.Err.Error()
			}
		}
		if err := s.enc.Encode(rec); err != nil {
			return fmt.Errorf("encode JSONL: %w", err)
		}
		s.count++
	}
	return nil
}

func (s *JSONLStorage) Close() error {
	s.logger.Info("JSONL written", "path", s.path, "rows", s.count)
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
