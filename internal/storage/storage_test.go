package storage

import (
	"bufio"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IshaanNene/BoardPulse/internal/config"
	"github.com/IshaanNene/BoardPulse/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var testTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func testRows() []types.ScoredRecord {
	return []types.ScoredRecord{
		{
			PostRecord: types.PostRecord{
				PostReference: types.PostReference{Date: "1/02", Title: "[食記] 牛肉麵, 台北", Link: "/bbs/Food/M.1.html", Push: types.Burst()},
				Body:          "湯頭濃郁，非常好吃",
			},
			Sentiment: &types.SentimentResult{GoodCount: 1, BadCount: 1, AvgScore: 0.6},
		},
		{
			PostRecord: types.PostRecord{
				PostReference: types.PostReference{Date: "1/03", Title: "雷店", Link: "/bbs/Food/M.2.html", Push: types.Excluded()},
				Body:          "",
			},
			Err: &types.RowError{Row: 1, Link: "/bbs/Food/M.2.html", Err: types.ErrNoSentences},
		},
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

func TestCSVStorageScored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "scored.csv")
	s, err := NewCSVStorage(path, LocaleEN, true, testLogger)
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	if err := WriteAll(s, testRows()); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := readLines(t, path)
	want := []string{
		"date,title,link,push_count,body,good_count,bad_count,avg_score",
		`1/02,"[食記] 牛肉麵, 台北",/bbs/Food/M.1.html,99,湯頭濃郁，非常好吃,1,1,0.6`,
		"1/03,雷店,/bbs/Food/M.2.html,-10,,NaN,NaN,NaN",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d:\n got %q\nwant %q", i, lines[i], want[i])
		}
	}
}

func TestCSVStorageRawChineseHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.csv")
	s, err := NewCSVStorage(path, LocaleZH, false, testLogger)
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	if err := WriteAll(s, testRows()); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := readLines(t, path)
	if lines[0] != "日期,標題,連結,推文數,內文" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if strings.Contains(lines[2], MissingValue) {
		t.Errorf("raw output should not carry sentiment columns: %q", lines[2])
	}
}

func TestCSVStorageEmptyDatasetHasHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	s, err := NewCSVStorage(path, LocaleEN, false, testLogger)
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	if err := WriteAll(s, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if lines := readLines(t, path); len(lines) != 1 {
		t.Errorf("expected header only, got %q", lines)
	}

	ds, err := ReadDataset(path, "csv")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(ds) != 0 {
		t.Errorf("expected empty dataset, got %d rows", len(ds))
	}
}

func TestReadDatasetBothLocales(t *testing.T) {
	for _, locale := range []string{LocaleEN, LocaleZH} {
		t.Run(locale, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scored.csv")
			s, err := NewCSVStorage(path, locale, true, testLogger)
			if err != nil {
				t.Fatalf("create storage: %v", err)
			}
			if err := WriteAll(s, testRows()); err != nil {
				t.Fatalf("write: %v", err)
			}

			ds, err := ReadDataset(path, "csv")
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			want := types.Records(testRows())
			if len(ds) != len(want) {
				t.Fatalf("expected %d rows, got %d", len(want), len(ds))
			}
			for i := range want {
				if ds[i].PostReference.Title != want[i].Title || ds[i].Link != want[i].Link || ds[i].Body != want[i].Body {
					t.Errorf("row %d: got %+v, want %+v", i, ds[i], want[i])
				}
				if ds[i].Push.Value() != want[i].Push.Value() {
					t.Errorf("row %d: push %d, want %d", i, ds[i].Push.Value(), want[i].Push.Value())
				}
			}
		})
	}
}

func TestDecodeCSVRejectsUnknownHeader(t *testing.T) {
	_, err := DecodeCSV(strings.NewReader("a,b,c\n1,2,3\n"))
	if !errors.Is(err, ErrBadHeader) {
		t.Errorf("expected ErrBadHeader, got %v", err)
	}
}

func TestDecodeCSVReorderedColumns(t *testing.T) {
	in := "body,link,title,date,push_count\n好吃,/p,標題,1/01,oops\n"
	ds, err := DecodeCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ds) != 1 || ds[0].Body != "好吃" || ds[0].Link != "/p" || ds[0].Date != "1/01" {
		t.Fatalf("unexpected dataset %+v", ds)
	}
	if ds[0].Push.Kind != types.PushUnknown {
		t.Errorf("expected unknown push for a non-integer value, got %v", ds[0].Push)
	}
}

func TestReadDatasetMissingCSV(t *testing.T) {
	_, err := ReadDataset(filepath.Join(t.TempDir(), "nope.csv"), "csv")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestJSONLStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scored.jsonl")
	s, err := NewJSONLStorage(path, true, testLogger)
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	if err := WriteAll(s, testRows()); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"avg_score":0.6`) {
		t.Errorf("expected avg_score in first line: %s", lines[0])
	}
	if strings.Contains(lines[1], "avg_score") || !strings.Contains(lines[1], `"error"`) {
		t.Errorf("failed row should carry an error and no score: %s", lines[1])
	}

	ds, err := ReadDataset(path, "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(ds) != 2 || ds[0].Push.Value() != 99 || ds[1].Push.Value() != -10 {
		t.Errorf("unexpected dataset %+v", ds)
	}
}

func TestNewStorageSelectsBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	dir := t.TempDir()

	s, err := NewStorage(cfg, filepath.Join(dir, "a.csv"), false, testLogger)
	if err != nil {
		t.Fatalf("csv storage: %v", err)
	}
	if s.Name() != "csv" {
		t.Errorf("expected csv, got %s", s.Name())
	}
	_ = s.Close()

	cfg.Storage.Type = "jsonl"
	s, err = NewStorage(cfg, filepath.Join(dir, "a.jsonl"), false, testLogger)
	if err != nil {
		t.Fatalf("jsonl storage: %v", err)
	}
	if s.Name() != "jsonl" {
		t.Errorf("expected jsonl, got %s", s.Name())
	}
	_ = s.Close()

	cfg.Storage.Type = "parquet"
	if _, err := NewStorage(cfg, filepath.Join(dir, "a.parquet"), false, testLogger); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestReadDatasetFollowsConfiguredType(t *testing.T) {
	for _, typ := range []string{"csv", "jsonl", "sqlite"} {
		t.Run(typ, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Storage.Type = typ
			// The default output path keeps its .csv name whatever the type.
			path := filepath.Join(t.TempDir(), "ptt_food.csv")

			s, err := NewStorage(cfg, path, false, testLogger)
			if err != nil {
				t.Fatalf("create storage: %v", err)
			}
			if err := WriteAll(s, testRows()); err != nil {
				t.Fatalf("write: %v", err)
			}

			ds, err := ReadDataset(path, cfg.Storage.Type)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if len(ds) != 2 || ds[0].Push.Value() != 99 {
				t.Errorf("unexpected dataset %+v", ds)
			}
		})
	}
}

func TestReadDatasetUnsupportedType(t *testing.T) {
	if _, err := ReadDataset(filepath.Join(t.TempDir(), "a.csv"), "parquet"); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestReadDatasetDetectsFormat(t *testing.T) {
	for _, typ := range []string{"csv", "jsonl", "sqlite"} {
		t.Run(typ, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Storage.Type = typ
			path := filepath.Join(t.TempDir(), "ptt_food.csv")

			s, err := NewStorage(cfg, path, false, testLogger)
			if err != nil {
				t.Fatalf("create storage: %v", err)
			}
			if err := WriteAll(s, testRows()); err != nil {
				t.Fatalf("write: %v", err)
			}

			got, err := DetectFormat(path)
			if err != nil {
				t.Fatalf("detect: %v", err)
			}
			if got != typ {
				t.Errorf("DetectFormat = %q, want %q", got, typ)
			}
			ds, err := ReadDataset(path, "")
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if len(ds) != 2 {
				t.Errorf("expected 2 rows, got %d", len(ds))
			}
		})
	}
}

func TestDetectFormatEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := DetectFormat(path)
	if err != nil || got != "csv" {
		t.Errorf("DetectFormat = %q, %v; want csv", got, err)
	}
	ds, err := ReadDataset(path, "")
	if err != nil || len(ds) != 0 {
		t.Errorf("empty file should read as an empty dataset, got %d rows, %v", len(ds), err)
	}
}

type failingStorage struct{ closed bool }

func (f *failingStorage) Store([]types.ScoredRecord) error { return errors.New("disk full") }
func (f *failingStorage) Close() error                     { f.closed = true; return nil }
func (f *failingStorage) Name() string                     { return "failing" }

func TestMultiStorageContinuesPastFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.csv")
	csvStore, err := NewCSVStorage(path, LocaleEN, false, testLogger)
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}
	bad := &failingStorage{}
	m := NewMultiStorage([]Storage{bad, csvStore}, testLogger)

	err = m.Store(testRows())
	var se *types.StorageError
	if !errors.As(err, &se) || se.Backend != "failing" {
		t.Errorf("expected StorageError from failing backend, got %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !bad.closed {
		t.Error("failing backend was not closed")
	}
	if lines := readLines(t, path); len(lines) != 3 {
		t.Errorf("healthy backend should still have all rows, got %d lines", len(lines))
	}
}

func TestToDocument(t *testing.T) {
	rows := testRows()
	doc := toDocument("scored.csv", rows[1], testTime)
	if doc.Sentiment != nil || doc.Error == "" {
		t.Errorf("failed row should map to an error document: %+v", doc)
	}
	if doc.PushCount != -10 || doc.Dataset != "scored.csv" {
		t.Errorf("unexpected document %+v", doc)
	}
}

func TestMongoStorage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping MongoDB test in short mode")
	}
	uri := os.Getenv("BOARDPULSE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("BOARDPULSE_TEST_MONGO_URI not set")
	}
	s, err := NewMongoStorage(uri, "boardpulse_test", "posts", "test.csv", testLogger)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := WriteAll(s, testRows()); err != nil {
		t.Fatalf("store: %v", err)
	}
}

func TestSQLiteStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scored.db")
	for i := 0; i < 2; i++ {
		s, err := NewSQLiteStorage(path, true, testLogger)
		if err != nil {
			t.Fatalf("create storage: %v", err)
		}
		if err := WriteAll(s, testRows()); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	ds, err := ReadDataset(path, "")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(ds) != 2 {
		t.Fatalf("reopening must replace the dataset, got %d rows", len(ds))
	}
	if ds[0].Title != "[食記] 牛肉麵, 台北" || ds[0].Push.Value() != 99 {
		t.Errorf("unexpected first row %+v", ds[0])
	}
	if ds[1].Push.Kind != types.PushExcluded || ds[1].Body != "" {
		t.Errorf("unexpected second row %+v", ds[1])
	}
}

func TestReadSQLiteMissingFile(t *testing.T) {
	_, err := ReadDataset(filepath.Join(t.TempDir(), "nope.db"), "")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
