package storage

import (
	"fmt"
	"log/slog"

	"github.com/IshaanNene/BoardPulse/internal/config"
	"github.com/IshaanNene/BoardPulse/internal/types"
)

// Storage is the interface for all dataset backends.
type Storage interface {
	// Store persists a batch of rows, in order.
	Store(rows []types.ScoredRecord) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// Header locales.
const (
	LocaleEN = "en"
	LocaleZH = "zh"
)

// Column names, in output order. The last three are present only in
// scored output.
var (
	headersEN = []string{"date", "title", "link", "push_count", "body", "good_count", "bad_count", "avg_score"}
	headersZH = []string{"日期", "標題", "連結", "推文數", "內文", "正評數", "負評數", "情感平均分數"}
)

const (
	rawColumns    = 5
	scoredColumns = 8
)

// Headers returns the header row for the given locale and column set.
func Headers(locale string, scored bool) []string {
	src := headersEN
	if locale == LocaleZH {
		src = headersZH
	}
	n := rawColumns
	if scored {
		n = scoredColumns
	}
	out := make([]string, n)
	copy(out, src[:n])
	return out
}

// NewStorage opens the configured file backend at path. With mongo
// enabled, rows are mirrored to the collection as well.
func NewStorage(cfg *config.Config, path string, scored bool, logger *slog.Logger) (Storage, error) {
	var primary Storage
	var err error
	switch cfg.Storage.Type {
	case "csv", "":
		primary, err = NewCSVStorage(path, cfg.Storage.HeaderLocale, scored, logger)
	case "jsonl":
		primary, err = NewJSONLStorage(path, scored, logger)
	case "sqlite":
		primary, err = NewSQLiteStorage(path, scored, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
	if err != nil {
		return nil, &types.StorageError{Backend: cfg.Storage.Type, Err: err}
	}

	if !cfg.Storage.Mongo.Enabled {
		return primary, nil
	}

	mongoCfg := cfg.Storage.Mongo
	mirror, err := NewMongoStorage(mongoCfg.URI, mongoCfg.Database, mongoCfg.Collection, path, logger)
	if err != nil {
		_ = primary.Close()
		return nil, &types.StorageError{Backend: "mongodb", Err: err}
	}
	return NewMultiStorage([]Storage{primary, mirror}, logger), nil
}

// WriteAll stores rows into s and closes it.
func WriteAll(s Storage, rows []types.ScoredRecord) error {
	if err := s.Store(rows); err != nil {
		_ = s.Close()
		return err
	}
	return s.Close()
}
