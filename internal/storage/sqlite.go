package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/IshaanNene/BoardPulse/internal/types"
)

// SQLiteStorage writes rows into the posts table of a SQLite file. The
// table is recreated on open, so a file holds exactly one dataset. Failed
// rows keep NULL in the sentiment columns.
type SQLiteStorage struct {
	db     *sql.DB
	path   string
	scored bool
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

const postsSchema = `
	CREATE TABLE posts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		title TEXT NOT NULL,
		link TEXT NOT NULL,
		push_count INTEGER NOT NULL,
		body TEXT NOT NULL,
		good_count INTEGER,
		bad_count INTEGER,
		avg_score REAL,
		error TEXT
	);
	CREATE INDEX idx_posts_link ON posts(link);`

const insertPost = `INSERT INTO posts
	(date, title, link, push_count, body, good_count, bad_count, avg_score, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func openSQLite(path, mode string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	return db, nil
}

// NewSQLiteStorage creates or replaces the posts table in the file at outputPath.
func NewSQLiteStorage(outputPath string, scored bool, logger *slog.Logger) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	db, err := openSQLite(outputPath, "rwc")
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS posts"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("drop posts table: %w", err)
	}
	if _, err := db.ExecContext(ctx, postsSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create posts table: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		path:   outputPath,
		scored: scored,
		logger: logger.With("component", "sqlite_storage"),
	}, nil
}

func (s *SQLiteStorage) Name() string { return "sqlite" }

func (s *SQLiteStorage) Store(rows []types.ScoredRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertPost)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		var good, bad sql.NullInt64
		var avg sql.NullFloat64
		var rowErr sql.NullString
		if s.scored {
			if res := row.Sentiment; res != nil {
				good = sql.NullInt64{Int64: int64(res.GoodCount), Valid: true}
				bad = sql.NullInt64{Int64: int64(res.BadCount), Valid: true}
				avg = sql.NullFloat64{Float64: res.AvgScore, Valid: true}
			} else if row.Err != nil {
				rowErr = sql.NullString{String: row.Err.Error(), Valid: true}
			}
		}
		if _, err := stmt.ExecContext(ctx,
			row.Date, row.Title, row.Link, row.Push.Value(), row.Body,
			good, bad, avg, rowErr,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert row %s: %w", row.Link, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.count += len(rows)
	return nil
}

func (s *SQLiteStorage) Close() error {
	s.logger.Info("SQLite written", "path", s.path, "rows", s.count)
	return s.db.Close()
}

// ReadSQLite loads the raw columns of the posts table, in insertion order.
func ReadSQLite(path string) (types.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := openSQLite(path, "ro")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(context.Background(),
		"SELECT date, title, link, push_count, body FROM posts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var ds types.Dataset
	for rows.Next() {
		var rec types.PostRecord
		var push int
		if err := rows.Scan(&rec.Date, &rec.Title, &rec.Link, &push, &rec.Body); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		rec.Push = types.PushCountFromValue(push)
		ds = append(ds, rec)
	}
	return ds, rows.Err()
}
