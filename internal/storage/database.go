package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/BoardPulse/internal/types"
)

// postDocument is the MongoDB shape of one dataset row.
type postDocument struct {
	Dataset   string                 `bson:"dataset"`
	Date      string                 `bson:"date"`
	Title     string                 `bson:"title"`
	Link      string                 `bson:"link"`
	PushCount int                    `bson:"push_count"`
	Body      string                 `bson:"body"`
	Sentiment *types.SentimentResult `bson:"sentiment,omitempty"`
	Error     string                 `bson:"error,omitempty"`
	StoredAt  time.Time              `bson:"stored_at"`
}

// MongoStorage mirrors dataset rows into a MongoDB collection. Every
// document carries the name of the file it was written alongside.
type MongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	dataset    string
	mu         sync.Mutex
	count      int
	logger     *slog.Logger
}

// NewMongoStorage creates a new MongoDB storage backend.
func NewMongoStorage(uri, database, collection, dataset string, logger *slog.Logger) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoStorage{
		client:     client,
		collection: client.Database(database).Collection(collection),
		dataset:    dataset,
		logger:     logger.With("component", "mongo_storage"),
	}, nil
}

func (s *MongoStorage) Name() string { return "mongodb" }

func (s *MongoStorage) Store(rows []types.ScoredRecord) error {
	if len(rows) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]any, len(rows))
	now := time.Now().UTC()
	for i, row := range rows {
		docs[i] = toDocument(s.dataset, row, now)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("mongodb insert: %w", err)
	}

	s.count += len(rows)
	s.logger.Debug("rows stored in mongodb", "count", len(rows), "total", s.count)
	return nil
}

func (s *MongoStorage) Close() error {
	s.logger.Info("mongodb storage closing", "total_rows", s.count)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toDocument(dataset string, row types.ScoredRecord, at time.Time) postDocument {
	doc := postDocument{
		Dataset:   dataset,
		Date:      row.Date,
		Title:     row.Title,
		Link:      row.Link,
		PushCount: row.Push.Value(),
		Body:      row.Body,
		Sentiment: row.Sentiment,
		StoredAt:  at,
	}
	if row.Err != nil {
		doc.Error = row.Err.Error()
	}
	return doc
}

// --- Multi-Storage Fan-Out ---

// MultiStorage writes rows to multiple backends in turn.
type MultiStorage struct {
	backends []Storage
	logger   *slog.Logger
}

// NewMultiStorage creates a storage that fans out to multiple backends.
func NewMultiStorage(backends []Storage, logger *slog.Logger) *MultiStorage {
	return &MultiStorage{
		backends: backends,
		logger:   logger.With("component", "multi_storage"),
	}
}

func (s *MultiStorage) Name() string { return "multi" }

func (s *MultiStorage) Store(rows []types.ScoredRecord) error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Store(rows); err != nil {
			s.logger.Error("backend store failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = &types.StorageError{Backend: backend.Name(), Err: err}
			}
		}
	}
	return firstErr
}

func (s *MultiStorage) Close() error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil {
			s.logger.Error("backend close failed", "backend", backend.Name(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
