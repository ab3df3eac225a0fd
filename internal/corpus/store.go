package corpus

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
	"go.uber.org/zap"

	"github.com/brim-cs/backend/pkg/logger"
)

// Entry is one retrievable question/answer pair. Rows are append-only: the
// core never updates or deletes them.
type Entry struct {
	ID        int64
	Question  string
	Answer    string
	Category  string
	Platform  string
	Embedding []float32
	CreatedAt time.Time
}

// SimilarEntry is a corpus row ranked against a query embedding.
// Similarity is 1 - cosine distance, rounded to 4 decimal places.
type SimilarEntry struct {
	ID         int64   `json:"id"`
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Category   string  `json:"category"`
	Platform   string  `json:"platform"`
	Similarity float64 `json:"similarity"`
}

// Store persists the Q&A corpus in PostgreSQL and delegates
// nearest-neighbor ranking to the pgvector extension.
type Store struct {
	pool *pgxpool.Pool
	dim  int
}

func NewStore(ctx context.Context, dsn string, dim int) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse corpus DSN: %w", err)
	}

	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create corpus pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach corpus database: %w", err)
	}

	logger.Info("corpus store initialized", zap.Int("embedding_dim", dim))

	return &Store{pool: pool, dim: dim}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the vector extension and corpus table when absent.
// The embedding column dimension is fixed at startup and must match the
// embedding client's output.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS qa_corpus (
			id BIGSERIAL PRIMARY KEY,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			platform TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.dim)

	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create corpus table: %w", err)
	}

	return nil
}

// Insert appends one entry. The single statement commits atomically; any
// persistence error leaves the corpus unchanged.
func (s *Store) Insert(ctx context.Context, e *Entry) error {
	if len(e.Embedding) != s.dim {
		return fmt.Errorf("embedding dimension mismatch: expected %d, got %d", s.dim, len(e.Embedding))
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO qa_corpus (question, answer, category, platform, embedding)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		e.Question, e.Answer, e.Category, e.Platform, pgvector.NewVector(e.Embedding),
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert corpus entry: %w", err)
	}

	logger.Debug("corpus entry inserted",
		zap.Int64("entry_id", e.ID),
		zap.String("platform", e.Platform),
	)

	return nil
}

// Search returns the k nearest entries by cosine distance. Ties keep
// natural row order; pgvector decides between approximate and exact
// scanning.
func (s *Store) Search(ctx context.Context, embedding []float32, k int) ([]SimilarEntry, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, question, answer, category, platform, 1 - (embedding <=> $1) AS similarity
		FROM qa_corpus
		ORDER BY embedding <=> $1
		LIMIT $2`,
		pgvector.NewVector(embedding), k,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search corpus: %w", err)
	}
	defer rows.Close()

	var entries []SimilarEntry
	for rows.Next() {
		var e SimilarEntry
		if err := rows.Scan(&e.ID, &e.Question, &e.Answer, &e.Category, &e.Platform, &e.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan corpus row: %w", err)
		}
		e.Similarity = math.Round(e.Similarity*10000) / 10000
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate corpus rows: %w", err)
	}

	return entries, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM qa_corpus`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count corpus entries: %w", err)
	}
	return count, nil
}
