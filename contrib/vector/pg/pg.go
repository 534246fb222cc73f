// Package pg provides a pgvector-backed retrieval.VectorIndex for
// deployments where the statute index lives in PostgreSQL instead of the
// embedded database.
package pg

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"github.com/lexrag/lexrag/retrieval"
)

// Config holds pgvector connection settings.
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	SSLMode   string
	Dimension int    // Embedding dimension
	TableName string // Table name (default: laws_vectors)
}

// DefaultConfig returns a local-development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:      "127.0.0.1",
		Port:      5432,
		User:      "postgres",
		Password:  "postgres",
		DBName:    "lexrag",
		SSLMode:   "disable",
		Dimension: 768,
		TableName: "laws_vectors",
	}
}

// Index implements retrieval.VectorIndex over a pgvector table.
type Index struct {
	db        *sql.DB
	dimension int
	tableName string
}

var _ retrieval.VectorIndex = (*Index)(nil)

// New connects to PostgreSQL, enables pgvector, and ensures the table.
func New(config *Config) (*Index, error) {
	if config == nil {
		config = DefaultConfig()
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("pg: connect: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pg: ping: %w", err)
	}

	idx := &Index{
		db:        db,
		dimension: config.Dimension,
		tableName: config.TableName,
	}
	if err := idx.setup(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (s *Index) setup(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("pg: create vector extension: %w", err)
	}

	createTableSQL := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		chunk_id VARCHAR(255) PRIMARY KEY,
		embedding vector(%d) NOT NULL
	)`, s.tableName, s.dimension)
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("pg: create table: %w", err)
	}
	return nil
}

// Add inserts or replaces one embedding.
func (s *Index) Add(ctx context.Context, chunkID string, vector []float32) error {
	if chunkID == "" {
		return fmt.Errorf("pg: chunk id cannot be empty")
	}
	if len(vector) != s.dimension {
		return fmt.Errorf("pg: dimension mismatch: expected %d, got %d", s.dimension, len(vector))
	}

	query := fmt.Sprintf(`
	INSERT INTO %s (chunk_id, embedding)
	VALUES ($1, $2::vector)
	ON CONFLICT (chunk_id) DO UPDATE SET embedding = EXCLUDED.embedding`, s.tableName)
	if _, err := s.db.ExecContext(ctx, query, chunkID, vectorToString(vector)); err != nil {
		return fmt.Errorf("pg: add embedding: %w", err)
	}
	return nil
}

// Search returns the limit nearest chunk IDs by L2 distance, ascending.
func (s *Index) Search(ctx context.Context, vector []float32, limit int) ([]retrieval.Hit, error) {
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("pg: dimension mismatch: expected %d, got %d", s.dimension, len(vector))
	}
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`
	SELECT chunk_id, embedding <-> $1::vector AS distance
	FROM %s
	ORDER BY distance ASC
	LIMIT $2`, s.tableName)
	rows, err := s.db.QueryContext(ctx, query, vectorToString(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("pg: search: %w", err)
	}
	defer rows.Close()

	hits := make([]retrieval.Hit, 0, limit)
	for rows.Next() {
		var h retrieval.Hit
		var distance float64
		if err := rows.Scan(&h.ChunkID, &distance); err != nil {
			return nil, fmt.Errorf("pg: scan hit: %w", err)
		}
		h.Distance = float32(distance)
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg: search rows: %w", err)
	}
	return hits, nil
}

// Close closes the database connection.
func (s *Index) Close() error {
	return s.db.Close()
}

func vectorToString(vec []float32) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = fmt.Sprintf("%f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
