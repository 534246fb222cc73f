package retrieval

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	sqlite "modernc.org/sqlite"

	apperrors "github.com/lexrag/lexrag/errors"
)

const vectorIndexFile = "law_vectors.db"

var registerDistanceOnce sync.Once

// registerDistanceFn installs the vec_distance_l2 scalar function on the
// sqlite driver. Deterministic: same input blobs produce the same distance.
func registerDistanceFn() {
	registerDistanceOnce.Do(func() {
		_ = sqlite.RegisterDeterministicScalarFunction("vec_distance_l2", 2, vecDistanceL2)
	})
}

func vecDistanceL2(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("vec_distance_l2 expects 2 arguments")
	}
	a, err := blobToVector(args[0])
	if err != nil {
		return nil, err
	}
	b, err := blobToVector(args[1])
	if err != nil {
		return nil, err
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("vec_distance_l2: dimension mismatch %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

func blobToVector(v driver.Value) ([]float32, error) {
	var raw []byte
	switch x := v.(type) {
	case []byte:
		raw = x
	case string:
		raw = []byte(x)
	default:
		return nil, fmt.Errorf("vec_distance_l2: unsupported type %T", v)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("vec_distance_l2: blob length %d not multiple of 4", len(raw))
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return out, nil
}

func vectorToBlob(vec []float32) []byte {
	raw := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(f))
	}
	return raw
}

// SQLiteIndex is an embedded VectorIndex over a laws_vectors table of
// float32 little-endian embedding blobs.
type SQLiteIndex struct {
	db *sql.DB
}

// OpenSQLiteIndex opens an existing index file under dir. A missing file is
// ErrNotFound so callers can distinguish "data not installed" from query
// failures.
func OpenSQLiteIndex(dir string) (*SQLiteIndex, error) {
	path := filepath.Join(dir, vectorIndexFile)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("retrieval: vector index %s: %w", path, apperrors.ErrNotFound)
	}
	registerDistanceFn()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("retrieval: open vector index: %w", err)
	}
	return &SQLiteIndex{db: db}, nil
}

// CreateSQLiteIndex creates a fresh index file under dir, bootstrapping the
// schema. Used by ingestion tooling and test fixtures.
func CreateSQLiteIndex(dir string) (*SQLiteIndex, error) {
	registerDistanceFn()
	db, err := sql.Open("sqlite", filepath.Join(dir, vectorIndexFile))
	if err != nil {
		return nil, fmt.Errorf("retrieval: create vector index: %w", err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS laws_vectors (
		chunk_id TEXT PRIMARY KEY,
		embedding BLOB NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("retrieval: bootstrap vector index: %w", err)
	}
	return &SQLiteIndex{db: db}, nil
}

// Add inserts or replaces one embedding.
func (s *SQLiteIndex) Add(ctx context.Context, chunkID string, vector []float32) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO laws_vectors (chunk_id, embedding) VALUES (?, ?)`,
		chunkID, vectorToBlob(vector))
	if err != nil {
		return fmt.Errorf("retrieval: add vector %s: %w", chunkID, err)
	}
	return nil
}

// Search scans the table and returns the limit nearest chunk IDs by L2
// distance, ascending.
func (s *SQLiteIndex) Search(ctx context.Context, vector []float32, limit int) ([]Hit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chunk_id, vec_distance_l2(embedding, ?) AS distance
		 FROM laws_vectors ORDER BY distance ASC LIMIT ?`,
		vectorToBlob(vector), limit)
	if err != nil {
		return nil, fmt.Errorf("retrieval: vector search: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var distance float64
		if err := rows.Scan(&h.ChunkID, &distance); err != nil {
			return nil, fmt.Errorf("retrieval: scan hit: %w", err)
		}
		h.Distance = float32(distance)
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("retrieval: vector search rows: %w", err)
	}
	return hits, nil
}

// Close releases the underlying database handle.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}
