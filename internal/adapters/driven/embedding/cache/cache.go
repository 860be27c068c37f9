// Package cache provides a SQLite-backed embedding cache keyed by
// model and content hash. Content-addressed keys mean unchanged text
// never pays for a second provider round trip, across process runs.
package cache

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/custodia-labs/lattice/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.EmbeddingCache = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS embeddings (
	model        TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	dimensions   INTEGER NOT NULL,
	vector       BLOB NOT NULL,
	created_at   TEXT NOT NULL,
	PRIMARY KEY (model, content_hash)
);
`

// Store is a SQLite-backed driven.EmbeddingCache.
type Store struct {
	db *sql.DB
}

// Open creates or opens the cache database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	// Serialized access; the dispatcher writes from concurrent goroutines.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize cache schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns the cached embedding for (model, contentHash), with
// false when absent.
func (s *Store) Get(ctx context.Context, model, contentHash string) ([]float32, bool, error) {
	var dimensions int
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT dimensions, vector FROM embeddings WHERE model = ? AND content_hash = ?`,
		model, contentHash,
	).Scan(&dimensions, &blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached embedding: %w", err)
	}

	embedding, err := decodeVector(blob, dimensions)
	if err != nil {
		return nil, false, err
	}
	return embedding, true, nil
}

// Put stores an embedding for (model, contentHash). Existing entries
// are replaced.
func (s *Store) Put(ctx context.Context, model, contentHash string, embedding []float32) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO embeddings (model, content_hash, dimensions, vector, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		model, contentHash, len(embedding), encodeVector(embedding),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write cached embedding: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func encodeVector(embedding []float32) []byte {
	blob := make([]byte, len(embedding)*4)
	for i, v := range embedding {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

func decodeVector(blob []byte, dimensions int) ([]float32, error) {
	if len(blob) != dimensions*4 {
		return nil, fmt.Errorf("cached vector is %d bytes, want %d", len(blob), dimensions*4)
	}
	embedding := make([]float32, dimensions)
	for i := range embedding {
		embedding[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return embedding, nil
}
