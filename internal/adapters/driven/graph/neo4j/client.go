// Package neo4j provides the Neo4j implementation of the graph client
// port. Vector similarity search prefers the backend's native vector
// index and falls back to in-process cosine scoring when the server
// does not support one.
package neo4j

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/custodia-labs/lattice/internal/core/domain"
	"github.com/custodia-labs/lattice/internal/core/graph"
	"github.com/custodia-labs/lattice/internal/core/ports/driven"
	"github.com/custodia-labs/lattice/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.GraphClient = (*Client)(nil)

// Config holds Neo4j connection parameters.
type Config struct {
	// URI is the bolt or neo4j scheme connection URI.
	URI string

	// Username for basic auth.
	Username string

	// Password for basic auth.
	Password string

	// Database selects a named database. Empty uses the server default.
	Database string
}

// Client implements driven.GraphClient over the Neo4j bolt driver.
type Client struct {
	driver   neo4j.DriverWithContext
	database string

	// run executes one query against the backend. Tests substitute it
	// to drive the capability negotiation without a server.
	run func(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)

	mu           sync.Mutex
	nativeSearch bool
	probed       bool
}

// New connects to Neo4j and verifies connectivity.
func New(ctx context.Context, cfg Config) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	c := &Client{driver: driver, database: cfg.Database}
	c.run = c.runSession
	return c, nil
}

// RunQuery executes a parameterised query and returns the result rows
// as maps keyed by returned column name.
func (c *Client) RunQuery(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	return c.run(ctx, query, params)
}

func (c *Client) runSession(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrQueryFailed, err)
	}

	var rows []map[string]any
	for result.Next(ctx) {
		rows = append(rows, result.Record().AsMap())
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrQueryFailed, err)
	}
	return rows, nil
}

// EnsureVectorIndex provisions the native vector index for a model's
// store. A server without vector index support records the capability
// and the client searches in-process from then on.
func (c *Client) EnsureVectorIndex(ctx context.Context, model string, dimensions int) error {
	query := fmt.Sprintf(
		"CREATE VECTOR INDEX %s IF NOT EXISTS FOR (v:%s) ON (v.embedding) "+
			"OPTIONS {indexConfig: {`vector.dimensions`: $dimensions, `vector.similarity_function`: 'cosine'}}",
		indexName(model), graph.LabelVector,
	)

	_, err := c.RunQuery(ctx, query, map[string]any{"dimensions": dimensions})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.probed = true

	if err != nil {
		if isVectorUnsupported(err) {
			logger.Info("Backend has no native vector index, using in-process similarity")
			c.nativeSearch = false
			return nil
		}
		return err
	}

	c.nativeSearch = true
	return nil
}

// SemanticSearch returns up to limit chunks most similar to the query
// embedding, ordered by non-increasing score.
func (c *Client) SemanticSearch(ctx context.Context, embedding []float32, model string, limit int) ([]driven.SemanticHit, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: search limit must be positive", domain.ErrInvalidInput)
	}

	// An unprobed client tries the native path first, so processes that
	// only ever search still negotiate the capability. EnsureVectorIndex
	// settles it earlier for indexing processes.
	c.mu.Lock()
	tryNative := c.nativeSearch || !c.probed
	c.mu.Unlock()

	if tryNative {
		hits, err := c.semanticSearchNative(ctx, embedding, model, limit)
		if err == nil {
			c.mu.Lock()
			c.probed = true
			c.nativeSearch = true
			c.mu.Unlock()
			return hits, nil
		}
		if !isVectorUnsupported(err) {
			return nil, err
		}
		logger.Warn("Native vector query unsupported, switching to in-process search")
		c.mu.Lock()
		c.probed = true
		c.nativeSearch = false
		c.mu.Unlock()
	}

	return c.semanticSearchFallback(ctx, embedding, model, limit)
}

func (c *Client) semanticSearchNative(ctx context.Context, embedding []float32, model string, limit int) ([]driven.SemanticHit, error) {
	query := fmt.Sprintf(
		"CALL db.index.vector.queryNodes($index, $k, $embedding) YIELD node, score "+
			"MATCH (node)-[:%s]->(c:%s)-[:%s]->(d:%s) "+
			"WHERE node.store_id = $store_id AND NOT coalesce(node.stale, false) "+
			"RETURN c.id AS chunk_id, d.id AS document_id, d.path AS path, "+
			"d.title AS title, c.content AS content, score "+
			"ORDER BY score DESC LIMIT $limit",
		graph.RelEmbeds, graph.LabelChunk, graph.RelBelongsTo, graph.LabelDocument,
	)

	// Over-fetch so rows filtered out as stale or foreign-store do not
	// shrink the final result below limit.
	queryEmbedding := make([]float64, len(embedding))
	for i, v := range embedding {
		queryEmbedding[i] = float64(v)
	}
	rows, err := c.RunQuery(ctx, query, map[string]any{
		"index":     indexName(model),
		"k":         limit * 4,
		"embedding": queryEmbedding,
		"store_id":  domain.VectorStoreID(model),
		"limit":     limit,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]driven.SemanticHit, 0, len(rows))
	for _, row := range rows {
		hits = append(hits, hitFromRow(row, floatValue(row["score"])))
	}
	return hits, nil
}

func (c *Client) semanticSearchFallback(ctx context.Context, embedding []float32, model string, limit int) ([]driven.SemanticHit, error) {
	query := fmt.Sprintf(
		"MATCH (v:%s {store_id: $store_id})-[:%s]->(c:%s)-[:%s]->(d:%s) "+
			"WHERE NOT coalesce(v.stale, false) "+
			"RETURN v.embedding AS embedding, c.id AS chunk_id, d.id AS document_id, "+
			"d.path AS path, d.title AS title, c.content AS content",
		graph.LabelVector, graph.RelEmbeds, graph.LabelChunk, graph.RelBelongsTo, graph.LabelDocument,
	)

	rows, err := c.RunQuery(ctx, query, map[string]any{
		"store_id": domain.VectorStoreID(model),
	})
	if err != nil {
		return nil, err
	}

	hits := make([]driven.SemanticHit, 0, len(rows))
	for _, row := range rows {
		stored := graph.DecodeEmbedding(row["embedding"])
		score := graph.CosineSimilarity(embedding, stored)
		hits = append(hits, hitFromRow(row, score))
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Close releases the driver connection pool.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func hitFromRow(row map[string]any, score float64) driven.SemanticHit {
	return driven.SemanticHit{
		ChunkID:    stringValue(row["chunk_id"]),
		DocumentID: stringValue(row["document_id"]),
		Path:       stringValue(row["path"]),
		Title:      stringValue(row["title"]),
		Content:    stringValue(row["content"]),
		Score:      score,
	}
}

// indexName derives a per-model index identifier that is a valid
// Cypher symbolic name.
func indexName(model string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, model)
	return "chunk_embeddings_" + sanitized
}

// isVectorUnsupported reports whether an error indicates the server
// cannot create or query vector indexes.
func isVectorUnsupported(err error) bool {
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		switch {
		case strings.Contains(neoErr.Code, "ProcedureNotFound"),
			strings.Contains(neoErr.Code, "SyntaxError"),
			strings.Contains(neoErr.Code, "InvalidSyntax"):
			return true
		}
		return false
	}
	// Session.Run flattens some server errors into plain strings.
	msg := err.Error()
	return strings.Contains(msg, "ProcedureNotFound") ||
		strings.Contains(msg, "db.index.vector") && strings.Contains(msg, "not") ||
		strings.Contains(msg, "VECTOR INDEX") && strings.Contains(msg, "SyntaxError")
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func floatValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
