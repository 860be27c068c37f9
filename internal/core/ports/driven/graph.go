package driven

import "context"

// GraphClient executes queries against the property-graph backend.
//
// Write queries follow merge-by-id semantics end to end, so every
// operation is safe to retry: a crash between creating a node and its
// edge is repaired by re-running the whole operation.
type GraphClient interface {
	// RunQuery executes a parameterised query and returns the result
	// rows as maps keyed by returned column name. Malformed queries
	// and connection failures are fatal and propagated.
	RunQuery(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)

	// EnsureVectorIndex provisions the native similarity index for a
	// model when the backend supports one. Safe to invoke repeatedly;
	// a backend without native vector support records that capability
	// instead of failing.
	EnsureVectorIndex(ctx context.Context, model string, dimensions int) error

	// SemanticSearch returns the chunks most similar to the query
	// embedding, ordered by non-increasing score, at most limit. The
	// native index is used when available; otherwise similarity is
	// computed in-process over the stored vectors for the model. Both
	// paths return the same result shape.
	SemanticSearch(ctx context.Context, embedding []float32, model string, limit int) ([]SemanticHit, error)

	// Close releases the backend connection.
	Close(ctx context.Context) error
}

// SemanticHit is one similarity search result.
type SemanticHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the chunk's parent document.
	DocumentID string

	// Path is the document path.
	Path string

	// Title is the document title, when present.
	Title string

	// Content is the chunk text.
	Content string

	// Score is the similarity score.
	Score float64
}
