package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrQueryFailed indicates a graph query could not be executed.
	// Malformed queries and connection failures are always fatal.
	ErrQueryFailed = errors.New("graph query failed")

	// ErrProviderUnavailable indicates the embedding provider is unreachable
	// or returned an error status. Recovered only when a local fallback
	// model is configured.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrEmbeddingUnavailable indicates no embedding service is configured.
	// Semantic indexing and retrieval are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the graph backend does not support
	// native vector similarity queries. The client recovers by switching to
	// in-process cosine similarity; callers never see this error.
	ErrVectorIndexUnavailable = errors.New("native vector index unavailable")

	// ErrUnknownRelationship indicates a relationship type outside the
	// known set was requested.
	ErrUnknownRelationship = errors.New("unknown relationship type")
)
