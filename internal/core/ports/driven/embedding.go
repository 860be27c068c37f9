package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm) as a local fallback
//   - the batching dispatcher composing a remote primary with a fallback
//
// Remote and local models produce vectors of possibly different
// lengths; callers must not mix them within one vector store.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. The result
	// has one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// EmbeddingCache stores computed embeddings keyed by model and content
// hash, so re-ingesting unchanged content never pays for a provider
// round trip twice.
type EmbeddingCache interface {
	// Get returns the cached embedding for (model, contentHash), with
	// false when absent.
	Get(ctx context.Context, model, contentHash string) ([]float32, bool, error)

	// Put stores an embedding for (model, contentHash).
	Put(ctx context.Context, model, contentHash string, embedding []float32) error

	// Close releases resources.
	Close() error
}
