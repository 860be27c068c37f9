package domain

import "time"

// VectorStoreStatus tracks the processing state of a vector store.
type VectorStoreStatus string

// Vector store processing states.
const (
	VectorStoreStatusPending    VectorStoreStatus = "pending"
	VectorStoreStatusProcessing VectorStoreStatus = "processing"
	VectorStoreStatusCompleted  VectorStoreStatus = "completed"
	VectorStoreStatusFailed     VectorStoreStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s VectorStoreStatus) IsValid() bool {
	switch s {
	case VectorStoreStatusPending, VectorStoreStatusProcessing,
		VectorStoreStatusCompleted, VectorStoreStatusFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s VectorStoreStatus) String() string {
	return string(s)
}

// VectorStore is a logical partition of embeddings keyed by the model
// that produced them. Its identifier is derived from the model name, so
// creating the store twice for the same model is idempotent: there is
// exactly one VectorStore per distinct model.
type VectorStore struct {
	// ID is derived deterministically from the model name.
	ID string

	// Model is the embedding model name ("text-embedding-3-small", ...).
	Model string

	// Status is the processing state of this store.
	Status VectorStoreStatus

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the store was first created.
	CreatedAt time.Time

	// UpdatedAt is when the store was last updated.
	UpdatedAt time.Time
}

// NewVectorStore creates the vector store for a model.
func NewVectorStore(model string) *VectorStore {
	now := time.Now().UTC()
	return &VectorStore{
		ID:        VectorStoreID(model),
		Model:     model,
		Status:    VectorStoreStatusPending,
		Metadata:  make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// VectorStoreID returns the deterministic identifier of the vector
// store for a model.
func VectorStoreID(model string) string {
	return DeriveID("vectorstore", model)
}

// Vector holds one embedding for a (chunk, vector store) pair. Vectors
// are created once per pair and never mutated; when a chunk's content
// changes the old vector is superseded by marking it stale, and a fresh
// vector replaces it wholesale.
type Vector struct {
	// ID is derived from the chunk and store identifiers.
	ID string

	// ChunkID links to the Chunk this vector embeds.
	ChunkID string

	// StoreID links to the owning VectorStore.
	StoreID string

	// Embedding is the fixed-length vector. Its length is fixed by the
	// model that produced it.
	Embedding []float32

	// Stale marks a vector whose chunk content has changed since
	// embedding. Stale vectors are excluded from search.
	Stale bool

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the vector was written.
	CreatedAt time.Time

	// UpdatedAt is when the vector was last updated.
	UpdatedAt time.Time
}

// NewVector creates the vector embedding a chunk within a store.
func NewVector(chunkID, storeID string, embedding []float32) *Vector {
	now := time.Now().UTC()
	return &Vector{
		ID:        DeriveID("vector", chunkID+"/"+storeID),
		ChunkID:   chunkID,
		StoreID:   storeID,
		Embedding: embedding,
		Metadata:  make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
