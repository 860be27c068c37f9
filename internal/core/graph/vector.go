package graph

import "github.com/custodia-labs/lattice/internal/core/domain"

// Vector and vector store property keys.
const (
	propModel     = "model"
	propStatus    = "status"
	propChunkID   = "chunk_id"
	propStoreID   = "store_id"
	propEmbedding = "embedding"
	propStale     = "stale"
)

// VectorStoreNode wraps a VectorStore for graph persistence.
type VectorStoreNode struct {
	*domain.VectorStore
}

// Label returns the node label.
func (VectorStoreNode) Label() string { return LabelVectorStore }

// NodeID returns the stable identifier merged on.
func (n VectorStoreNode) NodeID() string { return n.ID }

// Props flattens the vector store into primitive properties.
func (n VectorStoreNode) Props() (map[string]any, error) {
	meta, err := encodeMetadata(n.Metadata)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		propModel:     n.Model,
		propStatus:    n.Status.String(),
		propMetadata:  meta,
		propCreatedAt: formatTime(n.CreatedAt),
		propUpdatedAt: formatTime(n.UpdatedAt),
	}, nil
}

// VectorStoreFromProps restores a vector store from stored properties.
func VectorStoreFromProps(props map[string]any) *domain.VectorStore {
	return &domain.VectorStore{
		ID:        stringProp(props, propID),
		Model:     stringProp(props, propModel),
		Status:    domain.VectorStoreStatus(stringProp(props, propStatus)),
		Metadata:  restMetadata(props, propModel, propStatus),
		CreatedAt: parseTime(props[propCreatedAt]),
		UpdatedAt: parseTime(props[propUpdatedAt]),
	}
}

// VectorNode wraps a Vector for graph persistence.
type VectorNode struct {
	*domain.Vector
}

// Label returns the node label.
func (VectorNode) Label() string { return LabelVector }

// NodeID returns the stable identifier merged on.
func (n VectorNode) NodeID() string { return n.ID }

// Props flattens the vector into primitive properties.
func (n VectorNode) Props() (map[string]any, error) {
	meta, err := encodeMetadata(n.Metadata)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		propChunkID:   n.ChunkID,
		propStoreID:   n.StoreID,
		propEmbedding: encodeEmbedding(n.Embedding),
		propStale:     n.Stale,
		propMetadata:  meta,
		propCreatedAt: formatTime(n.CreatedAt),
		propUpdatedAt: formatTime(n.UpdatedAt),
	}, nil
}

// VectorFromProps restores a vector from stored properties.
func VectorFromProps(props map[string]any) *domain.Vector {
	return &domain.Vector{
		ID:        stringProp(props, propID),
		ChunkID:   stringProp(props, propChunkID),
		StoreID:   stringProp(props, propStoreID),
		Embedding: DecodeEmbedding(props[propEmbedding]),
		Stale:     boolProp(props, propStale),
		Metadata:  restMetadata(props, propChunkID, propStoreID, propEmbedding, propStale),
		CreatedAt: parseTime(props[propCreatedAt]),
		UpdatedAt: parseTime(props[propUpdatedAt]),
	}
}
