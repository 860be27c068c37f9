package graph

import "github.com/custodia-labs/lattice/internal/core/domain"

// Document and chunk property keys.
const (
	propSourceID    = "source_id"
	propPath        = "path"
	propTitle       = "title"
	propContent     = "content"
	propContentHash = "content_hash"
	propDocumentID  = "document_id"
	propIndex       = "index"
	propTokenCount  = "token_count"
)

// DocumentNode wraps a Document for graph persistence.
type DocumentNode struct {
	*domain.Document
}

// Label returns the node label.
func (DocumentNode) Label() string { return LabelDocument }

// NodeID returns the stable identifier merged on.
func (n DocumentNode) NodeID() string { return n.ID }

// Props flattens the document into primitive properties. The content
// hash is recomputed here so a stored hash can never disagree with the
// stored content, regardless of what the caller set.
func (n DocumentNode) Props() (map[string]any, error) {
	meta, err := encodeMetadata(n.Metadata)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		propSourceID:    n.SourceID,
		propPath:        n.Path,
		propTitle:       n.Title,
		propContent:     n.Content,
		propContentHash: domain.HashContent(n.Content),
		propMetadata:    meta,
		propCreatedAt:   formatTime(n.CreatedAt),
		propUpdatedAt:   formatTime(n.UpdatedAt),
	}, nil
}

// DocumentFromProps restores a document from stored properties.
func DocumentFromProps(props map[string]any) *domain.Document {
	return &domain.Document{
		ID:          stringProp(props, propID),
		SourceID:    stringProp(props, propSourceID),
		Path:        stringProp(props, propPath),
		Title:       stringProp(props, propTitle),
		Content:     stringProp(props, propContent),
		ContentHash: stringProp(props, propContentHash),
		Metadata: restMetadata(props,
			propSourceID, propPath, propTitle, propContent, propContentHash),
		CreatedAt: parseTime(props[propCreatedAt]),
		UpdatedAt: parseTime(props[propUpdatedAt]),
	}
}

// ChunkNode wraps a Chunk for graph persistence.
type ChunkNode struct {
	*domain.Chunk
}

// Label returns the node label.
func (ChunkNode) Label() string { return LabelChunk }

// NodeID returns the stable identifier merged on.
func (n ChunkNode) NodeID() string { return n.ID }

// Props flattens the chunk into primitive properties. As with
// documents, the content hash is recomputed from the content.
func (n ChunkNode) Props() (map[string]any, error) {
	meta, err := encodeMetadata(n.Metadata)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		propDocumentID:  n.DocumentID,
		propPath:        n.Path,
		propContent:     n.Content,
		propContentHash: domain.HashContent(n.Content),
		propIndex:       n.Index,
		propTokenCount:  n.TokenCount,
		propMetadata:    meta,
		propCreatedAt:   formatTime(n.CreatedAt),
		propUpdatedAt:   formatTime(n.UpdatedAt),
	}, nil
}

// ChunkFromProps restores a chunk from stored properties.
func ChunkFromProps(props map[string]any) *domain.Chunk {
	return &domain.Chunk{
		ID:          stringProp(props, propID),
		DocumentID:  stringProp(props, propDocumentID),
		Path:        stringProp(props, propPath),
		Content:     stringProp(props, propContent),
		ContentHash: stringProp(props, propContentHash),
		Index:       intProp(props, propIndex),
		TokenCount:  intProp(props, propTokenCount),
		Metadata: restMetadata(props,
			propDocumentID, propPath, propContent, propContentHash, propIndex, propTokenCount),
		CreatedAt: parseTime(props[propCreatedAt]),
		UpdatedAt: parseTime(props[propUpdatedAt]),
	}
}
