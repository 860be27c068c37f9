package domain

import (
	"fmt"
	"time"
)

// Document represents a full text document within a source.
// The content hash is always derived from the content; it is never
// supplied by callers, and hash and content update together.
type Document struct {
	// ID is the unique identifier, derived from the path.
	ID string

	// SourceID links to the Source this document came from.
	SourceID string

	// Path is the logical identifier within the source.
	Path string

	// Title is the optional human-readable title.
	Title string

	// Content is the full text content.
	Content string

	// ContentHash is the hash of Content. Maintained by RecomputeHash;
	// equal content always yields an equal hash.
	ContentHash string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was first indexed.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// NewDocument creates a document with a deterministic identifier and a
// freshly computed content hash.
func NewDocument(sourceID, path, content string) *Document {
	now := time.Now().UTC()
	d := &Document{
		ID:        DeriveID("document", path),
		SourceID:  sourceID,
		Path:      path,
		Content:   content,
		Metadata:  make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
	d.RecomputeHash()
	return d
}

// RecomputeHash refreshes ContentHash from Content. Called on every
// write path so the hash can never drift from the content.
func (d *Document) RecomputeHash() {
	d.ContentHash = HashContent(d.Content)
}

// Chunk is a bounded fragment of a document's text, the unit of
// embedding and retrieval.
type Chunk struct {
	// ID is the unique identifier, derived from the chunk path.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Path is the document path with a fragment suffix ("doc.md#3").
	Path string

	// Content is the fragment text.
	Content string

	// ContentHash is the hash of Content.
	ContentHash string

	// Index is the zero-based position within the document. The set of
	// a document's chunk indices is contiguous starting at 0, ordered
	// by position in the original text.
	Index int

	// TokenCount is the token length of Content.
	TokenCount int

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the chunk was first written.
	CreatedAt time.Time

	// UpdatedAt is when the chunk was last updated.
	UpdatedAt time.Time
}

// NewChunk creates the index-th chunk of a document. The chunk path and
// identifier are derived from the document path and position so that
// re-ingestion merges rather than duplicates.
func NewChunk(doc *Document, index int, content string, tokenCount int) *Chunk {
	now := time.Now().UTC()
	path := ChunkPath(doc.Path, index)
	return &Chunk{
		ID:          DeriveID("chunk", path),
		DocumentID:  doc.ID,
		Path:        path,
		Content:     content,
		ContentHash: HashContent(content),
		Index:       index,
		TokenCount:  tokenCount,
		Metadata:    make(map[string]any),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ChunkPath returns the logical path of the index-th chunk of a document.
func ChunkPath(docPath string, index int) string {
	return fmt.Sprintf("%s#%d", docPath, index)
}
