package domain

// SearchResult is one ranked fragment returned by retrieval. Both the
// native vector index path and the in-process fallback produce this
// shape, so callers are unaffected by which path executed.
type SearchResult struct {
	// DocumentID identifies the parent document.
	DocumentID string

	// ChunkID identifies the matched chunk.
	ChunkID string

	// Path is the document path.
	Path string

	// Title is the document title, when present.
	Title string

	// Content is the matched fragment text.
	Content string

	// Score is the similarity score, non-increasing across a result list.
	Score float64
}

// ConversationContext combines a document search with the prior
// messages of a conversation.
type ConversationContext struct {
	// RelevantDocuments are the ranked fragments for the query.
	RelevantDocuments []SearchResult

	// RelevantMessages are prior messages from the same conversation,
	// most recent first.
	RelevantMessages []Message
}

// DocumentInput is one document submitted for batch indexing.
type DocumentInput struct {
	// Path is the logical identifier of the document.
	Path string

	// Content is the full text content.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any
}

// IndexResult is the per-document outcome of a batch indexing call.
// A failed entry carries its error instead of aborting the batch.
type IndexResult struct {
	// Path is the document path this result refers to.
	Path string

	// Document is the indexed record, nil when Err is set.
	Document *Document

	// Err is the failure for this document, nil on success.
	Err error
}
