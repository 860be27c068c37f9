package graph

import "fmt"

// DocumentByPathQuery builds the lookup used for ingest dedup: find an
// indexed document by path and return its stored record, so an
// unchanged re-ingest can hand back exactly what the graph holds.
func DocumentByPathQuery(path string) Query {
	text := fmt.Sprintf(
		"MATCH (d:%s {path: $path}) RETURN d.id AS id, d.source_id AS source_id, "+
			"d.path AS path, d.title AS title, d.content AS content, "+
			"d.content_hash AS content_hash, d.metadata AS metadata, "+
			"d.created_at AS created_at, d.updated_at AS updated_at",
		LabelDocument,
	)
	return Query{Text: text, Params: map[string]any{"path": path}}
}

// MarkVectorsStaleQuery builds the supersede step for re-ingesting a
// changed document: every vector embedding one of its chunks is marked
// stale so search never serves embeddings of content that no longer
// exists.
func MarkVectorsStaleQuery(documentID, updatedAt string) Query {
	text := fmt.Sprintf(
		"MATCH (v:%s)-[:%s]->(c:%s)-[:%s]->(d:%s {id: $document_id}) SET v.stale = true, v.updated_at = $updated_at",
		LabelVector, RelEmbeds, LabelChunk, RelBelongsTo, LabelDocument,
	)
	return Query{Text: text, Params: map[string]any{
		"document_id": documentID,
		"updated_at":  updatedAt,
	}}
}

// TrimChunksQuery builds the cleanup step for a re-split that produced
// fewer chunks than before: chunks at index keep and above are removed
// along with their edges. Chunk ids derive from path and index, so the
// surviving indexes were already overwritten by merge.
func TrimChunksQuery(documentID string, keep int) Query {
	text := fmt.Sprintf(
		"MATCH (c:%s {document_id: $document_id}) WHERE c.index >= $keep DETACH DELETE c",
		LabelChunk,
	)
	return Query{Text: text, Params: map[string]any{
		"document_id": documentID,
		"keep":        keep,
	}}
}

// MessagesForConversationQuery builds the history lookup for assembling
// conversation context: the most recent messages first.
func MessagesForConversationQuery(conversationID string, limit int) Query {
	text := fmt.Sprintf(
		"MATCH (m:%s)-[:%s]->(conv:%s {id: $conversation_id}) "+
			"RETURN m.id AS id, m.role AS role, m.content AS content, m.created_at AS created_at "+
			"ORDER BY m.created_at DESC LIMIT $limit",
		LabelMessage, RelBelongsTo, LabelConversation,
	)
	return Query{Text: text, Params: map[string]any{
		"conversation_id": conversationID,
		"limit":           limit,
	}}
}
