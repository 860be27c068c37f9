package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lattice/internal/core/domain"
	"github.com/custodia-labs/lattice/internal/core/graph"
)

func mustRun(t *testing.T, c *Client, q graph.Query) []map[string]any {
	t.Helper()
	rows, err := c.RunQuery(context.Background(), q.Text, q.Params)
	require.NoError(t, err)
	return rows
}

func mergeNode(t *testing.T, c *Client, n graph.Node) {
	t.Helper()
	q, err := graph.MergeQuery(n)
	require.NoError(t, err)
	mustRun(t, c, q)
}

func linkNodes(t *testing.T, c *Client, from graph.Node, rel string, to graph.Node) {
	t.Helper()
	q, err := graph.Link(from, rel, to)
	require.NoError(t, err)
	mustRun(t, c, q)
}

// seedDocument indexes one document with a single embedded chunk.
func seedDocument(t *testing.T, c *Client, path, content string, embedding []float32, model string) (*domain.Document, *domain.Chunk) {
	t.Helper()
	doc := domain.NewDocument("", path, content)
	doc.Title = "Title " + path
	chunk := domain.NewChunk(doc, 0, content, 0)
	store := domain.NewVectorStore(model)
	vector := domain.NewVector(chunk.ID, store.ID, embedding)

	mergeNode(t, c, graph.DocumentNode{Document: doc})
	mergeNode(t, c, graph.ChunkNode{Chunk: chunk})
	mergeNode(t, c, graph.VectorStoreNode{VectorStore: store})
	mergeNode(t, c, graph.VectorNode{Vector: vector})
	linkNodes(t, c, graph.ChunkNode{Chunk: chunk}, graph.RelBelongsTo, graph.DocumentNode{Document: doc})
	linkNodes(t, c, graph.VectorNode{Vector: vector}, graph.RelEmbeds, graph.ChunkNode{Chunk: chunk})
	linkNodes(t, c, graph.VectorNode{Vector: vector}, graph.RelStoredIn, graph.VectorStoreNode{VectorStore: store})
	return doc, chunk
}

func TestMergeIsIdempotent(t *testing.T) {
	c := New()
	doc := domain.NewDocument("", "docs/a.md", "hello")

	mergeNode(t, c, graph.DocumentNode{Document: doc})
	mergeNode(t, c, graph.DocumentNode{Document: doc})

	assert.Equal(t, 1, c.NodeCount(graph.LabelDocument))
	node, ok := c.Node(graph.LabelDocument, doc.ID)
	require.True(t, ok)
	assert.Equal(t, "docs/a.md", node["path"])
}

func TestLinkRequiresBothEndpoints(t *testing.T) {
	c := New()
	doc := domain.NewDocument("", "docs/a.md", "hello")
	chunk := domain.NewChunk(doc, 0, "hello", 0)

	// Document never merged: link is silently a no-op.
	mergeNode(t, c, graph.ChunkNode{Chunk: chunk})
	linkNodes(t, c, graph.ChunkNode{Chunk: chunk}, graph.RelBelongsTo, graph.DocumentNode{Document: doc})
	assert.False(t, c.HasEdge(graph.LabelChunk, chunk.ID, graph.RelBelongsTo, graph.LabelDocument, doc.ID))

	mergeNode(t, c, graph.DocumentNode{Document: doc})
	linkNodes(t, c, graph.ChunkNode{Chunk: chunk}, graph.RelBelongsTo, graph.DocumentNode{Document: doc})
	assert.True(t, c.HasEdge(graph.LabelChunk, chunk.ID, graph.RelBelongsTo, graph.LabelDocument, doc.ID))
}

func TestDocumentByPath(t *testing.T) {
	c := New()
	doc, _ := seedDocument(t, c, "docs/a.md", "hello world", []float32{1, 0}, "test-model")

	rows := mustRun(t, c, graph.DocumentByPathQuery("docs/a.md"))
	require.Len(t, rows, 1)
	assert.Equal(t, doc.ID, rows[0]["id"])
	assert.Equal(t, domain.HashContent("hello world"), rows[0]["content_hash"])
	assert.Equal(t, "hello world", rows[0]["content"], "lookup returns the full stored record")

	assert.Empty(t, mustRun(t, c, graph.DocumentByPathQuery("docs/missing.md")))
}

func TestSemanticSearchRanksAndFilters(t *testing.T) {
	c := New()
	_, near := seedDocument(t, c, "docs/near.md", "near content", []float32{1, 0}, "test-model")
	seedDocument(t, c, "docs/far.md", "far content", []float32{0, 1}, "test-model")
	seedDocument(t, c, "docs/other.md", "other model", []float32{1, 0}, "other-model")

	hits, err := c.SemanticSearch(context.Background(), []float32{1, 0.1}, "test-model", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2, "foreign-store vectors must not appear")
	assert.Equal(t, near.ID, hits[0].ChunkID)
	assert.Equal(t, "docs/near.md", hits[0].Path)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestSemanticSearchSkipsStale(t *testing.T) {
	c := New()
	doc, _ := seedDocument(t, c, "docs/a.md", "hello", []float32{1, 0}, "test-model")

	mustRun(t, c, graph.MarkVectorsStaleQuery(doc.ID, time.Now().UTC().Format(time.RFC3339Nano)))

	hits, err := c.SemanticSearch(context.Background(), []float32{1, 0}, "test-model", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestTrimChunks(t *testing.T) {
	c := New()
	doc := domain.NewDocument("", "docs/a.md", "one two three")
	for i, content := range []string{"one", "two", "three"} {
		mergeNode(t, c, graph.ChunkNode{Chunk: domain.NewChunk(doc, i, content, 0)})
	}

	mustRun(t, c, graph.TrimChunksQuery(doc.ID, 1))
	assert.Equal(t, 1, c.NodeCount(graph.LabelChunk))
}

func TestMessagesNewestFirst(t *testing.T) {
	c := New()
	conv := domain.NewConversation("user-1", "support")
	mergeNode(t, c, graph.ConversationNode{Conversation: conv})

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, content := range []string{"oldest", "middle", "newest"} {
		msg := domain.NewMessage(conv.ID, "user", content)
		msg.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		mergeNode(t, c, graph.MessageNode{Message: msg})
	}

	rows := mustRun(t, c, graph.MessagesForConversationQuery(conv.ID, 2))
	require.Len(t, rows, 2)
	assert.Equal(t, "newest", rows[0]["content"])
	assert.Equal(t, "middle", rows[1]["content"])
}

func TestUnknownQueryFails(t *testing.T) {
	c := New()
	_, err := c.RunQuery(context.Background(), "MATCH (n) RETURN n", nil)
	assert.ErrorIs(t, err, domain.ErrQueryFailed)
}
