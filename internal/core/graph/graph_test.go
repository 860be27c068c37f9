package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lattice/internal/core/domain"
)

func TestMergeQuery_Document(t *testing.T) {
	doc := domain.NewDocument("src-1", "notes/a.md", "hello world")
	doc.Title = "Notes"

	q, err := MergeQuery(DocumentNode{doc})
	require.NoError(t, err)

	assert.Contains(t, q.Text, "MERGE (n:Document {id: $id})")
	assert.Contains(t, q.Text, "ON CREATE SET n.created_at")
	assert.Equal(t, doc.ID, q.Params["id"])

	props, ok := q.Params["props"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "notes/a.md", props["path"])
	assert.Equal(t, "Notes", props["title"])
	assert.Equal(t, domain.HashContent("hello world"), props["content_hash"])
	assert.NotContains(t, props, "created_at", "created_at is set only on create")
}

func TestMergeQuery_RecomputesContentHash(t *testing.T) {
	doc := domain.NewDocument("src-1", "notes/a.md", "hello")
	// A caller-supplied hash must never survive serialisation.
	doc.ContentHash = "bogus"

	q, err := MergeQuery(DocumentNode{doc})
	require.NoError(t, err)

	props := q.Params["props"].(map[string]any)
	assert.Equal(t, domain.HashContent("hello"), props["content_hash"])
}

func TestLinkQuery(t *testing.T) {
	q, err := LinkQuery(LabelChunk, "c1", RelBelongsTo, LabelDocument, "d1")
	require.NoError(t, err)

	assert.Equal(t,
		"MATCH (a:Chunk {id: $from_id}) MATCH (b:Document {id: $to_id}) MERGE (a)-[:BELONGS_TO]->(b)",
		q.Text)
	assert.Equal(t, "c1", q.Params["from_id"])
	assert.Equal(t, "d1", q.Params["to_id"])
}

func TestLinkQuery_UnknownRelationship(t *testing.T) {
	_, err := LinkQuery(LabelChunk, "c1", "EXPLODES", LabelDocument, "d1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownRelationship))
}

func TestLink_Nodes(t *testing.T) {
	doc := domain.NewDocument("src-1", "a.md", "x")
	src := domain.NewSource("fs", domain.SourceTypeFile, "/data")

	q, err := Link(DocumentNode{doc}, RelSourcedFrom, SourceNode{src})
	require.NoError(t, err)
	assert.Contains(t, q.Text, "(a:Document")
	assert.Contains(t, q.Text, "(b:Source")
	assert.Contains(t, q.Text, "[:SOURCED_FROM]")
}

func TestProps_RoundTrip_Source(t *testing.T) {
	src := domain.NewSource("docs", domain.SourceTypeWeb, "https://example.com")
	src.Metadata["depth"] = float64(2)

	props, err := SourceNode{src}.Props()
	require.NoError(t, err)
	props["id"] = src.ID

	got := SourceFromProps(props)
	assert.Equal(t, src.ID, got.ID)
	assert.Equal(t, src.Name, got.Name)
	assert.Equal(t, src.Type, got.Type)
	assert.Equal(t, src.BaseURI, got.BaseURI)
	assert.Equal(t, float64(2), got.Metadata["depth"])
	assert.True(t, src.CreatedAt.Equal(got.CreatedAt))
}

func TestProps_RoundTrip_Chunk(t *testing.T) {
	doc := domain.NewDocument("src-1", "a.md", "one two three")
	chunk := domain.NewChunk(doc, 1, "two", 1)

	props, err := ChunkNode{chunk}.Props()
	require.NoError(t, err)
	props["id"] = chunk.ID

	got := ChunkFromProps(props)
	assert.Equal(t, chunk.ID, got.ID)
	assert.Equal(t, chunk.DocumentID, got.DocumentID)
	assert.Equal(t, "a.md#1", got.Path)
	assert.Equal(t, 1, got.Index)
	assert.Equal(t, chunk.ContentHash, got.ContentHash)
}

func TestProps_RoundTrip_Vector(t *testing.T) {
	vec := domain.NewVector("chunk-1", "store-1", []float32{0.5, -1.25, 3})
	vec.Stale = true

	props, err := VectorNode{vec}.Props()
	require.NoError(t, err)
	props["id"] = vec.ID

	got := VectorFromProps(props)
	assert.Equal(t, vec.ID, got.ID)
	assert.Equal(t, []float32{0.5, -1.25, 3}, got.Embedding)
	assert.True(t, got.Stale)
}

func TestFromProps_UnknownFieldsLandInMetadata(t *testing.T) {
	doc := domain.NewDocument("src-1", "a.md", "content")
	props, err := DocumentNode{doc}.Props()
	require.NoError(t, err)
	props["id"] = doc.ID
	props["legacy_field"] = "kept"
	props["rank"] = int64(7)

	got := DocumentFromProps(props)
	assert.Equal(t, "kept", got.Metadata["legacy_field"])
	assert.Equal(t, int64(7), got.Metadata["rank"])
	assert.NotContains(t, got.Metadata, "path", "typed fields stay out of metadata")
}

func TestDecodeEmbedding_Shapes(t *testing.T) {
	want := []float32{1, 2.5, -3}

	assert.Equal(t, want, DecodeEmbedding([]float32{1, 2.5, -3}))
	assert.Equal(t, want, DecodeEmbedding([]float64{1, 2.5, -3}))
	assert.Equal(t, want, DecodeEmbedding([]any{float64(1), float64(2.5), float64(-3)}))
	assert.Nil(t, DecodeEmbedding("not a list"))
}
