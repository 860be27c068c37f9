package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lattice/internal/core/domain"
)

// fakeRetriever serves canned search results.
type fakeRetriever struct {
	results []domain.SearchResult
	err     error
	queries []string
}

func (f *fakeRetriever) SearchDocuments(_ context.Context, query string, _ int) ([]domain.SearchResult, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func (f *fakeRetriever) ConversationContext(_ context.Context, _, _, _ string) (*domain.ConversationContext, error) {
	return &domain.ConversationContext{RelevantDocuments: f.results}, f.err
}

func (f *fakeRetriever) FormatContext(results []domain.SearchResult, _ int) string {
	var parts []string
	for _, r := range results {
		parts = append(parts, r.Content)
	}
	return strings.Join(parts, "\n")
}

// fakeIndexer records the paths it was asked to index.
type fakeIndexer struct {
	paths  []string
	failOn string
}

func (f *fakeIndexer) IndexDocument(_ context.Context, path, content string, _ map[string]any) (*domain.Document, error) {
	if path == f.failOn {
		return nil, domain.ErrProviderUnavailable
	}
	f.paths = append(f.paths, path)
	return domain.NewDocument("", path, content), nil
}

func (f *fakeIndexer) IndexDocuments(ctx context.Context, docs []domain.DocumentInput) []domain.IndexResult {
	results := make([]domain.IndexResult, len(docs))
	for i, input := range docs {
		doc, err := f.IndexDocument(ctx, input.Path, input.Content, input.Metadata)
		results[i] = domain.IndexResult{Path: input.Path, Document: doc, Err: err}
	}
	return results
}

func (f *fakeIndexer) ExtractAndIndexSymbols(_ context.Context, _ *domain.Document) ([]domain.Symbol, error) {
	return nil, nil
}

func (f *fakeIndexer) ExtractAndIndexResources(_ context.Context, _ *domain.Document) ([]domain.Source, error) {
	return nil, nil
}

func (f *fakeIndexer) IndexDocumentRelations(_ context.Context, _ []*domain.Document) error {
	return nil
}

// execute runs the root command with fakes injected and returns its
// combined output.
func execute(t *testing.T, indexer *fakeIndexer, retriever *fakeRetriever, args ...string) (string, error) {
	t.Helper()

	if indexer != nil {
		indexerService = indexer
	} else {
		indexerService = &fakeIndexer{}
	}
	if retriever != nil {
		retrieverService = retriever
	} else {
		retrieverService = &fakeRetriever{}
	}

	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		indexerService = nil
		retrieverService = nil
		searchJSON = false
		contextTokens = 0
		searchLimit = 10
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, nil, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lattice version dev")
}

func TestSearchCommandText(t *testing.T) {
	retriever := &fakeRetriever{results: []domain.SearchResult{
		{Path: "docs/a.md", Title: "Alpha", Content: "alpha content", Score: 0.91},
	}}

	out, err := execute(t, nil, retriever, "search", "alpha")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, retriever.queries)
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "docs/a.md")
	assert.Contains(t, out, "0.910")
}

func TestSearchCommandJSON(t *testing.T) {
	retriever := &fakeRetriever{results: []domain.SearchResult{
		{Path: "docs/a.md", Content: "alpha", Score: 0.5},
	}}

	out, err := execute(t, nil, retriever, "search", "alpha", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"Path": "docs/a.md"`)
}

func TestSearchCommandNoResults(t *testing.T) {
	out, err := execute(t, nil, &fakeRetriever{}, "search", "nothing")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCommandError(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("backend down")}
	_, err := execute(t, nil, retriever, "search", "alpha")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
}

func TestSearchCommandContextBudget(t *testing.T) {
	retriever := &fakeRetriever{results: []domain.SearchResult{
		{Path: "a.md", Content: "fragment one"},
		{Path: "b.md", Content: "fragment two"},
	}}

	out, err := execute(t, nil, retriever, "search", "q", "--context-tokens", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "fragment one\nfragment two")
}

func TestIndexCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("alpha"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.md"), []byte("beta"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("skip"), 0o600))

	indexer := &fakeIndexer{}
	out, err := execute(t, indexer, nil, "index", dir)
	require.NoError(t, err)

	assert.Len(t, indexer.paths, 2, "hidden files are skipped")
	assert.Contains(t, out, "Indexed 2 files (0 failed).")
}

func TestIndexCommandPartialFailure(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.md")
	bad := filepath.Join(dir, "bad.md")
	require.NoError(t, os.WriteFile(good, []byte("good"), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte("bad"), 0o600))

	indexer := &fakeIndexer{failOn: filepath.ToSlash(bad)}
	out, err := execute(t, indexer, nil, "index", dir)
	require.Error(t, err)
	assert.Contains(t, out, "Indexed 1 files (1 failed).")
}

func TestIndexCommandMissingPath(t *testing.T) {
	_, err := execute(t, &fakeIndexer{}, nil, "index", filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
}
