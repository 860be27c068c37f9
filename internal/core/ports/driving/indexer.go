package driving

import (
	"context"

	"github.com/custodia-labs/lattice/internal/core/domain"
)

// Indexer ingests documents into the graph store.
type Indexer interface {
	// IndexDocument ingests one document. Unchanged content is a
	// dedup fast path: the stored record is returned without
	// re-chunking or re-embedding.
	IndexDocument(ctx context.Context, path, content string, metadata map[string]any) (*domain.Document, error)

	// IndexDocuments ingests documents in fixed-size batches. The
	// result has one entry per input; a failed document carries its
	// error without aborting its siblings.
	IndexDocuments(ctx context.Context, docs []domain.DocumentInput) []domain.IndexResult

	// ExtractAndIndexSymbols extracts code symbols from a document and
	// links them to it. Individual failures are reported but do not
	// roll back sibling symbols.
	ExtractAndIndexSymbols(ctx context.Context, doc *domain.Document) ([]domain.Symbol, error)

	// ExtractAndIndexResources extracts referenced URLs from a
	// document and links them to it as web sources.
	ExtractAndIndexResources(ctx context.Context, doc *domain.Document) ([]domain.Source, error)

	// IndexDocumentRelations records ordering and provenance edges for
	// a sequence of documents.
	IndexDocumentRelations(ctx context.Context, docs []*domain.Document) error
}
