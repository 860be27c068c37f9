// Package services implements the driving ports by orchestrating the
// entity model, the splitter, and the driven adapters.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/lattice/internal/core/domain"
	"github.com/custodia-labs/lattice/internal/core/graph"
	"github.com/custodia-labs/lattice/internal/core/ports/driven"
	"github.com/custodia-labs/lattice/internal/core/ports/driving"
	"github.com/custodia-labs/lattice/internal/logger"
	"github.com/custodia-labs/lattice/internal/splitter"
	"github.com/custodia-labs/lattice/internal/tokens"
)

// Ensure IndexerService implements the interface.
var _ driving.Indexer = (*IndexerService)(nil)

// DefaultIndexBatchSize is how many documents a batch ingest processes
// concurrently.
const DefaultIndexBatchSize = 5

// IndexerService ingests documents: split, embed, persist, link.
type IndexerService struct {
	graphClient driven.GraphClient
	embedder    driven.EmbeddingService
	split       *splitter.Splitter
	counter     *tokens.Counter
	batchSize   int

	indexOnce sync.Once
	indexErr  error
}

// IndexerOption configures the indexer service.
type IndexerOption func(*IndexerService)

// WithTokenCounter sets the counter used for chunk token lengths.
// Without one, token counts are estimated from byte length.
func WithTokenCounter(counter *tokens.Counter) IndexerOption {
	return func(s *IndexerService) {
		s.counter = counter
	}
}

// WithIndexBatchSize sets how many documents a batch ingest processes
// concurrently.
func WithIndexBatchSize(n int) IndexerOption {
	return func(s *IndexerService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// NewIndexerService creates the indexer over a graph client, an
// embedding service, and a splitter.
func NewIndexerService(graphClient driven.GraphClient, embedder driven.EmbeddingService, split *splitter.Splitter, opts ...IndexerOption) *IndexerService {
	s := &IndexerService{
		graphClient: graphClient,
		embedder:    embedder,
		split:       split,
		batchSize:   DefaultIndexBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IndexDocument ingests one document. Content whose hash matches the
// stored record is a dedup fast path: no re-chunking, no re-embedding,
// no writes.
func (s *IndexerService) IndexDocument(ctx context.Context, path, content string, metadata map[string]any) (*domain.Document, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: document path is empty", domain.ErrInvalidInput)
	}

	contentHash := domain.HashContent(content)

	stored, err := s.lookupByPath(ctx, path)
	if err != nil {
		return nil, err
	}

	if stored != nil && stored.ContentHash == contentHash {
		logger.Debug("Document %s unchanged, skipping", path)
		return stored, nil
	}

	doc := domain.NewDocument("", path, content)
	doc.Title = deriveTitle(content)
	if metadata != nil {
		doc.Metadata = metadata
	}
	if stored != nil {
		doc.CreatedAt = stored.CreatedAt
		// Changed content supersedes: existing embeddings are marked
		// stale before anything new is written, so search never mixes
		// old vectors with new text.
		staleQ := graph.MarkVectorsStaleQuery(doc.ID, time.Now().UTC().Format(time.RFC3339Nano))
		if _, err := s.graphClient.RunQuery(ctx, staleQ.Text, staleQ.Params); err != nil {
			return nil, err
		}
	}

	fragments := s.split.SplitAll(content)

	var embeddings [][]float32
	if len(fragments) > 0 {
		embeddings, err = s.embedder.EmbedBatch(ctx, fragments)
		if err != nil {
			return nil, fmt.Errorf("embed %s: %w", path, err)
		}
	}

	if err := s.ensureVectorIndex(ctx); err != nil {
		return nil, err
	}

	store := domain.NewVectorStore(s.embedder.ModelName())
	store.Status = domain.VectorStoreStatusCompleted

	if err := s.merge(ctx, graph.DocumentNode{Document: doc}); err != nil {
		return nil, err
	}
	if err := s.merge(ctx, graph.VectorStoreNode{VectorStore: store}); err != nil {
		return nil, err
	}

	for i, fragment := range fragments {
		chunk := domain.NewChunk(doc, i, fragment, s.countTokens(fragment))
		vector := domain.NewVector(chunk.ID, store.ID, embeddings[i])

		if err := s.merge(ctx, graph.ChunkNode{Chunk: chunk}); err != nil {
			return nil, err
		}
		if err := s.merge(ctx, graph.VectorNode{Vector: vector}); err != nil {
			return nil, err
		}
		if err := s.link(ctx, graph.ChunkNode{Chunk: chunk}, graph.RelBelongsTo, graph.DocumentNode{Document: doc}); err != nil {
			return nil, err
		}
		if err := s.link(ctx, graph.VectorNode{Vector: vector}, graph.RelEmbeds, graph.ChunkNode{Chunk: chunk}); err != nil {
			return nil, err
		}
		if err := s.link(ctx, graph.VectorNode{Vector: vector}, graph.RelStoredIn, graph.VectorStoreNode{VectorStore: store}); err != nil {
			return nil, err
		}
	}

	if stored != nil {
		trimQ := graph.TrimChunksQuery(doc.ID, len(fragments))
		if _, err := s.graphClient.RunQuery(ctx, trimQ.Text, trimQ.Params); err != nil {
			return nil, err
		}
	}

	logger.Info("Indexed %s: %d chunks", path, len(fragments))
	return doc, nil
}

// IndexDocuments ingests documents in groups of the batch size. Each
// group runs concurrently and completes before the next begins. A
// failed document carries its error in its result without aborting
// siblings.
func (s *IndexerService) IndexDocuments(ctx context.Context, docs []domain.DocumentInput) []domain.IndexResult {
	results := make([]domain.IndexResult, len(docs))

	for start := 0; start < len(docs); start += s.batchSize {
		end := start + s.batchSize
		if end > len(docs) {
			end = len(docs)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				doc, err := s.IndexDocument(ctx, docs[i].Path, docs[i].Content, docs[i].Metadata)
				if err != nil {
					logger.Error("Indexing %s failed: %v", docs[i].Path, err)
				}
				results[i] = domain.IndexResult{Path: docs[i].Path, Document: doc, Err: err}
			}()
		}
		wg.Wait()
	}

	return results
}

// Patterns for symbol extraction. Line-anchored so prose mentioning
// keywords does not produce symbols.
var symbolPatterns = []struct {
	kind string
	re   *regexp.Regexp
}{
	{"func", regexp.MustCompile(`(?m)^\s*(?:func|def|function)\s+\(?[^)\n]*\)?\s*([A-Za-z_][A-Za-z0-9_]*)\s*\(`)},
	{"type", regexp.MustCompile(`(?m)^\s*(?:type|class|interface|struct)\s+([A-Za-z_][A-Za-z0-9_]*)`)},
}

// ExtractAndIndexSymbols extracts named code constructs from a
// document and links each to it with a DEFINES edge. A failed symbol
// does not abort the rest; per-symbol errors are joined.
func (s *IndexerService) ExtractAndIndexSymbols(ctx context.Context, doc *domain.Document) ([]domain.Symbol, error) {
	seen := map[string]bool{}
	var symbols []domain.Symbol
	var errs []error

	for _, pattern := range symbolPatterns {
		for _, match := range pattern.re.FindAllStringSubmatch(doc.Content, -1) {
			sym := domain.NewSymbol(doc, match[1], pattern.kind)
			if seen[sym.ID] {
				continue
			}
			seen[sym.ID] = true

			if err := s.merge(ctx, graph.SymbolNode{Symbol: sym}); err != nil {
				errs = append(errs, fmt.Errorf("symbol %s: %w", sym.Name, err))
				continue
			}
			if err := s.link(ctx, graph.DocumentNode{Document: doc}, graph.RelDefines, graph.SymbolNode{Symbol: sym}); err != nil {
				errs = append(errs, fmt.Errorf("symbol %s: %w", sym.Name, err))
				continue
			}
			symbols = append(symbols, *sym)
		}
	}

	logger.Debug("Extracted %d symbols from %s", len(symbols), doc.Path)
	return symbols, errors.Join(errs...)
}

var urlPattern = regexp.MustCompile(`https?://[^\s)\]>"'` + "`" + `]+`)

// ExtractAndIndexResources extracts referenced URLs from a document and
// records each as a web source linked with a REFERENCES edge. A failed
// resource does not abort the rest; per-resource errors are joined.
func (s *IndexerService) ExtractAndIndexResources(ctx context.Context, doc *domain.Document) ([]domain.Source, error) {
	seen := map[string]bool{}
	var sources []domain.Source
	var errs []error

	for _, raw := range urlPattern.FindAllString(doc.Content, -1) {
		raw = strings.TrimRight(raw, ".,;:")
		if seen[raw] {
			continue
		}
		seen[raw] = true

		src := domain.NewSource(hostOf(raw), domain.SourceTypeWeb, raw)
		if err := s.merge(ctx, graph.SourceNode{Source: src}); err != nil {
			errs = append(errs, fmt.Errorf("resource %s: %w", raw, err))
			continue
		}
		if err := s.link(ctx, graph.DocumentNode{Document: doc}, graph.RelReferences, graph.SourceNode{Source: src}); err != nil {
			errs = append(errs, fmt.Errorf("resource %s: %w", raw, err))
			continue
		}
		sources = append(sources, *src)
	}

	logger.Debug("Extracted %d resources from %s", len(sources), doc.Path)
	return sources, errors.Join(errs...)
}

// IndexDocumentRelations records ordering and provenance edges for a
// sequence of documents: each document FOLLOWS its predecessor, and
// documents with a source get a SOURCED_FROM edge.
func (s *IndexerService) IndexDocumentRelations(ctx context.Context, docs []*domain.Document) error {
	for i, doc := range docs {
		if i > 0 {
			if err := s.link(ctx, graph.DocumentNode{Document: doc}, graph.RelFollows, graph.DocumentNode{Document: docs[i-1]}); err != nil {
				return err
			}
		}
		if doc.SourceID != "" {
			q, err := graph.LinkQuery(graph.LabelDocument, doc.ID, graph.RelSourcedFrom, graph.LabelSource, doc.SourceID)
			if err != nil {
				return err
			}
			if _, err := s.graphClient.RunQuery(ctx, q.Text, q.Params); err != nil {
				return err
			}
		}
	}
	return nil
}

// ensureVectorIndex provisions the native index once per service
// lifetime. The embedding model's dimensions are only known after the
// embedder is constructed, hence lazily here rather than at wiring.
func (s *IndexerService) ensureVectorIndex(ctx context.Context) error {
	s.indexOnce.Do(func() {
		s.indexErr = s.graphClient.EnsureVectorIndex(ctx, s.embedder.ModelName(), s.embedder.Dimensions())
	})
	return s.indexErr
}

func (s *IndexerService) lookupByPath(ctx context.Context, path string) (*domain.Document, error) {
	q := graph.DocumentByPathQuery(path)
	rows, err := s.graphClient.RunQuery(ctx, q.Text, q.Params)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return graph.DocumentFromProps(rows[0]), nil
}

func (s *IndexerService) merge(ctx context.Context, n graph.Node) error {
	q, err := graph.MergeQuery(n)
	if err != nil {
		return err
	}
	_, err = s.graphClient.RunQuery(ctx, q.Text, q.Params)
	return err
}

func (s *IndexerService) link(ctx context.Context, from graph.Node, rel string, to graph.Node) error {
	q, err := graph.Link(from, rel, to)
	if err != nil {
		return err
	}
	_, err = s.graphClient.RunQuery(ctx, q.Text, q.Params)
	return err
}

func (s *IndexerService) countTokens(text string) int {
	if s.counter != nil {
		return s.counter.Count(text)
	}
	// Rough estimate: four bytes per token for English text.
	return (len(text) + 3) / 4
}

// deriveTitle takes the first non-empty line, stripped of markdown
// heading markers.
func deriveTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
		if line != "" {
			if len(line) > 120 {
				line = line[:120]
			}
			return line
		}
	}
	return ""
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
