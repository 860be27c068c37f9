package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/lattice/internal/core/domain"
	"github.com/custodia-labs/lattice/internal/core/graph"
	"github.com/custodia-labs/lattice/internal/core/ports/driven"
	"github.com/custodia-labs/lattice/internal/core/ports/driving"
	"github.com/custodia-labs/lattice/internal/logger"
	"github.com/custodia-labs/lattice/internal/tokens"
)

// Ensure RetrieverService implements the interface.
var _ driving.Retriever = (*RetrieverService)(nil)

// DefaultSearchLimit caps result counts when callers pass none.
const DefaultSearchLimit = 10

// DefaultHistoryLimit caps how many prior messages conversation
// context includes.
const DefaultHistoryLimit = 20

// RetrieverService answers similarity queries over the indexed graph.
type RetrieverService struct {
	graphClient  driven.GraphClient
	embedder     driven.EmbeddingService
	counter      *tokens.Counter
	historyLimit int
}

// RetrieverOption configures the retriever service.
type RetrieverOption func(*RetrieverService)

// WithContextTokenCounter sets the counter used for context budgeting.
// Without one, budgets are estimated from byte length.
func WithContextTokenCounter(counter *tokens.Counter) RetrieverOption {
	return func(s *RetrieverService) {
		s.counter = counter
	}
}

// WithHistoryLimit sets how many prior messages conversation context
// includes.
func WithHistoryLimit(n int) RetrieverOption {
	return func(s *RetrieverService) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// NewRetrieverService creates the retriever over a graph client and an
// embedding service.
func NewRetrieverService(graphClient driven.GraphClient, embedder driven.EmbeddingService, opts ...RetrieverOption) *RetrieverService {
	s := &RetrieverService{
		graphClient:  graphClient,
		embedder:     embedder,
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchDocuments embeds the query and returns the most similar
// fragments, ordered by non-increasing score.
func (s *RetrieverService) SearchDocuments(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is empty", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.graphClient.SemanticSearch(ctx, embedding, s.embedder.ModelName(), limit)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = domain.SearchResult{
			DocumentID: hit.DocumentID,
			ChunkID:    hit.ChunkID,
			Path:       hit.Path,
			Title:      hit.Title,
			Content:    hit.Content,
			Score:      hit.Score,
		}
	}

	logger.Debug("Search %q returned %d results", query, len(results))
	return results, nil
}

// ConversationContext combines a document search for the query with
// the conversation's prior messages, most recent first.
func (s *RetrieverService) ConversationContext(ctx context.Context, query, conversationID, messageID string) (*domain.ConversationContext, error) {
	results, err := s.SearchDocuments(ctx, query, DefaultSearchLimit)
	if err != nil {
		return nil, err
	}

	cc := &domain.ConversationContext{RelevantDocuments: results}
	if conversationID == "" {
		return cc, nil
	}

	q := graph.MessagesForConversationQuery(conversationID, s.historyLimit)
	rows, err := s.graphClient.RunQuery(ctx, q.Text, q.Params)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		msg := graph.MessageFromProps(row)
		// The message being answered is context the caller already has.
		if messageID != "" && msg.ID == messageID {
			continue
		}
		msg.ConversationID = conversationID
		cc.RelevantMessages = append(cc.RelevantMessages, *msg)
	}
	return cc, nil
}

// FormatContext concatenates fragment contents, each under a path
// header, until the token budget is exhausted. The last fragment that
// does not fit whole is truncated rather than dropped.
func (s *RetrieverService) FormatContext(results []domain.SearchResult, maxTokens int) string {
	if len(results) == 0 || maxTokens <= 0 {
		return ""
	}

	var b strings.Builder
	remaining := maxTokens
	for _, result := range results {
		fragment := fmt.Sprintf("## %s\n%s\n\n", result.Path, result.Content)
		cost := s.countTokens(fragment)
		if cost <= remaining {
			b.WriteString(fragment)
			remaining -= cost
			continue
		}
		if remaining > 0 {
			b.WriteString(s.trimTokens(fragment, remaining))
		}
		break
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *RetrieverService) countTokens(text string) int {
	if s.counter != nil {
		return s.counter.Count(text)
	}
	return (len(text) + 3) / 4
}

func (s *RetrieverService) trimTokens(text string, maxTokens int) string {
	if s.counter != nil {
		return s.counter.Trim(text, maxTokens)
	}
	budget := maxTokens * 4
	if len(text) <= budget {
		return text
	}
	return text[:budget]
}
