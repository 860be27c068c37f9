package driving

import (
	"context"

	"github.com/custodia-labs/lattice/internal/core/domain"
)

// Retriever answers queries over the indexed graph.
type Retriever interface {
	// SearchDocuments embeds the query and returns the most similar
	// fragments, ordered by non-increasing score.
	SearchDocuments(ctx context.Context, query string, limit int) ([]domain.SearchResult, error)

	// ConversationContext combines a document search with the prior
	// messages of the given conversation.
	ConversationContext(ctx context.Context, query, conversationID, messageID string) (*domain.ConversationContext, error)

	// FormatContext concatenates fragment contents up to a token
	// budget, truncating the last included fragment rather than
	// dropping it. Deterministic for identical inputs.
	FormatContext(results []domain.SearchResult, maxTokens int) string
}
