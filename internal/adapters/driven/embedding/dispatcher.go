// Package embedding composes embedding adapters into the service the
// core consumes: batched concurrent dispatch against a remote primary,
// an optional local fallback model, an optional rate limit, and an
// optional content-hash cache.
package embedding

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/lattice/internal/core/domain"
	"github.com/custodia-labs/lattice/internal/core/ports/driven"
	"github.com/custodia-labs/lattice/internal/logger"
)

// Ensure Dispatcher implements the interface.
var _ driven.EmbeddingService = (*Dispatcher)(nil)

// DefaultBatchSize caps concurrent in-flight provider requests.
const DefaultBatchSize = 5

// Dispatcher implements driven.EmbeddingService over a primary
// provider. Requests are dispatched in groups of at most the batch
// size, each group fully awaited before the next starts, which bounds
// memory and provider rate-limit exposure.
type Dispatcher struct {
	primary   driven.EmbeddingService
	fallback  driven.EmbeddingService
	cache     driven.EmbeddingCache
	limiter   *rate.Limiter
	batchSize int
}

// Option configures the dispatcher.
type Option func(*Dispatcher)

// WithFallback sets the local model used when the primary fails. The
// fallback must produce vectors of the primary's dimensions.
func WithFallback(svc driven.EmbeddingService) Option {
	return func(d *Dispatcher) {
		d.fallback = svc
	}
}

// WithCache sets the embedding cache consulted before the provider.
func WithCache(cache driven.EmbeddingCache) Option {
	return func(d *Dispatcher) {
		d.cache = cache
	}
}

// WithRateLimit caps provider requests per second. Zero disables the limit.
func WithRateLimit(rps float64) Option {
	return func(d *Dispatcher) {
		if rps > 0 {
			d.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithBatchSize sets the concurrent dispatch group size.
func WithBatchSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

// NewDispatcher creates a dispatcher over the primary service. A
// fallback whose vector size differs from the primary's is rejected:
// vectors from both ends land in the same store, and a mismatched
// fallback vector would score zero against every query.
func NewDispatcher(primary driven.EmbeddingService, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		primary:   primary,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.fallback != nil && d.fallback.Dimensions() != primary.Dimensions() {
		return nil, fmt.Errorf(
			"%w: fallback model %s produces %d-dimension vectors, primary %s produces %d",
			domain.ErrInvalidInput,
			d.fallback.ModelName(), d.fallback.Dimensions(),
			primary.ModelName(), primary.Dimensions(),
		)
	}
	return d, nil
}

// Embed generates a vector embedding for the given text.
func (d *Dispatcher) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := d.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts. Texts are
// processed in groups of the batch size; requests within a group run
// concurrently and the group is fully awaited before the next begins.
func (d *Dispatcher) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings := make([][]float32, len(texts))

	for start := 0; start < len(texts); start += d.batchSize {
		end := start + d.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		logger.Debug("Embedding group %d..%d of %d", start, end-1, len(texts))

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				embedding, err := d.embedOne(gctx, texts[i])
				if err != nil {
					return fmt.Errorf("embed text %d: %w", i, err)
				}
				embeddings[i] = embedding
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return embeddings, nil
}

// embedOne resolves a single embedding: cache, then primary, then the
// local fallback when the primary fails.
func (d *Dispatcher) embedOne(ctx context.Context, text string) ([]float32, error) {
	contentHash := domain.HashContent(text)

	if d.cache != nil {
		cached, ok, err := d.cache.Get(ctx, d.primary.ModelName(), contentHash)
		if err != nil {
			logger.Warn("Embedding cache read failed: %v", err)
		} else if ok {
			return cached, nil
		}
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	embedding, err := d.primary.Embed(ctx, text)
	if err == nil {
		if d.cache != nil {
			if cacheErr := d.cache.Put(ctx, d.primary.ModelName(), contentHash, embedding); cacheErr != nil {
				logger.Warn("Embedding cache write failed: %v", cacheErr)
			}
		}
		return embedding, nil
	}

	if d.fallback == nil {
		return nil, err
	}

	logger.Warn("Primary embedding failed, using local fallback %s: %v", d.fallback.ModelName(), err)

	fallbackEmbedding, fallbackErr := d.fallback.Embed(ctx, text)
	if fallbackErr != nil {
		return nil, fmt.Errorf("fallback after %v: %w", err, fallbackErr)
	}
	return fallbackEmbedding, nil
}

// Dimensions returns the primary model's embedding vector size.
func (d *Dispatcher) Dimensions() int {
	return d.primary.Dimensions()
}

// ModelName returns the primary model name.
func (d *Dispatcher) ModelName() string {
	return d.primary.ModelName()
}

// Ping validates connectivity. A dispatcher with a reachable fallback
// is considered usable even when the primary is down.
func (d *Dispatcher) Ping(ctx context.Context) error {
	err := d.primary.Ping(ctx)
	if err == nil {
		return nil
	}
	if d.fallback != nil {
		if fallbackErr := d.fallback.Ping(ctx); fallbackErr == nil {
			logger.Warn("Primary embedding unreachable, fallback available: %v", err)
			return nil
		}
	}
	return err
}

// Close releases all composed resources.
func (d *Dispatcher) Close() error {
	var firstErr error
	if err := d.primary.Close(); err != nil {
		firstErr = err
	}
	if d.fallback != nil {
		if err := d.fallback.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.cache != nil {
		if err := d.cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
