// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/lattice/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lattice/internal/adapters/driven/embedding"
	"github.com/custodia-labs/lattice/internal/adapters/driven/embedding/cache"
	"github.com/custodia-labs/lattice/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/lattice/internal/adapters/driven/embedding/openai"
	graphneo4j "github.com/custodia-labs/lattice/internal/adapters/driven/graph/neo4j"
	"github.com/custodia-labs/lattice/internal/core/domain"
	"github.com/custodia-labs/lattice/internal/core/ports/driven"
	"github.com/custodia-labs/lattice/internal/core/ports/driving"
	"github.com/custodia-labs/lattice/internal/core/services"
	"github.com/custodia-labs/lattice/internal/logger"
	"github.com/custodia-labs/lattice/internal/splitter"
	"github.com/custodia-labs/lattice/internal/tokens"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose    bool
	configPath string
)

// Services are package level so tests can inject fakes; when nil, the
// real stack is wired from configuration on first use.
var (
	indexerService   driving.Indexer
	retrieverService driving.Retriever
	closers          []func() error
)

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "Graph-backed document indexing and retrieval",
	Long: `Lattice splits documents into overlapping chunks, embeds them, and
stores them as a property graph with vector similarity search.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
}

// Execute runs the CLI and releases any wired adapters afterwards.
func Execute() error {
	defer closeAll()
	return rootCmd.Execute()
}

func closeAll() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			logger.Warn("Close failed: %v", err)
		}
	}
	closers = nil
}

// loadSettings reads configuration from the --config path or the
// default location.
func loadSettings() (domain.AppSettings, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = configfile.DefaultPath()
		if err != nil {
			return domain.AppSettings{}, err
		}
	}
	return configfile.New(path).Load()
}

// ensureServices wires the real indexer and retriever from
// configuration unless tests already injected them.
func ensureServices(ctx context.Context) error {
	if indexerService != nil && retrieverService != nil {
		return nil
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	if !settings.Graph.IsConfigured() {
		return fmt.Errorf("graph backend not configured: set graph.uri in the config file")
	}

	graphClient, err := graphneo4j.New(ctx, graphneo4j.Config{
		URI:      settings.Graph.URI,
		Username: settings.Graph.Username,
		Password: settings.Graph.Password,
		Database: settings.Graph.Database,
	})
	if err != nil {
		return err
	}
	closers = append(closers, func() error { return graphClient.Close(context.Background()) })

	embedder, err := buildEmbedder(settings.Embedding)
	if err != nil {
		return err
	}
	closers = append(closers, embedder.Close)

	split := splitter.New(
		splitter.WithChunkSize(settings.Splitter.ChunkSize),
		splitter.WithOverlap(settings.Splitter.Overlap),
		splitter.WithSeparator(settings.Splitter.Separator),
	)

	indexerOpts := []services.IndexerOption{
		services.WithIndexBatchSize(settings.Embedding.BatchSize),
	}
	var retrieverOpts []services.RetrieverOption
	if counter, err := tokens.NewCounter(); err == nil {
		indexerOpts = append(indexerOpts, services.WithTokenCounter(counter))
		retrieverOpts = append(retrieverOpts, services.WithContextTokenCounter(counter))
	} else {
		logger.Warn("Token counter unavailable, using byte estimates: %v", err)
	}

	indexerService = services.NewIndexerService(graphClient, embedder, split, indexerOpts...)
	retrieverService = services.NewRetrieverService(graphClient, embedder, retrieverOpts...)
	return nil
}

// buildEmbedder composes the configured primary provider with the
// optional local fallback, cache, and rate limit.
func buildEmbedder(cfg domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	var primary driven.EmbeddingService
	switch {
	case cfg.IsConfigured():
		svc, err := openai.NewEmbeddingService(openai.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, err
		}
		primary = svc
	case cfg.Fallback.Enabled:
		// No remote provider: the local model is the primary.
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.Fallback.BaseURL,
			Model:      cfg.Fallback.Model,
			Dimensions: cfg.Fallback.Dimensions,
		}), nil
	default:
		return nil, fmt.Errorf("embedding provider not configured: set embedding.provider and %s", configfile.EnvOpenAIKey)
	}

	opts := []embedding.Option{
		embedding.WithBatchSize(cfg.BatchSize),
		embedding.WithRateLimit(cfg.RequestsPerSecond),
	}
	if cfg.Fallback.Enabled {
		opts = append(opts, embedding.WithFallback(ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.Fallback.BaseURL,
			Model:      cfg.Fallback.Model,
			Dimensions: cfg.Fallback.Dimensions,
		})))
	}
	if cfg.CachePath != "" {
		store, err := cache.Open(cfg.CachePath)
		if err != nil {
			logger.Warn("Embedding cache disabled: %v", err)
		} else {
			opts = append(opts, embedding.WithCache(store))
		}
	}
	dispatcher, err := embedding.NewDispatcher(primary, opts...)
	if err != nil {
		return nil, fmt.Errorf("wire embedding fallback: %w (set embedding.dimensions or fallback.dimensions so both models match)", err)
	}
	return dispatcher, nil
}
