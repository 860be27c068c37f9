package domain

// GraphSettings holds graph backend connection configuration.
type GraphSettings struct {
	// URI is the bolt/neo4j connection URI.
	URI string

	// Username for basic authentication.
	Username string

	// Password for basic authentication.
	Password string

	// Database is the target database name, empty for the default.
	Database string
}

// IsConfigured returns true if a connection can be attempted.
func (g GraphSettings) IsConfigured() bool {
	return g.URI != ""
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider selects the remote provider ("openai").
	Provider string

	// APIKey authenticates against the remote provider.
	APIKey string

	// Model is the embedding model name.
	Model string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// Dimensions overrides the model's default vector size. Needed when
	// a fallback model is enabled whose native size differs.
	Dimensions int

	// BatchSize caps concurrent in-flight embedding requests (default 5).
	BatchSize int

	// RequestsPerSecond limits provider request rate, 0 for unlimited.
	RequestsPerSecond float64

	// Fallback configures the optional local model used when the
	// remote provider fails.
	Fallback FallbackSettings

	// CachePath enables the on-disk embedding cache when non-empty.
	CachePath string
}

// IsConfigured returns true if a remote provider is usable.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Provider != "" && e.APIKey != ""
}

// FallbackSettings configures the local fallback embedding model.
type FallbackSettings struct {
	// Enabled turns the fallback on.
	Enabled bool

	// BaseURL is the local inference endpoint (default Ollama).
	BaseURL string

	// Model is the local model name.
	Model string

	// Dimensions is the local model's vector size. It must match the
	// primary model's size or the wiring is rejected.
	Dimensions int
}

// SplitterSettings holds document splitting configuration.
type SplitterSettings struct {
	// ChunkSize is the target fragment size in bytes.
	ChunkSize int

	// Overlap is the overlap budget between consecutive fragments.
	Overlap int

	// Separator delimits the units fragments are composed of.
	Separator string
}

// AppSettings aggregates all configuration sections.
type AppSettings struct {
	// Graph is the graph backend configuration.
	Graph GraphSettings

	// Embedding is the embedding provider configuration.
	Embedding EmbeddingSettings

	// Splitter is the document splitting configuration.
	Splitter SplitterSettings
}

// DefaultAppSettings returns settings with sensible defaults applied.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			BatchSize: 5,
		},
		Splitter: SplitterSettings{
			ChunkSize: 1000,
			Overlap:   200,
			Separator: "\n",
		},
	}
}
