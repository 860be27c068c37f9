// Package file provides the TOML file implementation of the config
// store port. Secrets can be supplied through the environment instead
// of the file.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/lattice/internal/core/domain"
	"github.com/custodia-labs/lattice/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ConfigStore = (*Store)(nil)

// Environment variables that override file values. Secrets belong
// here, not on disk.
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvNeo4jPassword = "NEO4J_PASSWORD"
)

// fileSettings is the on-disk TOML shape.
type fileSettings struct {
	Graph struct {
		URI      string `toml:"uri"`
		Username string `toml:"username"`
		Password string `toml:"password,omitempty"`
		Database string `toml:"database,omitempty"`
	} `toml:"graph"`

	Embedding struct {
		Provider          string  `toml:"provider"`
		APIKey            string  `toml:"api_key,omitempty"`
		Model             string  `toml:"model,omitempty"`
		BaseURL           string  `toml:"base_url,omitempty"`
		Dimensions        int     `toml:"dimensions,omitempty"`
		BatchSize         int     `toml:"batch_size,omitempty"`
		RequestsPerSecond float64 `toml:"requests_per_second,omitempty"`
		CachePath         string  `toml:"cache_path,omitempty"`

		Fallback struct {
			Enabled    bool   `toml:"enabled"`
			BaseURL    string `toml:"base_url,omitempty"`
			Model      string `toml:"model,omitempty"`
			Dimensions int    `toml:"dimensions,omitempty"`
		} `toml:"fallback"`
	} `toml:"embedding"`

	Splitter struct {
		ChunkSize int    `toml:"chunk_size,omitempty"`
		Overlap   int    `toml:"overlap,omitempty"`
		Separator string `toml:"separator,omitempty"`
	} `toml:"splitter"`
}

// Store reads and writes settings as a TOML file.
type Store struct {
	path string
}

// New creates a store for the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the conventional settings location under the
// user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, "lattice", "config.toml"), nil
}

// Load reads settings from the file, applying defaults for absent
// values and environment overrides for secrets. A missing file yields
// defaults, not an error.
func (s *Store) Load() (domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()

	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return settings, fmt.Errorf("read config %s: %w", s.path, err)
	}

	if err == nil {
		var fc fileSettings
		if err := toml.Unmarshal(data, &fc); err != nil {
			return settings, fmt.Errorf("parse config %s: %w", s.path, err)
		}
		applyFile(&settings, fc)
	}

	if key := os.Getenv(EnvOpenAIKey); key != "" {
		settings.Embedding.APIKey = key
	}
	if password := os.Getenv(EnvNeo4jPassword); password != "" {
		settings.Graph.Password = password
	}

	return settings, nil
}

// Save persists settings, creating parent directories as needed. API
// keys and passwords sourced from the environment are not written.
func (s *Store) Save(settings domain.AppSettings) error {
	fc := toFile(settings)
	if os.Getenv(EnvOpenAIKey) != "" {
		fc.Embedding.APIKey = ""
	}
	if os.Getenv(EnvNeo4jPassword) != "" {
		fc.Graph.Password = ""
	}

	data, err := toml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", s.path, err)
	}
	return nil
}

func applyFile(settings *domain.AppSettings, fc fileSettings) {
	if fc.Graph.URI != "" {
		settings.Graph.URI = fc.Graph.URI
	}
	if fc.Graph.Username != "" {
		settings.Graph.Username = fc.Graph.Username
	}
	if fc.Graph.Password != "" {
		settings.Graph.Password = fc.Graph.Password
	}
	if fc.Graph.Database != "" {
		settings.Graph.Database = fc.Graph.Database
	}

	if fc.Embedding.Provider != "" {
		settings.Embedding.Provider = fc.Embedding.Provider
	}
	if fc.Embedding.APIKey != "" {
		settings.Embedding.APIKey = fc.Embedding.APIKey
	}
	if fc.Embedding.Model != "" {
		settings.Embedding.Model = fc.Embedding.Model
	}
	if fc.Embedding.BaseURL != "" {
		settings.Embedding.BaseURL = fc.Embedding.BaseURL
	}
	if fc.Embedding.Dimensions > 0 {
		settings.Embedding.Dimensions = fc.Embedding.Dimensions
	}
	if fc.Embedding.BatchSize > 0 {
		settings.Embedding.BatchSize = fc.Embedding.BatchSize
	}
	if fc.Embedding.RequestsPerSecond > 0 {
		settings.Embedding.RequestsPerSecond = fc.Embedding.RequestsPerSecond
	}
	if fc.Embedding.CachePath != "" {
		settings.Embedding.CachePath = fc.Embedding.CachePath
	}
	settings.Embedding.Fallback.Enabled = fc.Embedding.Fallback.Enabled
	if fc.Embedding.Fallback.BaseURL != "" {
		settings.Embedding.Fallback.BaseURL = fc.Embedding.Fallback.BaseURL
	}
	if fc.Embedding.Fallback.Model != "" {
		settings.Embedding.Fallback.Model = fc.Embedding.Fallback.Model
	}
	if fc.Embedding.Fallback.Dimensions > 0 {
		settings.Embedding.Fallback.Dimensions = fc.Embedding.Fallback.Dimensions
	}

	if fc.Splitter.ChunkSize > 0 {
		settings.Splitter.ChunkSize = fc.Splitter.ChunkSize
	}
	if fc.Splitter.Overlap > 0 {
		settings.Splitter.Overlap = fc.Splitter.Overlap
	}
	if fc.Splitter.Separator != "" {
		settings.Splitter.Separator = fc.Splitter.Separator
	}
}

func toFile(settings domain.AppSettings) fileSettings {
	var fc fileSettings
	fc.Graph.URI = settings.Graph.URI
	fc.Graph.Username = settings.Graph.Username
	fc.Graph.Password = settings.Graph.Password
	fc.Graph.Database = settings.Graph.Database

	fc.Embedding.Provider = settings.Embedding.Provider
	fc.Embedding.APIKey = settings.Embedding.APIKey
	fc.Embedding.Model = settings.Embedding.Model
	fc.Embedding.BaseURL = settings.Embedding.BaseURL
	fc.Embedding.Dimensions = settings.Embedding.Dimensions
	fc.Embedding.BatchSize = settings.Embedding.BatchSize
	fc.Embedding.RequestsPerSecond = settings.Embedding.RequestsPerSecond
	fc.Embedding.CachePath = settings.Embedding.CachePath
	fc.Embedding.Fallback.Enabled = settings.Embedding.Fallback.Enabled
	fc.Embedding.Fallback.BaseURL = settings.Embedding.Fallback.BaseURL
	fc.Embedding.Fallback.Model = settings.Embedding.Fallback.Model
	fc.Embedding.Fallback.Dimensions = settings.Embedding.Fallback.Dimensions

	fc.Splitter.ChunkSize = settings.Splitter.ChunkSize
	fc.Splitter.Overlap = settings.Splitter.Overlap
	fc.Splitter.Separator = settings.Splitter.Separator
	return fc
}
