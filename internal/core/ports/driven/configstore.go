package driven

import "github.com/custodia-labs/lattice/internal/core/domain"

// ConfigStore loads and persists application settings.
type ConfigStore interface {
	// Load reads settings, applying defaults for absent values.
	Load() (domain.AppSettings, error)

	// Save persists settings.
	Save(settings domain.AppSettings) error
}
