package domain

import "time"

// SourceType categorises the provenance of documents.
type SourceType string

// Known source types. The set is open: unrecognised values round-trip
// through serialisation unchanged.
const (
	// SourceTypeFile marks documents ingested from the local filesystem.
	SourceTypeFile SourceType = "file"

	// SourceTypeWeb marks documents fetched from web pages.
	SourceTypeWeb SourceType = "web"

	// SourceTypeAPI marks documents produced by an external API.
	SourceTypeAPI SourceType = "api"

	// SourceTypeConversation marks documents derived from conversation turns.
	SourceTypeConversation SourceType = "conversation"
)

// String returns the string representation.
func (t SourceType) String() string {
	return string(t)
}

// Source identifies the provenance of one or more documents.
// A source is created once per distinct origin and never mutated after
// creation except for its metadata.
type Source struct {
	// ID is the unique identifier, derived from the base URI.
	ID string

	// Name is the human-readable name for this source.
	Name string

	// Type categorises the source ("file", "web", "api", ...).
	Type SourceType

	// BaseURI is the base locator (URI or path) of the origin.
	BaseURI string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the source was first recorded.
	CreatedAt time.Time

	// UpdatedAt is when the source was last updated.
	UpdatedAt time.Time
}

// NewSource creates a source with a deterministic identifier so that
// recording the same origin twice converges to one record.
func NewSource(name string, typ SourceType, baseURI string) *Source {
	now := time.Now().UTC()
	return &Source{
		ID:        DeriveID("source", baseURI),
		Name:      name,
		Type:      typ,
		BaseURI:   baseURI,
		Metadata:  make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
