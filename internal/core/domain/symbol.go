package domain

import "time"

// Symbol is an auxiliary node for a named code construct found in a
// document (function, type, class). Symbols link back to the document
// that defines them.
type Symbol struct {
	// ID is the unique identifier, derived from the document path and
	// symbol name.
	ID string

	// DocumentID links to the defining Document.
	DocumentID string

	// Name is the symbol name.
	Name string

	// Kind is the construct kind ("func", "type", "class", ...).
	Kind string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the symbol was first extracted.
	CreatedAt time.Time

	// UpdatedAt is when the symbol was last updated.
	UpdatedAt time.Time
}

// NewSymbol creates a symbol defined in a document.
func NewSymbol(doc *Document, name, kind string) *Symbol {
	now := time.Now().UTC()
	return &Symbol{
		ID:         DeriveID("symbol", doc.Path+"/"+kind+"/"+name),
		DocumentID: doc.ID,
		Name:       name,
		Kind:       kind,
		Metadata:   make(map[string]any),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
