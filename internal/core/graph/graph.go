// Package graph is the entity model for the property-graph store.
//
// Every node type knows its label, how to flatten itself into primitive
// properties and back, and how to build the parameterised merge and
// link queries that persist it. Query construction is pure: executing
// the returned query/parameter pairs is the graph client's job, which
// keeps this package testable without a live database and lets the
// client layer change backends without touching entity logic.
package graph

import (
	"fmt"

	"github.com/custodia-labs/lattice/internal/core/domain"
)

// Node labels.
const (
	LabelSource       = "Source"
	LabelDocument     = "Document"
	LabelChunk        = "Chunk"
	LabelVectorStore  = "VectorStore"
	LabelVector       = "Vector"
	LabelUser         = "User"
	LabelConversation = "Conversation"
	LabelMessage      = "Message"
	LabelSymbol       = "Symbol"
)

// Relationship types. All edges are directed and created by
// match-or-merge: creating the same relationship twice never produces
// a duplicate edge.
const (
	// RelBelongsTo links a chunk to its document, a message to its
	// conversation, and a conversation to its user.
	RelBelongsTo = "BELONGS_TO"

	// RelFollows orders one document after another.
	RelFollows = "FOLLOWS"

	// RelSourcedFrom links a document to the source that produced it.
	RelSourcedFrom = "SOURCED_FROM"

	// RelStoredIn links a vector to its owning vector store.
	RelStoredIn = "STORED_IN"

	// RelEmbeds links a vector to the chunk it embeds.
	RelEmbeds = "EMBEDS"

	// RelReferences links a document to an external source it mentions.
	RelReferences = "REFERENCES"

	// RelDefines links a document to a symbol it defines.
	RelDefines = "DEFINES"
)

// knownRelationships is the closed set of edge types. Relationship
// names are interpolated into query text, so they are validated here
// rather than parameterised.
var knownRelationships = map[string]bool{
	RelBelongsTo:   true,
	RelFollows:     true,
	RelSourcedFrom: true,
	RelStoredIn:    true,
	RelEmbeds:      true,
	RelReferences:  true,
	RelDefines:     true,
}

// Query is a parameterised graph query ready for execution.
type Query struct {
	// Text is the Cypher query text.
	Text string

	// Params are the named parameters referenced by Text.
	Params map[string]any
}

// Node is implemented by every entity wrapper in this package.
type Node interface {
	// Label returns the node label.
	Label() string

	// NodeID returns the stable identifier merged on.
	NodeID() string

	// Props flattens the entity into primitive properties. Timestamps
	// become RFC3339 strings, enums become strings, and metadata is
	// JSON-encoded. The id is not included; merging keys on it.
	Props() (map[string]any, error)
}

// MergeQuery builds the idempotent upsert for a node: create it if
// absent, update its properties in place if present, keyed by id.
// created_at is only written on first creation so re-merging preserves
// the original timestamp.
func MergeQuery(n Node) (Query, error) {
	props, err := n.Props()
	if err != nil {
		return Query{}, fmt.Errorf("props for %s %s: %w", n.Label(), n.NodeID(), err)
	}

	createdAt := props[propCreatedAt]
	delete(props, propCreatedAt)

	text := fmt.Sprintf(
		"MERGE (n:%s {id: $id}) ON CREATE SET n.created_at = $created_at SET n += $props RETURN n.id AS id",
		n.Label(),
	)
	return Query{
		Text: text,
		Params: map[string]any{
			"id":         n.NodeID(),
			"created_at": createdAt,
			"props":      props,
		},
	}, nil
}

// LinkQuery builds the idempotent edge upsert between two nodes
// matched by id. Unknown relationship types are rejected.
func LinkQuery(fromLabel, fromID, rel, toLabel, toID string) (Query, error) {
	if !knownRelationships[rel] {
		return Query{}, fmt.Errorf("%w: %q", domain.ErrUnknownRelationship, rel)
	}

	text := fmt.Sprintf(
		"MATCH (a:%s {id: $from_id}) MATCH (b:%s {id: $to_id}) MERGE (a)-[:%s]->(b)",
		fromLabel, toLabel, rel,
	)
	return Query{
		Text: text,
		Params: map[string]any{
			"from_id": fromID,
			"to_id":   toID,
		},
	}, nil
}

// Link builds the edge upsert from one node to another.
func Link(from Node, rel string, to Node) (Query, error) {
	return LinkQuery(from.Label(), from.NodeID(), rel, to.Label(), to.NodeID())
}
