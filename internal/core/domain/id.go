package domain

import "github.com/google/uuid"

// idNamespace is the UUID namespace for all derived Lattice identifiers.
// Deriving IDs from stable names makes every write an idempotent
// merge-by-id: concurrent writers racing to create the "same" entity
// converge to one record.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("lattice.custodia-labs.com"))

// DeriveID returns a deterministic identifier for the given kind and name.
// Calling it twice with the same inputs always yields the same ID.
func DeriveID(kind, name string) string {
	return uuid.NewSHA1(idNamespace, []byte(kind+":"+name)).String()
}

// NewID returns a random identifier for entities without a natural key,
// such as conversation messages.
func NewID() string {
	return uuid.New().String()
}
