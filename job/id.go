package job

import "github.com/google/uuid"

// ID is an opaque, globally unique job identifier.
//
// ID is lexicographically comparable but its internal structure (a UUID)
// is not part of the contract; callers must not parse or derive meaning
// from it beyond equality and ordering.
type ID string

// NewID generates a new random ID.
func NewID() ID {
	return ID(uuid.New().String())
}

// String returns the textual form of the ID.
func (id ID) String() string {
	return string(id)
}
