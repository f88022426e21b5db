// Package identity allocates the opaque identifiers that name values in a graph.
package identity

import "strconv"

// ID names one produced value in a graph. The zero ID is never allocated and
// marks "no value".
type ID uint64

// Invalid is the zero ID.
const Invalid ID = 0

// Valid reports whether id was produced by an allocator.
func (id ID) Valid() bool {
	return id != Invalid
}

// String renders the ID as %N.
func (id ID) String() string {
	return "%" + strconv.FormatUint(uint64(id), 10)
}
