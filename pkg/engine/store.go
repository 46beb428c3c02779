// Package engine defines the core document types shared by every Celerix Records backend.
package engine

import "errors"

// Standard errors for the engine.
// Backends translate their driver-specific misses into these so callers can use errors.Is.
var (
	// ErrNotFound is returned when no document matches the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID is returned when an identifier string cannot be parsed.
	ErrInvalidID = errors.New("invalid record id")
	// ErrMissingID is returned when a stored document carries no identifier.
	ErrMissingID = errors.New("document has no id")
)

// IDField is the document key holding the record identifier.
const IDField = "_id"

// Collection names used by the records API.
const (
	ClockInCollection = "user"
	ItemCollection    = "item"
)
