package sdk

import (
	"context"

	"github.com/celerix-dev/celerix-records/pkg/engine"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = engine.ErrNotFound
	// ErrInvalidID is returned when a record id is malformed.
	ErrInvalidID = engine.ErrInvalidID
)

// --- Functional Interfaces (Interface Segregation) ---

// DocReader defines the read operations for a document store.
type DocReader interface {
	// Find returns every document in the collection matching filter, ordered by id.
	Find(ctx context.Context, collection string, filter *engine.Filter) ([]engine.Document, error)
	// FindOne returns the document with the given id or engine.ErrNotFound.
	FindOne(ctx context.Context, collection string, id uuid.UUID) (engine.Document, error)
}

// DocWriter defines the write and delete operations for a document store.
type DocWriter interface {
	// InsertOne stores doc under id. The stored copy carries the id in its _id field.
	InsertOne(ctx context.Context, collection string, id uuid.UUID, doc engine.Document) error
	// UpdateOne overwrites the given fields of an existing document, leaving the others untouched.
	UpdateOne(ctx context.Context, collection string, id uuid.UUID, set map[string]any) error
	// DeleteOne removes a document and returns what was stored.
	DeleteOne(ctx context.Context, collection string, id uuid.UUID) (engine.Document, error)
}

// Aggregator groups documents.
type Aggregator interface {
	CountBy(ctx context.Context, collection, field string) ([]engine.Group, error)
}

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// --- Composite Interfaces ---

// DocumentStore is the persistence client used by the records API.
// The embedded, Redis and Postgres backends all implement it.
type DocumentStore interface {
	DocReader
	DocWriter
	Aggregator
	Pinger

	// Close flushes pending writes and releases the backend.
	Close() error
}
