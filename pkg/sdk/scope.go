package sdk

import (
	"context"

	"github.com/celerix-dev/celerix-records/pkg/engine"
	"github.com/google/uuid"
)

// Collection returns a scope that "pins" a collection name on top of a store.
func Collection(s DocumentStore, name string) *CollectionScope {
	return &CollectionScope{store: s, name: name}
}

// CollectionScope is a scoped store that remembers its collection.
type CollectionScope struct {
	store DocumentStore
	name  string
}

// Name returns the pinned collection name.
func (c *CollectionScope) Name() string { return c.name }

func (c *CollectionScope) Find(ctx context.Context, filter *engine.Filter) ([]engine.Document, error) {
	return c.store.Find(ctx, c.name, filter)
}

func (c *CollectionScope) FindOne(ctx context.Context, id uuid.UUID) (engine.Document, error) {
	return c.store.FindOne(ctx, c.name, id)
}

func (c *CollectionScope) InsertOne(ctx context.Context, id uuid.UUID, doc engine.Document) error {
	return c.store.InsertOne(ctx, c.name, id, doc)
}

func (c *CollectionScope) UpdateOne(ctx context.Context, id uuid.UUID, set map[string]any) error {
	return c.store.UpdateOne(ctx, c.name, id, set)
}

func (c *CollectionScope) DeleteOne(ctx context.Context, id uuid.UUID) (engine.Document, error) {
	return c.store.DeleteOne(ctx, c.name, id)
}

func (c *CollectionScope) CountBy(ctx context.Context, field string) ([]engine.Group, error) {
	return c.store.CountBy(ctx, c.name, field)
}
