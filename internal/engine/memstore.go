package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/celerix-dev/celerix-records/pkg/engine"
)

// MemStore is the embedded, thread-safe document engine.
// Every write is mirrored to disk in the background when a Persistence is attached.
type MemStore struct {
	mu sync.RWMutex
	// Structure: [collection][id]document
	data      map[string]map[uuid.UUID]engine.Document
	persister *Persistence
	seq       uint64
	wg        sync.WaitGroup
}

// NewMemStore initializes a store.
// It accepts existing data (from LoadAll) and a persister; both may be nil.
func NewMemStore(initialData map[string]map[uuid.UUID]engine.Document, p *Persistence) *MemStore {
	if initialData == nil {
		initialData = make(map[string]map[uuid.UUID]engine.Document)
	}
	return &MemStore{
		data:      initialData,
		persister: p,
	}
}

// Wait waits for all background persistence tasks to complete.
func (m *MemStore) Wait() {
	m.wg.Wait()
}

// --- Interface Implementation ---

func (m *MemStore) Find(_ context.Context, collection string, filter *engine.Filter) ([]engine.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]engine.Document, 0, len(m.data[collection]))
	for _, doc := range m.data[collection] {
		if filter.Match(doc) {
			out = append(out, doc.Clone())
		}
	}
	engine.SortByID(out)
	return out, nil
}

func (m *MemStore) FindOne(_ context.Context, collection string, id uuid.UUID) (engine.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.data[collection][id]
	if !ok {
		return nil, engine.ErrNotFound
	}
	return doc.Clone(), nil
}

func (m *MemStore) InsertOne(_ context.Context, collection string, id uuid.UUID, doc engine.Document) error {
	if !doc.Valid() {
		return fmt.Errorf("insert into %s: document is not a JSON object", collection)
	}
	stamped, err := doc.WithID(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[collection] == nil {
		m.data[collection] = make(map[uuid.UUID]engine.Document)
	}
	m.data[collection][id] = stamped
	m.persistLocked(collection)
	return nil
}

func (m *MemStore) UpdateOne(_ context.Context, collection string, id uuid.UUID, set map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.data[collection][id]
	if !ok {
		return engine.ErrNotFound
	}
	merged, err := existing.Merge(set)
	if err != nil {
		return err
	}
	m.data[collection][id] = merged
	m.persistLocked(collection)
	return nil
}

func (m *MemStore) DeleteOne(_ context.Context, collection string, id uuid.UUID) (engine.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.data[collection][id]
	if !ok {
		return nil, engine.ErrNotFound
	}
	delete(m.data[collection], id)
	m.persistLocked(collection)
	return existing, nil
}

func (m *MemStore) CountBy(ctx context.Context, collection, field string) ([]engine.Group, error) {
	docs, err := m.Find(ctx, collection, nil)
	if err != nil {
		return nil, err
	}
	return engine.GroupBy(docs, field), nil
}

func (m *MemStore) Ping(context.Context) error { return nil }

// Close waits for pending disk writes.
func (m *MemStore) Close() error {
	m.Wait()
	return nil
}

// persistLocked snapshots a collection and saves it in the background.
// It MUST be called while holding m.mu.Lock.
func (m *MemStore) persistLocked(collection string) {
	if m.persister == nil {
		return
	}
	m.seq++
	seq := m.seq
	snapshot := m.copyCollection(collection)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.persister.SaveCollection(collection, seq, snapshot); err != nil {
			log.Error().Err(err).Str("collection", collection).Msg("persist collection")
		}
	}()
}

// copyCollection creates a copy of a collection's index.
// Documents are never mutated in place, so sharing them is safe.
// It MUST be called while holding m.mu.Lock or m.mu.RLock.
func (m *MemStore) copyCollection(collection string) map[uuid.UUID]engine.Document {
	original := m.data[collection]
	out := make(map[uuid.UUID]engine.Document, len(original))
	for id, doc := range original {
		out[id] = doc
	}
	return out
}
