package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/celerix-dev/celerix-records/pkg/engine"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(client)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStore_Contract(t *testing.T) {
	s, _ := newTestRedisStore(t)
	exerciseStore(t, s)
}

func TestRedisStore_Layout(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	id := engine.NewID()
	if err := s.InsertOne(ctx, "user", id, newDoc(t, map[string]any{"email": "a@x.com"})); err != nil {
		t.Fatalf("InsertOne failed: %v", err)
	}

	if !mr.Exists("records:user:" + id.String()) {
		t.Error("Expected document key to exist")
	}
	members, err := mr.Members("records:user")
	if err != nil || len(members) != 1 || members[0] != id.String() {
		t.Errorf("Unexpected index members %v (%v)", members, err)
	}
}

func TestRedisStore_StaleIndexEntry(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	id := engine.NewID()
	s.InsertOne(ctx, "user", id, newDoc(t, map[string]any{"email": "a@x.com"}))
	mr.Del("records:user:" + id.String())

	docs, err := s.Find(ctx, "user", nil)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("Expected stale entry to be skipped, got %d docs", len(docs))
	}
	if _, err := s.FindOne(ctx, "user", id); !errors.Is(err, engine.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMigrate_MemToRedis(t *testing.T) {
	ctx := context.Background()
	src := NewMemStore(nil, nil)
	dst, _ := newTestRedisStore(t)

	id := engine.NewID()
	src.InsertOne(ctx, engine.ItemCollection, id, newDoc(t, map[string]any{"name": "milk"}))

	if _, err := Migrate(ctx, src, dst, engine.ItemCollection); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	doc, err := dst.FindOne(ctx, engine.ItemCollection, id)
	if err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if doc.Get("name").String() != "milk" {
		t.Errorf("Expected milk, got %s", doc)
	}
}
