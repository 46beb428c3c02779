package sdk_test

import (
	"context"
	"testing"

	"github.com/celerix-dev/celerix-records/internal/engine"
	pkgengine "github.com/celerix-dev/celerix-records/pkg/engine"
	"github.com/celerix-dev/celerix-records/pkg/sdk"
)

func TestCollectionScope(t *testing.T) {
	ctx := context.Background()
	store := engine.NewMemStore(nil, nil)
	items := sdk.Collection(store, pkgengine.ItemCollection)

	if items.Name() != "item" {
		t.Errorf("Expected item, got %s", items.Name())
	}

	id := pkgengine.NewID()
	doc, _ := pkgengine.NewDocument(map[string]any{"email": "a@x.com"})
	if err := items.InsertOne(ctx, id, doc); err != nil {
		t.Fatalf("InsertOne failed: %v", err)
	}
	if err := items.UpdateOne(ctx, id, map[string]any{"quantity": 2}); err != nil {
		t.Fatalf("UpdateOne failed: %v", err)
	}

	// Documents stay within their collection
	users, _ := store.Find(ctx, pkgengine.ClockInCollection, nil)
	if len(users) != 0 {
		t.Errorf("Expected no clock-in records, got %d", len(users))
	}

	groups, err := items.CountBy(ctx, "email")
	if err != nil || len(groups) != 1 || groups[0].Count != 1 {
		t.Errorf("CountBy returned %v, %v", groups, err)
	}

	got, err := items.FindOne(ctx, id)
	if err != nil || got.Get("quantity").Int() != 2 {
		t.Errorf("FindOne returned %s, %v", got, err)
	}
	if _, err := items.DeleteOne(ctx, id); err != nil {
		t.Fatalf("DeleteOne failed: %v", err)
	}
	list, _ := items.Find(ctx, nil)
	if len(list) != 0 {
		t.Errorf("Expected empty collection, got %d", len(list))
	}
}
