package sdk_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/celerix-records/internal/api"
	"github.com/celerix-dev/celerix-records/internal/engine"
	"github.com/celerix-dev/celerix-records/pkg/sdk"
)

func newTestClient(t *testing.T, strict bool) *sdk.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := engine.NewMemStore(nil, nil)
	srv := httptest.NewServer(api.NewEngine(&api.Handler{Store: store, StrictCreate: strict}))
	t.Cleanup(srv.Close)

	client, err := sdk.Connect(srv.URL)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	return client
}

func TestClient_ClockIns(t *testing.T) {
	for _, strict := range []bool{false, true} {
		client := newTestClient(t, strict)
		ctx := context.Background()

		rec, err := client.CreateClockIn(ctx, "a@x.com", "NYC")
		if err != nil {
			t.Fatalf("CreateClockIn (strict=%v) failed: %v", strict, err)
		}
		if rec.ID == "" || rec.Email != "a@x.com" || rec.Location != "NYC" {
			t.Errorf("Unexpected record %+v", rec)
		}

		got, err := client.GetClockIn(ctx, rec.ID)
		if err != nil || got != rec {
			t.Errorf("GetClockIn returned %+v, %v", got, err)
		}

		at := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		updated, err := client.UpdateClockIn(ctx, rec.ID, rec.Email, rec.Location, at)
		if err != nil {
			t.Fatalf("UpdateClockIn failed: %v", err)
		}
		if updated.ClockIn != "2030-01-01T00:00:00Z" {
			t.Errorf("Expected new clock_in, got %s", updated.ClockIn)
		}

		list, err := client.FilterClockIns(ctx, sdk.ClockInQuery{Email: "a@x.com", Since: at})
		if err != nil || len(list) != 1 {
			t.Errorf("FilterClockIns returned %v, %v", list, err)
		}

		if _, err := client.DeleteClockIn(ctx, rec.ID); err != nil {
			t.Fatalf("DeleteClockIn failed: %v", err)
		}
		if _, err := client.GetClockIn(ctx, rec.ID); !errors.Is(err, sdk.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}

		all, err := client.ListClockIns(ctx)
		if err != nil || len(all) != 0 {
			t.Errorf("Expected no records, got %v, %v", all, err)
		}
	}
}

func TestClient_Items(t *testing.T) {
	client := newTestClient(t, false)
	ctx := context.Background()

	item, err := client.CreateItem(ctx, sdk.NewItem{
		Email: "a@x.com", Name: "groceries", ItemName: "milk", ExpiryDate: "2025-01-01", Quantity: 4,
	})
	if err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}
	client.CreateItem(ctx, sdk.NewItem{Email: "b@x.com", Name: "n", ItemName: "i", ExpiryDate: "2025-01-01", Quantity: 1})

	five := 5
	qty := 9
	updated, err := client.UpdateItemDetails(ctx, item.ID, sdk.ItemChanges{Quantity: &qty})
	if err != nil {
		t.Fatalf("UpdateItemDetails failed: %v", err)
	}
	if updated.Quantity != float64(9) || updated.Name != "groceries" {
		t.Errorf("Unexpected item %+v", updated)
	}

	list, err := client.FilterItems(ctx, sdk.ItemQuery{MinQuantity: &five})
	if err != nil || len(list) != 1 || list[0].ID != item.ID {
		t.Errorf("FilterItems returned %v, %v", list, err)
	}

	counts, err := client.CountItemsByEmail(ctx)
	if err != nil || len(counts) != 2 || counts[0].Email != "a@x.com" {
		t.Errorf("CountItemsByEmail returned %v, %v", counts, err)
	}

	all, _ := client.ListItems(ctx)
	if len(all) != 2 {
		t.Errorf("Expected 2 items, got %d", len(all))
	}

	if _, err := client.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if _, err := client.DeleteItem(ctx, item.ID); !errors.Is(err, sdk.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestClient_BadRequest(t *testing.T) {
	client := newTestClient(t, false)

	_, err := client.GetItem(context.Background(), "not-an-id")
	var apiErr *sdk.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Errorf("Expected 400 APIError, got %v", err)
	}
}

func TestClient_Retry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, _ := sdk.Connect(srv.URL)
	list, err := client.ListItems(context.Background())
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(list) != 0 || calls.Load() != 3 {
		t.Errorf("Expected success on third attempt, got %d calls", calls.Load())
	}
}

func TestClient_NoRetryOnCreate(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, _ := sdk.Connect(srv.URL)
	if _, err := client.CreateClockIn(context.Background(), "a@x.com", "NYC"); err == nil {
		t.Error("Expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("Expected a single attempt, got %d", calls.Load())
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	if _, err := sdk.Connect("tcp://localhost:7001"); err == nil {
		t.Error("Expected error for non-http scheme")
	}
}
