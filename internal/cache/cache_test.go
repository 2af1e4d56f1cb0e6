package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"arvyax/internal/cache"
	"arvyax/internal/domain"
)

// These tests need a live Redis; set ARVYAX_TEST_REDIS to run them.
func testStore(t *testing.T) *cache.Store {
	t.Helper()
	addr := os.Getenv("ARVYAX_TEST_REDIS")
	if addr == "" {
		t.Skip("ARVYAX_TEST_REDIS not set")
	}
	store, err := cache.New(addr, "", 0, time.Minute)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTaskListRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	userID := "cache-test-user"
	t.Cleanup(func() { store.Invalidate(ctx, userID) })

	got, err := store.GetTasks(ctx, userID)
	if err != nil || got != nil {
		t.Fatalf("expected miss, got %v, %v", got, err)
	}

	tasks := []domain.Task{{ID: "t1", UserID: userID, Title: "cached", Status: domain.TaskTodo, Priority: domain.PriorityLow}}
	if err := store.SetTasks(ctx, userID, tasks); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err = store.GetTasks(ctx, userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	if err := store.Invalidate(ctx, userID); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	got, err = store.GetTasks(ctx, userID)
	if err != nil || got != nil {
		t.Fatalf("expected miss after invalidate, got %v, %v", got, err)
	}
}
