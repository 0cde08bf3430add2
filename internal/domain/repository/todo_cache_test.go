package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// newTestRedis connects to TEST_REDIS_ADDR when set and to an in-process
// miniredis otherwise.
func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = miniredis.RunT(t).Addr()
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func newCachedStore(t *testing.T) (*CachedTodoRepository, *MemoryTodoRepository, string) {
	t.Helper()
	store := NewMemoryTodoRepository()
	return NewCachedTodoRepository(store, newTestRedis(t), time.Minute), store, "cache-" + uuid.NewString()
}

func listLen(t *testing.T, r TodoRepository, owner string) int {
	t.Helper()
	todos, err := r.ListByOwner(context.Background(), owner, model.TodoFilter{})
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	return len(todos)
}

func TestCachedTodoRepositoryServesCachedList(t *testing.T) {
	ctx := context.Background()
	cached, store, owner := newCachedStore(t)

	if _, err := cached.Create(ctx, &model.Todo{Title: "one", Status: model.StatusPending, OwnerID: owner}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n := listLen(t, cached, owner); n != 1 {
		t.Fatalf("ListByOwner = %d todos, want 1", n)
	}

	// Writes that bypass the decorator stay invisible until the next invalidation.
	store.Create(ctx, &model.Todo{Title: "hidden", Status: model.StatusPending, OwnerID: owner})
	if n := listLen(t, cached, owner); n != 1 {
		t.Fatalf("cached ListByOwner = %d todos, want 1", n)
	}

	if _, err := cached.Create(ctx, &model.Todo{Title: "two", Status: model.StatusPending, OwnerID: owner}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if n := listLen(t, cached, owner); n != 3 {
		t.Fatalf("after Create got %d todos, want 3", n)
	}
}

func TestCachedTodoRepositoryWritesInvalidate(t *testing.T) {
	ctx := context.Background()
	cached, _, owner := newCachedStore(t)

	id, _ := cached.Create(ctx, &model.Todo{Title: "one", Status: model.StatusPending, OwnerID: owner})
	cached.Create(ctx, &model.Todo{Title: "two", Status: model.StatusPending, OwnerID: owner})

	completed := model.StatusCompleted
	filter := model.TodoFilter{Status: &completed}
	if done, _ := cached.ListByOwner(ctx, owner, filter); len(done) != 0 {
		t.Fatalf("completed = %d todos, want 0", len(done))
	}
	if n, err := cached.Update(ctx, id, owner, model.TodoPatch{Status: &completed}); err != nil || n != 1 {
		t.Fatalf("Update = %d, %v", n, err)
	}
	if done, _ := cached.ListByOwner(ctx, owner, filter); len(done) != 1 {
		t.Fatalf("after Update completed = %d todos, want 1", len(done))
	}

	if n, err := cached.Delete(ctx, id, owner); err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	if n := listLen(t, cached, owner); n != 1 {
		t.Fatalf("after Delete got %d todos, want 1", n)
	}

	if n, err := cached.DeleteByOwner(ctx, owner); err != nil || n != 1 {
		t.Fatalf("DeleteByOwner = %d, %v", n, err)
	}
	if n := listLen(t, cached, owner); n != 0 {
		t.Fatalf("after DeleteByOwner got %d todos, want 0", n)
	}
}

func TestCachedTodoRepositoryOwnersAreIsolated(t *testing.T) {
	ctx := context.Background()
	cached, _, owner := newCachedStore(t)
	other := owner + "-other"

	cached.Create(ctx, &model.Todo{Title: "mine", Status: model.StatusPending, OwnerID: owner})
	if n := listLen(t, cached, other); n != 0 {
		t.Fatalf("other owner sees %d todos", n)
	}
	cached.Create(ctx, &model.Todo{Title: "theirs", Status: model.StatusPending, OwnerID: other})
	if n := listLen(t, cached, other); n != 1 {
		t.Fatalf("other owner sees %d todos after own Create, want 1", n)
	}
	if n := listLen(t, cached, owner); n != 1 {
		t.Fatalf("owner sees %d todos, want 1", n)
	}
}

func TestCachedTodoRepositoryFallsThroughWhenRedisIsDown(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { rdb.Close() })

	store := NewMemoryTodoRepository()
	cached := NewCachedTodoRepository(store, rdb, time.Minute)
	mr.Close()

	if _, err := cached.Create(ctx, &model.Todo{Title: "one", Status: model.StatusPending, OwnerID: "alice"}); err != nil {
		t.Fatalf("Create with Redis down: %v", err)
	}
	if n := listLen(t, cached, "alice"); n != 1 {
		t.Fatalf("ListByOwner with Redis down = %d todos, want 1", n)
	}
}
