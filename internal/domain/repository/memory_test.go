package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/common"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/model"
)

func TestMemoryUserRepositoryUniqueUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	id, err := repo.Create(ctx, &model.User{Username: "a@x.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, &model.User{Username: "a@x.com", PasswordHash: "h"}); !errors.Is(err, common.ErrDuplicateUsername) {
		t.Fatalf("second Create error = %v, want ErrDuplicateUsername", err)
	}

	other, err := repo.Create(ctx, &model.User{Username: "b@x.com", PasswordHash: "h"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.UpdateUsername(ctx, other, "a@x.com"); !errors.Is(err, common.ErrDuplicateUsername) {
		t.Fatalf("UpdateUsername error = %v, want ErrDuplicateUsername", err)
	}

	u, err := repo.UpdateUsername(ctx, id, "c@x.com")
	if err != nil {
		t.Fatalf("UpdateUsername: %v", err)
	}
	if u.Username != "c@x.com" {
		t.Fatalf("Username = %q, want %q", u.Username, "c@x.com")
	}
}

func TestMemoryUserRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	if _, err := repo.FindByID(ctx, "missing"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("FindByID error = %v, want ErrNotFound", err)
	}
	if _, err := repo.FindByUsername(ctx, "missing"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("FindByUsername error = %v, want ErrNotFound", err)
	}
	if _, err := repo.UpdateUsername(ctx, "missing", "x"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("UpdateUsername error = %v, want ErrNotFound", err)
	}
	if n, err := repo.Delete(ctx, "missing"); err != nil || n != 0 {
		t.Fatalf("Delete = %d, %v; want 0, nil", n, err)
	}
}

func TestMemoryUserRepositoryListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	first, _ := repo.Create(ctx, &model.User{Username: "first"})
	repo.Create(ctx, &model.User{Username: "second"})

	if n, err := repo.Delete(ctx, first); err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v; want 1, nil", n, err)
	}
	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 || users[0].Username != "second" {
		t.Fatalf("List = %+v, want only second", users)
	}
	if len(repo.order) != 1 {
		t.Fatalf("order holds %d ids after delete, want 1", len(repo.order))
	}
}

func TestMemoryTodoRepositoryOwnerScoping(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTodoRepository()

	id, err := repo.Create(ctx, &model.Todo{Title: "a's todo", Status: model.StatusPending, OwnerID: "alice"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := repo.FindByID(ctx, id, "bob"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("FindByID as other owner error = %v, want ErrNotFound", err)
	}
	todos, err := repo.ListByOwner(ctx, "bob", model.TodoFilter{})
	if err != nil || len(todos) != 0 {
		t.Fatalf("ListByOwner(bob) = %v, %v; want empty", todos, err)
	}
	if n, _ := repo.Update(ctx, id, "bob", model.TodoPatch{Title: ptr("stolen")}); n != 0 {
		t.Fatalf("Update as other owner modified %d records", n)
	}
	if n, _ := repo.Delete(ctx, id, "bob"); n != 0 {
		t.Fatalf("Delete as other owner removed %d records", n)
	}

	got, err := repo.FindByID(ctx, id, "alice")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Title != "a's todo" {
		t.Fatalf("Title = %q, want unchanged", got.Title)
	}
}

func TestMemoryTodoRepositoryFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTodoRepository()

	repo.Create(ctx, &model.Todo{Title: "one", Status: model.StatusPending, OwnerID: "alice"})
	repo.Create(ctx, &model.Todo{Title: "two", Status: model.StatusCompleted, OwnerID: "alice"})
	repo.Create(ctx, &model.Todo{Title: "three", Status: model.StatusPending, OwnerID: "alice"})

	all, err := repo.ListByOwner(ctx, "alice", model.TodoFilter{})
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(all) != 3 || all[0].Title != "one" || all[2].Title != "three" {
		t.Fatalf("ListByOwner = %+v, want insertion order", all)
	}

	pending, err := repo.ListByOwner(ctx, "alice", model.TodoFilter{Status: ptr(model.StatusPending)})
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d todos, want 2", len(pending))
	}

	both, err := repo.ListByOwner(ctx, "alice", model.TodoFilter{Title: ptr("two"), Status: ptr(model.StatusPending)})
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(both) != 0 {
		t.Fatalf("AND filter returned %+v, want none", both)
	}
}

func TestMemoryTodoRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTodoRepository()

	id, _ := repo.Create(ctx, &model.Todo{Title: "t", Description: "d", Status: model.StatusPending, OwnerID: "alice"})

	if n, err := repo.Update(ctx, id, "alice", model.TodoPatch{}); err != nil || n != 0 {
		t.Fatalf("empty Update = %d, %v; want 0, nil", n, err)
	}
	n, err := repo.Update(ctx, id, "alice", model.TodoPatch{Status: ptr(model.StatusCompleted)})
	if err != nil || n != 1 {
		t.Fatalf("Update = %d, %v; want 1, nil", n, err)
	}
	got, _ := repo.FindByID(ctx, id, "alice")
	if got.Status != model.StatusCompleted || got.Description != "d" || got.OwnerID != "alice" {
		t.Fatalf("after Update = %+v", got)
	}
}

func TestMemoryTodoRepositoryDeleteByOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTodoRepository()

	repo.Create(ctx, &model.Todo{Title: "a1", Status: model.StatusPending, OwnerID: "alice"})
	repo.Create(ctx, &model.Todo{Title: "a2", Status: model.StatusPending, OwnerID: "alice"})
	repo.Create(ctx, &model.Todo{Title: "b1", Status: model.StatusPending, OwnerID: "bob"})

	if n, err := repo.DeleteByOwner(ctx, "alice"); err != nil || n != 2 {
		t.Fatalf("DeleteByOwner = %d, %v; want 2, nil", n, err)
	}
	if left, _ := repo.ListByOwner(ctx, "bob", model.TodoFilter{}); len(left) != 1 {
		t.Fatalf("bob has %d todos, want 1", len(left))
	}
}
