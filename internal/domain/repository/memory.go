package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/common"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/model"

	"github.com/google/uuid"
)

// MemoryUserRepository keeps users in process memory. It backs memory://
// development runs and tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
	order []string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]model.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username {
			return "", fmt.Errorf("user %q: %w", user.Username, common.ErrDuplicateUsername)
		}
	}
	id := uuid.NewString()
	stored := *user
	stored.ID = id
	r.users[id] = stored
	r.order = append(r.order, id)
	user.ID = id
	return id, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryUserRepository) List(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, id := range r.order {
		if u, ok := r.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *MemoryUserRepository) UpdateUsername(_ context.Context, id, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	for otherID, other := range r.users {
		if otherID != id && other.Username == username {
			return nil, fmt.Errorf("user %q: %w", username, common.ErrDuplicateUsername)
		}
	}
	u.Username = username
	r.users[id] = u
	return &u, nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return 0, nil
	}
	delete(r.users, id)
	for i, ordered := range r.order {
		if ordered == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

// MemoryTodoRepository keeps todos in process memory.
type MemoryTodoRepository struct {
	mu    sync.RWMutex
	todos map[string]model.Todo
	seq   map[string]int
	next  int
}

func NewMemoryTodoRepository() *MemoryTodoRepository {
	return &MemoryTodoRepository{
		todos: make(map[string]model.Todo),
		seq:   make(map[string]int),
	}
}

func (r *MemoryTodoRepository) ListByOwner(_ context.Context, ownerID string, filter model.TodoFilter) ([]model.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	todos := []model.Todo{}
	for _, t := range r.todos {
		if t.OwnerID == ownerID && filter.Matches(t) {
			todos = append(todos, t)
		}
	}
	sort.Slice(todos, func(i, j int) bool { return r.seq[todos[i].ID] < r.seq[todos[j].ID] })
	return todos, nil
}

func (r *MemoryTodoRepository) FindByID(_ context.Context, id, ownerID string) (*model.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.todos[id]
	if !ok || t.OwnerID != ownerID {
		return nil, common.ErrNotFound
	}
	return &t, nil
}

func (r *MemoryTodoRepository) Create(_ context.Context, todo *model.Todo) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	stored := *todo
	stored.ID = id
	r.todos[id] = stored
	r.seq[id] = r.next
	r.next++
	todo.ID = id
	return id, nil
}

func (r *MemoryTodoRepository) Update(_ context.Context, id, ownerID string, patch model.TodoPatch) (int64, error) {
	if patch.IsEmpty() {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok || t.OwnerID != ownerID {
		return 0, nil
	}
	patch.Apply(&t)
	r.todos[id] = t
	return 1, nil
}

func (r *MemoryTodoRepository) Delete(_ context.Context, id, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.todos[id]
	if !ok || t.OwnerID != ownerID {
		return 0, nil
	}
	delete(r.todos, id)
	delete(r.seq, id)
	return 1, nil
}

func (r *MemoryTodoRepository) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.todos {
		if t.OwnerID == ownerID {
			delete(r.todos, id)
			delete(r.seq, id)
			n++
		}
	}
	return n, nil
}
