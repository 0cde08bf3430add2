package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// CachedTodoRepository caches owner list results in Redis. Each owner has a
// version counter that is bumped on every write; list keys embed the version,
// so stale entries are never read and simply expire.
type CachedTodoRepository struct {
	next TodoRepository
	rdb  *redis.Client
	ttl  time.Duration
}

func NewCachedTodoRepository(next TodoRepository, rdb *redis.Client, ttl time.Duration) *CachedTodoRepository {
	return &CachedTodoRepository{next: next, rdb: rdb, ttl: ttl}
}

func todoVersionKey(ownerID string) string {
	return "todos:" + ownerID + ":v"
}

// todoListKey is stable for equal filters.
func todoListKey(ownerID string, version int64, f model.TodoFilter) string {
	key := fmt.Sprintf("todos:%s:%d:list", ownerID, version)
	if f.Title != nil {
		key += fmt.Sprintf(":title=%q", *f.Title)
	}
	if f.Status != nil {
		key += fmt.Sprintf(":status=%q", string(*f.Status))
	}
	if f.DueDate != nil {
		key += ":due=" + f.DueDate.UTC().Format(time.RFC3339Nano)
	}
	return key
}

func (r *CachedTodoRepository) version(ctx context.Context, ownerID string) (int64, error) {
	v, err := r.rdb.Get(ctx, todoVersionKey(ownerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (r *CachedTodoRepository) invalidate(ctx context.Context, ownerID string) {
	if err := r.rdb.Incr(ctx, todoVersionKey(ownerID)).Err(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", ownerID).Msg("Failed to invalidate todo cache")
	}
}

func (r *CachedTodoRepository) ListByOwner(ctx context.Context, ownerID string, filter model.TodoFilter) ([]model.Todo, error) {
	logger := zerolog.Ctx(ctx)

	version, err := r.version(ctx, ownerID)
	if err != nil {
		logger.Warn().Err(err).Msg("Todo cache unavailable, reading from store")
		return r.next.ListByOwner(ctx, ownerID, filter)
	}
	key := todoListKey(ownerID, version, filter)

	if cached, err := r.rdb.Get(ctx, key).Bytes(); err == nil {
		var todos []model.Todo
		if err := json.Unmarshal(cached, &todos); err == nil {
			return todos, nil
		}
		logger.Warn().Str("key", key).Msg("Discarding undecodable todo cache entry")
	} else if !errors.Is(err, redis.Nil) {
		logger.Warn().Err(err).Msg("Todo cache read failed, reading from store")
	}

	todos, err := r.next.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(todos); err == nil {
		if err := r.rdb.Set(ctx, key, payload, r.ttl).Err(); err != nil {
			logger.Warn().Err(err).Msg("Todo cache write failed")
		}
	}
	return todos, nil
}

func (r *CachedTodoRepository) FindByID(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	return r.next.FindByID(ctx, id, ownerID)
}

func (r *CachedTodoRepository) Create(ctx context.Context, todo *model.Todo) (string, error) {
	id, err := r.next.Create(ctx, todo)
	if err != nil {
		return "", err
	}
	r.invalidate(ctx, todo.OwnerID)
	return id, nil
}

func (r *CachedTodoRepository) Update(ctx context.Context, id, ownerID string, patch model.TodoPatch) (int64, error) {
	n, err := r.next.Update(ctx, id, ownerID, patch)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.invalidate(ctx, ownerID)
	}
	return n, nil
}

func (r *CachedTodoRepository) Delete(ctx context.Context, id, ownerID string) (int64, error) {
	n, err := r.next.Delete(ctx, id, ownerID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.invalidate(ctx, ownerID)
	}
	return n, nil
}

func (r *CachedTodoRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	n, err := r.next.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.invalidate(ctx, ownerID)
	}
	return n, nil
}
