package service

import (
	"context"
	"fmt"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/common"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/model"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/repository"
)

// TodoService applies the per-request todo policy. The owner id always comes
// from the authenticated caller; an empty one fails with common.ErrNeedToLogin
// before the store is touched.
type TodoService struct {
	todoRepo repository.TodoRepository
}

func NewTodoService(todoRepo repository.TodoRepository) *TodoService {
	return &TodoService{todoRepo: todoRepo}
}

type CreateTodoRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	DueDate     model.Date       `json:"dueDate"`
	Status      model.TodoStatus `json:"status"`
}

// List returns the caller's todos matching filter. An empty result is
// reported as common.ErrNotFound.
func (s *TodoService) List(ctx context.Context, ownerID string, filter model.TodoFilter) ([]model.Todo, error) {
	if ownerID == "" {
		return nil, common.ErrNeedToLogin
	}
	todos, err := s.todoRepo.ListByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	if len(todos) == 0 {
		return nil, common.ErrNotFound
	}
	return todos, nil
}

func (s *TodoService) Get(ctx context.Context, ownerID, id string) (*model.Todo, error) {
	if ownerID == "" {
		return nil, common.ErrNeedToLogin
	}
	return s.todoRepo.FindByID(ctx, id, ownerID)
}

// Create stores a todo owned by ownerID and returns its id. An empty status
// defaults to pending.
func (s *TodoService) Create(ctx context.Context, ownerID string, req CreateTodoRequest) (string, error) {
	if ownerID == "" {
		return "", common.ErrNeedToLogin
	}
	if req.Status == "" {
		req.Status = model.StatusPending
	}
	if !req.Status.Valid() {
		return "", fmt.Errorf("unknown status %q: %w", req.Status, common.ErrValidation)
	}

	todo := &model.Todo{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
		OwnerID:     ownerID,
	}
	id, err := s.todoRepo.Create(ctx, todo)
	if err != nil {
		return "", fmt.Errorf("failed to create todo: %w", err)
	}
	return id, nil
}

// Update confirms the todo exists and is owned by the caller, then applies
// patch. The modified count of the second step is not inspected, so a delete
// racing between the two steps still reports success.
func (s *TodoService) Update(ctx context.Context, ownerID, id string, patch model.TodoPatch) error {
	if ownerID == "" {
		return common.ErrNeedToLogin
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("unknown status %q: %w", *patch.Status, common.ErrValidation)
	}
	if _, err := s.todoRepo.FindByID(ctx, id, ownerID); err != nil {
		return err
	}
	if _, err := s.todoRepo.Update(ctx, id, ownerID, patch); err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return nil
}

func (s *TodoService) Delete(ctx context.Context, ownerID, id string) error {
	if ownerID == "" {
		return common.ErrNeedToLogin
	}
	n, err := s.todoRepo.Delete(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
