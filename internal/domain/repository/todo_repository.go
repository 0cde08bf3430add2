package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/common"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TodoRepository is the owner-scoped todo store. Every method takes the
// caller's owner id and never touches another owner's records; a record owned
// by someone else is reported exactly like a missing one.
type TodoRepository interface {
	ListByOwner(ctx context.Context, ownerID string, filter model.TodoFilter) ([]model.Todo, error)
	FindByID(ctx context.Context, id, ownerID string) (*model.Todo, error)
	Create(ctx context.Context, todo *model.Todo) (string, error)
	// Update returns the number of modified records. An empty patch modifies nothing.
	Update(ctx context.Context, id, ownerID string, patch model.TodoPatch) (int64, error)
	Delete(ctx context.Context, id, ownerID string) (int64, error)
	// DeleteByOwner removes every todo of ownerID and returns how many went.
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

type pgTodoRepository struct {
	db    *sql.DB
	table string
}

// NewPgTodoRepository stores todos in the given table.
func NewPgTodoRepository(db *sql.DB, table string) TodoRepository {
	return &pgTodoRepository{db: db, table: pgx.Identifier{table}.Sanitize()}
}

const pgTodoColumns = "id, title, description, due_date, status, user_id"

// pgTodoConditions builds the WHERE clause for an owner's filtered list.
// Placeholders start at $1, which is always the owner id.
func pgTodoConditions(ownerID string, f model.TodoFilter) (string, []interface{}) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{ownerID}
	argID := 2

	if f.Title != nil {
		conditions = append(conditions, fmt.Sprintf("title = $%d", argID))
		args = append(args, *f.Title)
		argID++
	}
	if f.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, string(*f.Status))
		argID++
	}
	if f.DueDate != nil {
		conditions = append(conditions, fmt.Sprintf("due_date = $%d", argID))
		args = append(args, f.DueDate.Time)
		argID++
	}
	return strings.Join(conditions, " AND "), args
}

// pgTodoAssignments builds the SET clause for a patch. Placeholders start at $1.
func pgTodoAssignments(p model.TodoPatch) (string, []interface{}) {
	var sets []string
	var args []interface{}
	argID := 1

	add := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argID))
		args = append(args, value)
		argID++
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.DueDate.Set {
		add("due_date", nullTime(p.DueDate.Value))
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	return strings.Join(sets, ", "), args
}

func nullTime(d model.Date) sql.NullTime {
	return sql.NullTime{Time: d.Time, Valid: !d.IsZero()}
}

func scanTodo(scan func(dest ...interface{}) error) (model.Todo, error) {
	var t model.Todo
	var due sql.NullTime
	var status string
	if err := scan(&t.ID, &t.Title, &t.Description, &due, &status, &t.OwnerID); err != nil {
		return model.Todo{}, err
	}
	t.Status = model.TodoStatus(status)
	if due.Valid {
		t.DueDate = model.NewDate(due.Time)
	}
	return t, nil
}

func (r *pgTodoRepository) ListByOwner(ctx context.Context, ownerID string, filter model.TodoFilter) ([]model.Todo, error) {
	where, args := pgTodoConditions(ownerID, filter)
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY created_at`, pgTodoColumns, r.table, where)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgTodoRepository.ListByOwner query: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("pgTodoRepository.ListByOwner scan: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTodoRepository.ListByOwner rows.Err: %w", err)
	}
	return todos, nil
}

func (r *pgTodoRepository) FindByID(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND user_id = $2`, pgTodoColumns, r.table)
	t, err := scanTodo(r.db.QueryRowContext(ctx, query, id, ownerID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTodoRepository.FindByID: %w", err)
	}
	return &t, nil
}

func (r *pgTodoRepository) Create(ctx context.Context, todo *model.Todo) (string, error) {
	id := uuid.NewString()
	query := fmt.Sprintf(`INSERT INTO %s (%s, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`, r.table, pgTodoColumns)
	_, err := r.db.ExecContext(ctx, query,
		id, todo.Title, todo.Description, nullTime(todo.DueDate), string(todo.Status), todo.OwnerID, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("pgTodoRepository.Create: %w", err)
	}
	todo.ID = id
	return id, nil
}

func (r *pgTodoRepository) Update(ctx context.Context, id, ownerID string, patch model.TodoPatch) (int64, error) {
	if patch.IsEmpty() {
		return 0, nil
	}
	sets, args := pgTodoAssignments(patch)
	n := len(args)
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d AND user_id = $%d`, r.table, sets, n+1, n+2)
	args = append(args, id, ownerID)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("pgTodoRepository.Update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pgTodoRepository.Update rows affected: %w", err)
	}
	return affected, nil
}

func (r *pgTodoRepository) Delete(ctx context.Context, id, ownerID string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.table)
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("pgTodoRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pgTodoRepository.Delete rows affected: %w", err)
	}
	return affected, nil
}

func (r *pgTodoRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, r.table)
	res, err := r.db.ExecContext(ctx, query, ownerID)
	if err != nil {
		return 0, fmt.Errorf("pgTodoRepository.DeleteByOwner: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pgTodoRepository.DeleteByOwner rows affected: %w", err)
	}
	return affected, nil
}
