package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/common"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// UserRepository is the credential store. Lookups that match nothing return
// common.ErrNotFound; username collisions return common.ErrDuplicateUsername.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) (string, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateUsername(ctx context.Context, id, username string) (*model.User, error)
	Delete(ctx context.Context, id string) (int64, error)
}

const pgUniqueViolation = "23505"

type pgUserRepository struct {
	db    *sql.DB
	table string
}

// NewPgUserRepository stores users in the given table.
func NewPgUserRepository(db *sql.DB, table string) UserRepository {
	return &pgUserRepository{db: db, table: pgx.Identifier{table}.Sanitize()}
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) (string, error) {
	id := uuid.NewString()
	query := fmt.Sprintf(`INSERT INTO %s (id, username, password_hash) VALUES ($1, $2, $3)`, r.table)
	_, err := r.db.ExecContext(ctx, query, id, user.Username, user.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return "", fmt.Errorf("user %q: %w", user.Username, common.ErrDuplicateUsername)
		}
		return "", fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	user.ID = id
	return id, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "id", id)
}

func (r *pgUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "username", username)
}

func (r *pgUserRepository) findOne(ctx context.Context, column, value string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT id, username, password_hash FROM %s WHERE %s = $1`, r.table, column)
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.findOne(%s): %w", column, err)
	}
	return user, nil
}

func (r *pgUserRepository) List(ctx context.Context) ([]model.User, error) {
	query := fmt.Sprintf(`SELECT id, username, password_hash FROM %s ORDER BY username`, r.table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.List query: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash); err != nil {
			return nil, fmt.Errorf("pgUserRepository.List scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgUserRepository.List rows.Err: %w", err)
	}
	return users, nil
}

func (r *pgUserRepository) UpdateUsername(ctx context.Context, id, username string) (*model.User, error) {
	query := fmt.Sprintf(`UPDATE %s SET username = $1 WHERE id = $2 RETURNING id, username, password_hash`, r.table)
	user := &model.User{}
	err := r.db.QueryRowContext(ctx, query, username, id).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("user %q: %w", username, common.ErrDuplicateUsername)
		}
		return nil, fmt.Errorf("pgUserRepository.UpdateUsername: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) Delete(ctx context.Context, id string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("pgUserRepository.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pgUserRepository.Delete rows affected: %w", err)
	}
	return n, nil
}
