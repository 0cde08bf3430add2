package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// ConnectPostgres opens a pooled connection and verifies it with a ping.
func ConnectPostgres(ctx context.Context, connStr string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// MigratePostgres creates the users and todos tables if they do not exist.
// Table names come from configuration and are quoted as identifiers.
func MigratePostgres(ctx context.Context, db *sql.DB, dbName, usersTable, todosTable string) error {
	var current string
	if err := db.QueryRowContext(ctx, `SELECT current_database()`).Scan(&current); err != nil {
		return fmt.Errorf("read current database: %w", err)
	}
	if current != dbName {
		log.Warn().Str("connected", current).Str("configured", dbName).Msg("Connected database differs from DB_NAME")
	}

	users := pgx.Identifier{usersTable}.Sanitize()
	todos := pgx.Identifier{todosTable}.Sanitize()
	todosOwnerIdx := pgx.Identifier{todosTable + "_user_id_idx"}.Sanitize()

	stmt := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS %[2]s (
		id TEXT NOT NULL PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		due_date TIMESTAMPTZ,
		status TEXT NOT NULL,
		user_id TEXT NOT NULL REFERENCES %[1]s (id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS %[3]s ON %[2]s (user_id);
	`, users, todos, todosOwnerIdx)

	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}
