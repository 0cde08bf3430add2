package database

import (
	"context"
	"fmt"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/repository"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/platform/config"

	"github.com/rs/zerolog/log"
)

// Stores holds the repositories backing one configured store and a Close
// function releasing its connections.
type Stores struct {
	Kind  string
	Users repository.UserRepository
	Todos repository.TodoRepository
	Close func(ctx context.Context) error
}

// Open connects to the store selected by cfg.DatabaseURL and prepares its
// schema or indexes.
func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	kind, err := cfg.StoreKind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case config.StoreMongo:
		client, db, err := ConnectMongo(ctx, cfg.DatabaseURL, cfg.DBName)
		if err != nil {
			return nil, err
		}
		users := db.Collection(cfg.UsersCollectionName)
		todos := db.Collection(cfg.TodosCollectionName)
		if err := EnsureMongoIndexes(ctx, users, todos); err != nil {
			client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("users", users.Name()).Str("todos", todos.Name()).Msg("Connected to MongoDB collections")
		return &Stores{
			Kind:  kind,
			Users: repository.NewMongoUserRepository(users),
			Todos: repository.NewMongoTodoRepository(todos),
			Close: client.Disconnect,
		}, nil

	case config.StorePostgres:
		db, err := ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := MigratePostgres(ctx, db, cfg.DBName, cfg.UsersCollectionName, cfg.TodosCollectionName); err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Str("users", cfg.UsersCollectionName).Str("todos", cfg.TodosCollectionName).Msg("Connected to PostgreSQL tables")
		return &Stores{
			Kind:  kind,
			Users: repository.NewPgUserRepository(db, cfg.UsersCollectionName),
			Todos: repository.NewPgTodoRepository(db, cfg.TodosCollectionName),
			Close: func(context.Context) error { return db.Close() },
		}, nil

	case config.StoreMemory:
		log.Warn().Msg("Using the in-memory store; data is lost on restart")
		return &Stores{
			Kind:  kind,
			Users: repository.NewMemoryUserRepository(),
			Todos: repository.NewMemoryTodoRepository(),
			Close: func(context.Context) error { return nil },
		}, nil
	}
	return nil, fmt.Errorf("unsupported store %q", kind)
}
