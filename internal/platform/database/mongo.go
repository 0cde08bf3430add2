package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo connects, pings the primary and returns the named database.
func ConnectMongo(ctx context.Context, uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	names, err := client.ListDatabaseNames(ctx, bson.D{{Key: "name", Value: dbName}})
	if err != nil {
		log.Warn().Err(err).Msg("Could not list databases")
	} else if len(names) == 0 {
		log.Info().Str("db", dbName).Msg("Database not found, it will be created on first write")
	} else {
		log.Info().Str("db", dbName).Msg("Database found")
	}

	return client, client.Database(dbName), nil
}

// EnsureMongoIndexes enforces username uniqueness and indexes todo owners.
func EnsureMongoIndexes(ctx context.Context, users, todos *mongo.Collection) error {
	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create username index: %w", err)
	}
	_, err = todos.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create todo owner index: %w", err)
	}
	return nil
}
