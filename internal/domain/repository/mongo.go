package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/common"
	"github.com/RafaSilvaDev/Gemini-TODO-App/internal/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"passwordHash"`
}

func (d userDocument) toModel() model.User {
	return model.User{ID: d.ID.Hex(), Username: d.Username, PasswordHash: d.PasswordHash}
}

type todoDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	DueDate     *time.Time         `bson:"dueDate,omitempty"`
	Status      string             `bson:"status"`
	UserID      primitive.ObjectID `bson:"userId"`
}

func (d todoDocument) toModel() model.Todo {
	t := model.Todo{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      model.TodoStatus(d.Status),
		OwnerID:     d.UserID.Hex(),
	}
	if d.DueDate != nil {
		t.DueDate = model.NewDate(*d.DueDate)
	}
	return t
}

// objectID parses a hex id. Malformed ids can never match a stored record, so
// callers treat a false result as not found.
func objectID(hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	return id, err == nil
}

type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository stores users in coll. A unique index on username is
// expected (see database.EnsureMongoIndexes).
func NewMongoUserRepository(coll *mongo.Collection) UserRepository {
	return &mongoUserRepository{coll: coll}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) (string, error) {
	res, err := r.coll.InsertOne(ctx, userDocument{Username: user.Username, PasswordHash: user.PasswordHash})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("user %q: %w", user.Username, common.ErrDuplicateUsername)
		}
		return "", fmt.Errorf("mongoUserRepository.Create: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("mongoUserRepository.Create: unexpected inserted id type %T", res.InsertedID)
	}
	user.ID = oid.Hex()
	return user.ID, nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, common.ErrNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *mongoUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.D) (*model.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoUserRepository.findOne: %w", err)
	}
	u := doc.toModel()
	return &u, nil
}

func (r *mongoUserRepository) List(ctx context.Context) ([]model.User, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("mongoUserRepository.List: %w", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongoUserRepository.List decode: %w", err)
	}
	users := make([]model.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toModel())
	}
	return users, nil
}

func (r *mongoUserRepository) UpdateUsername(ctx context.Context, id, username string) (*model.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, common.ErrNotFound
	}
	var doc userDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "username", Value: username}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("user %q: %w", username, common.ErrDuplicateUsername)
		}
		return nil, fmt.Errorf("mongoUserRepository.UpdateUsername: %w", err)
	}
	u := doc.toModel()
	return &u, nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, ok := objectID(id)
	if !ok {
		return 0, nil
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return 0, fmt.Errorf("mongoUserRepository.Delete: %w", err)
	}
	return res.DeletedCount, nil
}

// mongoTodoFilter translates an owner's filter into a query document. The
// owner constraint always comes first.
func mongoTodoFilter(owner primitive.ObjectID, f model.TodoFilter) bson.D {
	filter := bson.D{{Key: "userId", Value: owner}}
	if f.Title != nil {
		filter = append(filter, bson.E{Key: "title", Value: *f.Title})
	}
	if f.Status != nil {
		filter = append(filter, bson.E{Key: "status", Value: string(*f.Status)})
	}
	if f.DueDate != nil {
		filter = append(filter, bson.E{Key: "dueDate", Value: f.DueDate.Time})
	}
	return filter
}

// mongoTodoSet translates a patch into a $set document.
func mongoTodoSet(p model.TodoPatch) bson.D {
	set := bson.D{}
	if p.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *p.Title})
	}
	if p.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *p.Description})
	}
	if p.DueDate.Set {
		if p.DueDate.Value.IsZero() {
			set = append(set, bson.E{Key: "dueDate", Value: nil})
		} else {
			set = append(set, bson.E{Key: "dueDate", Value: p.DueDate.Value.Time})
		}
	}
	if p.Status != nil {
		set = append(set, bson.E{Key: "status", Value: string(*p.Status)})
	}
	return set
}

type mongoTodoRepository struct {
	coll *mongo.Collection
}

func NewMongoTodoRepository(coll *mongo.Collection) TodoRepository {
	return &mongoTodoRepository{coll: coll}
}

func (r *mongoTodoRepository) ListByOwner(ctx context.Context, ownerID string, filter model.TodoFilter) ([]model.Todo, error) {
	owner, ok := objectID(ownerID)
	if !ok {
		return []model.Todo{}, nil
	}
	cur, err := r.coll.Find(ctx, mongoTodoFilter(owner, filter))
	if err != nil {
		return nil, fmt.Errorf("mongoTodoRepository.ListByOwner: %w", err)
	}
	var docs []todoDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongoTodoRepository.ListByOwner decode: %w", err)
	}
	todos := make([]model.Todo, 0, len(docs))
	for _, d := range docs {
		todos = append(todos, d.toModel())
	}
	return todos, nil
}

func (r *mongoTodoRepository) compoundMatch(id, ownerID string) (bson.D, bool) {
	oid, ok := objectID(id)
	if !ok {
		return nil, false
	}
	owner, ok := objectID(ownerID)
	if !ok {
		return nil, false
	}
	return bson.D{{Key: "_id", Value: oid}, {Key: "userId", Value: owner}}, true
}

func (r *mongoTodoRepository) FindByID(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	match, ok := r.compoundMatch(id, ownerID)
	if !ok {
		return nil, common.ErrNotFound
	}
	var doc todoDocument
	if err := r.coll.FindOne(ctx, match).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoTodoRepository.FindByID: %w", err)
	}
	t := doc.toModel()
	return &t, nil
}

func (r *mongoTodoRepository) Create(ctx context.Context, todo *model.Todo) (string, error) {
	owner, ok := objectID(todo.OwnerID)
	if !ok {
		return "", fmt.Errorf("mongoTodoRepository.Create: malformed owner id %q", todo.OwnerID)
	}
	doc := todoDocument{
		Title:       todo.Title,
		Description: todo.Description,
		Status:      string(todo.Status),
		UserID:      owner,
	}
	if !todo.DueDate.IsZero() {
		due := todo.DueDate.Time
		doc.DueDate = &due
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("mongoTodoRepository.Create: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("mongoTodoRepository.Create: unexpected inserted id type %T", res.InsertedID)
	}
	todo.ID = oid.Hex()
	return todo.ID, nil
}

func (r *mongoTodoRepository) Update(ctx context.Context, id, ownerID string, patch model.TodoPatch) (int64, error) {
	if patch.IsEmpty() {
		return 0, nil
	}
	match, ok := r.compoundMatch(id, ownerID)
	if !ok {
		return 0, nil
	}
	res, err := r.coll.UpdateOne(ctx, match, bson.D{{Key: "$set", Value: mongoTodoSet(patch)}})
	if err != nil {
		return 0, fmt.Errorf("mongoTodoRepository.Update: %w", err)
	}
	return res.ModifiedCount, nil
}

func (r *mongoTodoRepository) Delete(ctx context.Context, id, ownerID string) (int64, error) {
	match, ok := r.compoundMatch(id, ownerID)
	if !ok {
		return 0, nil
	}
	res, err := r.coll.DeleteOne(ctx, match)
	if err != nil {
		return 0, fmt.Errorf("mongoTodoRepository.Delete: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *mongoTodoRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	owner, ok := objectID(ownerID)
	if !ok {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.D{{Key: "userId", Value: owner}})
	if err != nil {
		return 0, fmt.Errorf("mongoTodoRepository.DeleteByOwner: %w", err)
	}
	return res.DeletedCount, nil
}
