package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/inkwell/backend/internal/models"
)

// MongoStore handles post documents in MongoDB. Comments and replies live
// inside the post document and are never written separately.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("posts")}
}

// EnsureIndexes creates the indexes the list query relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Insert(ctx context.Context, post *models.Post) error {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}
	return nil
}

// Find returns posts newest first. A non-empty titleContains narrows the
// result to titles containing it, case-insensitively.
func (s *MongoStore) Find(ctx context.Context, titleContains string) ([]models.Post, error) {
	filter := bson.M{}
	if titleContains != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(titleContains), "$options": "i"}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}
	return posts, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrNotFound
	}
	var post models.Post
	err = s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo get: %w", err)
	}
	return &post, nil
}

// Replace writes the whole post document back.
func (s *MongoStore) Replace(ctx context.Context, post *models.Post) error {
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": post.ID}, post)
	if err != nil {
		return fmt.Errorf("mongo replace: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.ErrNotFound
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("mongo delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}
