package services

import (
	"context"
	"fmt"

	"github.com/lkhn/wealth-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const FeedbackCollection = "feedback"

// FeedbackStore writes feedback records to MongoDB. Records are insert-only.
type FeedbackStore struct {
	col *mongo.Collection
}

func NewFeedbackStore(db *mongo.Database) *FeedbackStore {
	return &FeedbackStore{col: db.Collection(FeedbackCollection)}
}

// Insert stores one record and returns it with its assigned ID.
func (s *FeedbackStore) Insert(ctx context.Context, fb models.Feedback) (models.Feedback, error) {
	if fb.ID.IsZero() {
		fb.ID = primitive.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, fb); err != nil {
		return models.Feedback{}, fmt.Errorf("insert feedback: %w", err)
	}
	return fb, nil
}

// List returns the newest records first.
func (s *FeedbackStore) List(ctx context.Context, limit int64) ([]models.Feedback, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)

	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find feedback: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Feedback{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return out, nil
}

// EnsureFeedbackIndexes creates the createdAt index used by the admin listing.
func EnsureFeedbackIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(FeedbackCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("idx_created_at"),
	})
	return err
}
