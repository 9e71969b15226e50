package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lkhn/wealth-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const PresenceCollection = "presence"

var ErrPresenceNotFound = errors.New("presence not found")

// PresenceStore keeps one presence document per user, last write wins.
type PresenceStore struct {
	col *mongo.Collection
}

func NewPresenceStore(db *mongo.Database) *PresenceStore {
	return &PresenceStore{col: db.Collection(PresenceCollection)}
}

// Upsert merges p into the user's document. An empty device leaves the stored device alone.
func (s *PresenceStore) Upsert(ctx context.Context, p models.Presence) error {
	set := bson.M{
		"userId":     p.UserID,
		"status":     p.Status,
		"lastActive": p.LastActive,
	}
	if p.Device != "" {
		set["device"] = p.Device
	}

	_, err := s.col.UpdateOne(ctx,
		bson.M{"userId": p.UserID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert presence %s: %w", p.UserID, err)
	}
	return nil
}

// Get returns the stored presence for a user.
func (s *PresenceStore) Get(ctx context.Context, userID string) (models.Presence, error) {
	var p models.Presence
	err := s.col.FindOne(ctx, bson.M{"userId": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return p, ErrPresenceNotFound
	}
	if err != nil {
		return p, fmt.Errorf("get presence %s: %w", userID, err)
	}
	return p, nil
}

func EnsurePresenceIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(PresenceCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetName("idx_user_id").SetUnique(true),
	})
	return err
}
