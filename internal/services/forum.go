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

const (
	ForumCategoriesCollection = "forum_categories"
	ForumPostsCollection      = "forum_posts"

	maxForumPosts = 100
)

// ForumStore reads and writes forum categories and posts in MongoDB.
type ForumStore struct {
	categories *mongo.Collection
	posts      *mongo.Collection
}

func NewForumStore(db *mongo.Database) *ForumStore {
	return &ForumStore{
		categories: db.Collection(ForumCategoriesCollection),
		posts:      db.Collection(ForumPostsCollection),
	}
}

// Categories lists every category by display order.
func (s *ForumStore) Categories(ctx context.Context) ([]models.ForumCategory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cur, err := s.categories.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find categories: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.ForumCategory{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return out, nil
}

// Posts lists posts newest first, restricted to categoryID when it is not empty.
func (s *ForumStore) Posts(ctx context.Context, categoryID string) ([]models.ForumPost, error) {
	filter := bson.M{}
	if categoryID != "" {
		filter["categoryId"] = categoryID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(maxForumPosts)

	cur, err := s.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.ForumPost{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return out, nil
}

func (s *ForumStore) CreatePost(ctx context.Context, post models.ForumPost) (models.ForumPost, error) {
	if post.ID.IsZero() {
		post.ID = primitive.NewObjectID()
	}
	if _, err := s.posts.InsertOne(ctx, post); err != nil {
		return models.ForumPost{}, fmt.Errorf("insert post: %w", err)
	}
	return post, nil
}

// EnsureForumIndexes supports the category filter plus newest-first sort.
func EnsureForumIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ForumPostsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "categoryId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("idx_category_created_at"),
	})
	return err
}
