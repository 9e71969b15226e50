package services

import (
	"context"

	"github.com/lkhn/wealth-backend/internal/models"
	"go.uber.org/zap"
)

const (
	forumCategoriesKey = "forum:categories"
	forumPostsResource = "forum:posts"
	allCategories      = "_all"
)

// ForumService puts a read-through Redis cache in front of ForumStore.
// Cache errors never fail a request; they fall through to Mongo.
type ForumService struct {
	store *ForumStore
	cache *CacheService
}

func NewForumService(store *ForumStore, cache *CacheService) *ForumService {
	return &ForumService{store: store, cache: cache}
}

func (s *ForumService) Categories(ctx context.Context) ([]models.ForumCategory, error) {
	var cached []models.ForumCategory
	if s.readCache(ctx, forumCategoriesKey, &cached) {
		return cached, nil
	}

	cats, err := s.store.Categories(ctx)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, forumCategoriesKey, cats)
	return cats, nil
}

func (s *ForumService) Posts(ctx context.Context, categoryID string) ([]models.ForumPost, error) {
	key := postsKey(categoryID)

	var cached []models.ForumPost
	if s.readCache(ctx, key, &cached) {
		return cached, nil
	}

	posts, err := s.store.Posts(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, posts)
	return posts, nil
}

// CreatePost stores a post and drops the listings it appears in.
func (s *ForumService) CreatePost(ctx context.Context, post models.ForumPost) (models.ForumPost, error) {
	saved, err := s.store.CreatePost(ctx, post)
	if err != nil {
		return models.ForumPost{}, err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, postsKey(""), postsKey(saved.CategoryID)); err != nil {
			zap.S().Warnw("forum cache invalidation failed", "error", err)
		}
	}
	return saved, nil
}

func (s *ForumService) readCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		zap.S().Warnw("forum cache read failed", "key", key, "error", err)
		return false
	}
	return hit
}

func (s *ForumService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value); err != nil {
		zap.S().Warnw("forum cache write failed", "key", key, "error", err)
	}
}

func postsKey(categoryID string) string {
	if categoryID == "" {
		categoryID = allCategories
	}
	return CacheKey(forumPostsResource, categoryID)
}
