package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lkhn/wealth-backend/internal/auth"
	"github.com/lkhn/wealth-backend/internal/models"
)

// ForumCategories handles GET /api/forum/categories.
func (h *Handler) ForumCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	categories, err := h.Forum.Categories(ctx)
	if err != nil {
		zap.S().Errorw("forum categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	if categories == nil {
		categories = []models.ForumCategory{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// ForumPosts handles GET /api/forum/posts?category=. Without a category every post is returned.
func (h *Handler) ForumPosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	posts, err := h.Forum.Posts(ctx, category)
	if err != nil {
		zap.S().Errorw("forum posts failed", "category", category, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}
	if posts == nil {
		posts = []models.ForumPost{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// CreatePostRequest represents the request to create a forum post
type CreatePostRequest struct {
	CategoryID    string `json:"categoryId"`
	Title         string `json:"title"`
	Body          string `json:"body"`
	AuthorName    string `json:"authorName,omitempty"`
	AttachmentURL string `json:"attachmentUrl,omitempty"`
}

// CreateForumPost handles POST /api/forum/posts. The author is taken from the token subject.
func (h *Handler) CreateForumPost(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post := models.ForumPost{
		CategoryID:    strings.TrimSpace(req.CategoryID),
		Title:         strings.TrimSpace(req.Title),
		Body:          strings.TrimSpace(req.Body),
		AuthorID:      claims.Subject,
		AuthorName:    strings.TrimSpace(req.AuthorName),
		AttachmentURL: strings.TrimSpace(req.AttachmentURL),
		CreatedAt:     h.now(),
	}
	if post.CategoryID == "" || post.Title == "" || post.Body == "" {
		writeError(w, http.StatusBadRequest, "Category, title and body are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	saved, err := h.Forum.CreatePost(ctx, post)
	if err != nil {
		zap.S().Errorw("forum post create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}
