package handlers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lkhn/wealth-backend/internal/auth"
	"github.com/lkhn/wealth-backend/internal/metrics"
	"github.com/lkhn/wealth-backend/internal/mfa"
	"github.com/lkhn/wealth-backend/internal/models"
	"github.com/lkhn/wealth-backend/internal/notify"
)

// storeTimeout bounds every storage call made while serving a request.
const storeTimeout = 5 * time.Second

type FeedbackStore interface {
	Insert(ctx context.Context, fb models.Feedback) (models.Feedback, error)
	List(ctx context.Context, limit int64) ([]models.Feedback, error)
}

type WaitlistStore interface {
	Insert(ctx context.Context, entry models.WaitlistEntry) (models.WaitlistEntry, error)
	List(ctx context.Context, limit int64) ([]models.WaitlistEntry, error)
}

type PresenceStore interface {
	Upsert(ctx context.Context, p models.Presence) error
	Get(ctx context.Context, userID string) (models.Presence, error)
}

type ForumService interface {
	Categories(ctx context.Context) ([]models.ForumCategory, error)
	Posts(ctx context.Context, categoryID string) ([]models.ForumPost, error)
	CreatePost(ctx context.Context, post models.ForumPost) (models.ForumPost, error)
}

type Notifier interface {
	SendWaitlistConfirmation(ctx context.Context, in notify.WaitlistConfirmation) error
	SendFeedback(ctx context.Context, in notify.FeedbackMessage) error
}

type AdminStore interface {
	ByUsername(ctx context.Context, username string) (models.Admin, error)
	ByID(ctx context.Context, id uuid.UUID) (models.Admin, error)
}

type MFAService interface {
	Enroll(ctx context.Context, admin models.Admin) (mfa.Enrollment, error)
	Confirm(ctx context.Context, adminID uuid.UUID, code string) error
	Verify(admin models.Admin, code string) (bool, error)
}

type Uploader interface {
	UploadFileFromHeader(ctx context.Context, fh *multipart.FileHeader, folder string) (string, error)
}

// Handler serves every HTTP endpoint. Dependencies are injected by cmd/server.
type Handler struct {
	Feedback FeedbackStore
	Waitlist WaitlistStore
	Presence PresenceStore
	Forum    ForumService
	Notifier Notifier
	Admins   AdminStore
	MFA      MFAService
	Tokens   *auth.Issuer
	Denylist *auth.Denylist
	Uploader Uploader // nil when Cloudinary is not configured
	Metrics  *metrics.Metrics

	FeedbackRecipient string
	NotifyOnFeedback  bool

	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// parseLimit reads ?limit=, falling back to the default and capping at maxListLimit.
func parseLimit(r *http.Request) int64 {
	n, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

// Health is the liveness check.
func Health(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("OK"))
}
