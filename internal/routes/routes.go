package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lkhn/wealth-backend/internal/auth"
	"github.com/lkhn/wealth-backend/internal/handlers"
)

// Options carries the pieces of the route table that depend on deployment.
type Options struct {
	// WriteLimit throttles public write endpoints. Nil disables it.
	WriteLimit func(http.Handler) http.Handler
	// Metrics serves /metrics. Nil leaves it unmounted.
	Metrics http.Handler
}

func SetupRoutes(r chi.Router, h *handlers.Handler, opts Options) {
	r.Get("/health", handlers.Health)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	authenticated := auth.Authenticate(h.Tokens, h.Denylist)
	writes := opts.WriteLimit
	if writes == nil {
		writes = func(next http.Handler) http.Handler { return next }
	}

	// Public submissions
	r.With(writes).Post("/api/feedback", h.SubmitFeedback)
	r.With(writes).Post("/api/waitlist", h.SubmitWaitlist)

	// Presence
	r.Post("/api/offline-status", h.MarkOffline)
	r.Post("/api/online-status", h.MarkOnline)
	r.Get("/api/presence", h.GetPresence)
	r.Get("/ws/presence", h.PresenceWebSocket)

	// Forum
	r.Get("/api/forum/categories", h.ForumCategories)
	r.Get("/api/forum/posts", h.ForumPosts)
	r.With(authenticated, writes).Post("/api/forum/posts", h.CreateForumPost)
	r.With(authenticated, writes).Post("/api/upload", h.UploadAttachment)

	// Callable functions
	r.With(writes).Post("/functions/{name}", h.CallFunction)

	// Admin (accounts are created directly in the database)
	r.With(writes).Post("/api/admin/signin", h.AdminSignin)
	r.Group(func(r chi.Router) {
		r.Use(authenticated, auth.RequireRole(auth.RoleAdmin))
		r.Post("/api/admin/signout", h.Signout)
		r.Post("/api/admin/mfa/enroll", h.EnrollMFA)
		r.Post("/api/admin/mfa/confirm", h.ConfirmMFA)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireMFA)
			r.Get("/api/admin/feedback", h.ListFeedback)
			r.Get("/api/admin/waitlist", h.ListWaitlist)
		})
	})
}
