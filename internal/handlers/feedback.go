package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lkhn/wealth-backend/internal/metrics"
	"github.com/lkhn/wealth-backend/internal/models"
	"github.com/lkhn/wealth-backend/internal/notify"
	"github.com/lkhn/wealth-backend/pkg/clientip"
)

// SubmitFeedbackRequest represents the request to submit feedback
type SubmitFeedbackRequest struct {
	Feedback string `json:"feedback"`
	Rating   *int   `json:"rating"`
	Email    string `json:"email,omitempty"`
}

// SubmitFeedback validates and stores one feedback record.
// Identical requests are stored twice; there is no deduplication.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Metrics.Feedback(metrics.ResultInvalid)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	message := strings.TrimSpace(req.Feedback)
	if message == "" || req.Rating == nil {
		h.Metrics.Feedback(metrics.ResultInvalid)
		writeError(w, http.StatusBadRequest, "Feedback and rating are required")
		return
	}
	if !models.ValidRating(*req.Rating) {
		h.Metrics.Feedback(metrics.ResultInvalid)
		writeError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	record := models.Feedback{
		CreatedAt:      h.now(),
		Message:        message,
		Rating:         *req.Rating,
		Email:          strings.TrimSpace(req.Email),
		RecipientEmail: h.FeedbackRecipient,
		IPAddress:      clientip.RealClientIP(r),
	}

	saved, err := h.Feedback.Insert(ctx, record)
	if err != nil {
		h.Metrics.Feedback(metrics.ResultError)
		zap.S().Errorw("feedback insert failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to submit feedback")
		return
	}
	h.Metrics.Feedback(metrics.ResultOK)

	if h.NotifyOnFeedback && h.Notifier != nil {
		// The record is already stored; a failed email does not change the response.
		err := h.Notifier.SendFeedback(r.Context(), notify.FeedbackMessage{
			Message: saved.Message,
			Rating:  saved.Rating,
			Email:   saved.Email,
		})
		if err != nil {
			zap.S().Warnw("feedback notification failed", "feedback_id", saved.ID.Hex(), "error", err)
		}
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Feedback submitted successfully"})
}

type listFeedbackResponse struct {
	Feedback []models.Feedback `json:"feedback"`
	Count    int               `json:"count"`
}

// ListFeedback returns the newest feedback records (admin only).
func (h *Handler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	list, err := h.Feedback.List(ctx, parseLimit(r))
	if err != nil {
		zap.S().Errorw("feedback list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch feedback")
		return
	}
	writeJSON(w, http.StatusOK, listFeedbackResponse{Feedback: list, Count: len(list)})
}
