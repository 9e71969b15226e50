package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lkhn/wealth-backend/internal/metrics"
	"github.com/lkhn/wealth-backend/internal/models"
	"github.com/lkhn/wealth-backend/internal/notify"
	"github.com/lkhn/wealth-backend/pkg/clientip"
	"github.com/lkhn/wealth-backend/pkg/utils"
)

// SubmitWaitlistRequest represents the request to join the waitlist
type SubmitWaitlistRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SubmitWaitlist stores a signup, then sends the confirmation emails.
// Repeat signups for the same email are stored again.
func (h *Handler) SubmitWaitlist(w http.ResponseWriter, r *http.Request) {
	var req SubmitWaitlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Metrics.Waitlist(metrics.ResultInvalid)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateWaitlist(req.Name, req.Email); err != nil {
		h.Metrics.Waitlist(metrics.ResultInvalid)
		var ve *utils.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Message)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	entry, err := h.Waitlist.Insert(ctx, models.WaitlistEntry{
		SubmittedAt: h.now(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		IPAddress:   clientip.RealClientIP(r),
	})
	if err != nil {
		h.Metrics.Waitlist(metrics.ResultError)
		zap.S().Errorw("waitlist insert failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to join waitlist")
		return
	}
	h.Metrics.Waitlist(metrics.ResultOK)

	if h.Notifier != nil {
		err := h.Notifier.SendWaitlistConfirmation(r.Context(), notify.WaitlistConfirmation{
			Email: entry.Email,
			Name:  entry.Name,
		})
		if err != nil {
			zap.S().Warnw("waitlist confirmation failed", "entry_id", entry.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Successfully joined the waitlist! We'll notify you when we launch."})
}

type listWaitlistResponse struct {
	Entries []models.WaitlistEntry `json:"entries"`
	Count   int                    `json:"count"`
}

// ListWaitlist returns the newest waitlist entries (admin only).
func (h *Handler) ListWaitlist(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	entries, err := h.Waitlist.List(ctx, parseLimit(r))
	if err != nil {
		zap.S().Errorw("waitlist list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch waitlist")
		return
	}
	writeJSON(w, http.StatusOK, listWaitlistResponse{Entries: entries, Count: len(entries)})
}
