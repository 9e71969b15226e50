package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lkhn/wealth-backend/internal/auth"
	"github.com/lkhn/wealth-backend/internal/mfa"
	"github.com/lkhn/wealth-backend/internal/models"
)

// currentAdmin loads the admin named by the token subject.
func (h *Handler) currentAdmin(ctx context.Context) (models.Admin, bool) {
	claims, ok := auth.FromContext(ctx)
	if !ok {
		return models.Admin{}, false
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.Admin{}, false
	}
	admin, err := h.Admins.ByID(ctx, id)
	if err != nil {
		return models.Admin{}, false
	}
	return admin, true
}

// EnrollMFA generates a TOTP secret for the signed-in admin.
func (h *Handler) EnrollMFA(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	admin, ok := h.currentAdmin(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Admin not found")
		return
	}

	enrollment, err := h.MFA.Enroll(ctx, admin)
	if errors.Is(err, mfa.ErrNoEncryption) {
		writeError(w, http.StatusServiceUnavailable, "MFA is not configured")
		return
	}
	if err != nil {
		zap.S().Errorw("mfa enroll failed", "admin_id", admin.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to enroll MFA")
		return
	}
	writeJSON(w, http.StatusOK, enrollment)
}

type ConfirmMFARequest struct {
	Code string `json:"code"`
}

// ConfirmMFA enables MFA once the admin proves possession of the secret.
func (h *Handler) ConfirmMFA(w http.ResponseWriter, r *http.Request) {
	var req ConfirmMFARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "Code is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	admin, ok := h.currentAdmin(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Admin not found")
		return
	}

	err := h.MFA.Confirm(ctx, admin.ID, strings.TrimSpace(req.Code))
	switch {
	case errors.Is(err, mfa.ErrInvalidCode):
		writeError(w, http.StatusUnauthorized, errInvalidCode)
	case errors.Is(err, mfa.ErrNotEnrolled):
		writeError(w, http.StatusBadRequest, "MFA enrollment has not started")
	case errors.Is(err, mfa.ErrNoEncryption):
		writeError(w, http.StatusServiceUnavailable, "MFA is not configured")
	case err != nil:
		zap.S().Errorw("mfa confirm failed", "admin_id", admin.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to confirm MFA")
	default:
		writeJSON(w, http.StatusOK, messageResponse{Message: "MFA enabled. Sign in again with a code to access admin data."})
	}
}
