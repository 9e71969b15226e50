package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lkhn/wealth-backend/internal/auth"
	"github.com/lkhn/wealth-backend/internal/services"
	"github.com/lkhn/wealth-backend/pkg/utils"
)

const (
	errInvalidCredentials = "Invalid credentials"
	errMFARequired        = "mfa_required"
	errInvalidCode        = "invalid code"
)

// AdminSigninRequest represents the request to sign in as admin
type AdminSigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Code     string `json:"code,omitempty"`
}

// AdminSigninResponse carries the access token issued after signin
type AdminSigninResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	MFA       bool      `json:"mfa"`
}

// AdminSignin checks the password and, once MFA is enabled, the TOTP code,
// then issues an admin token. The mfa claim is set only when a code was verified.
func (h *Handler) AdminSignin(w http.ResponseWriter, r *http.Request) {
	var req AdminSigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	admin, err := h.Admins.ByUsername(ctx, req.Username)
	if errors.Is(err, services.ErrAdminNotFound) {
		writeError(w, http.StatusUnauthorized, errInvalidCredentials)
		return
	}
	if err != nil {
		zap.S().Errorw("admin lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}
	if !admin.IsActive {
		writeError(w, http.StatusUnauthorized, errInvalidCredentials)
		return
	}

	ok, err := utils.VerifyPassword(req.Password, admin.PasswordHash)
	if err != nil || !ok {
		writeError(w, http.StatusUnauthorized, errInvalidCredentials)
		return
	}

	if admin.MFAEnabled {
		code := strings.TrimSpace(req.Code)
		if code == "" {
			writeError(w, http.StatusUnauthorized, errMFARequired)
			return
		}
		valid, err := h.MFA.Verify(admin, code)
		if err != nil {
			zap.S().Errorw("mfa verify failed", "admin_id", admin.ID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to sign in")
			return
		}
		if !valid {
			writeError(w, http.StatusUnauthorized, errInvalidCode)
			return
		}
	}

	token, claims, err := h.Tokens.Sign(admin.ID.String(), auth.RoleAdmin, admin.MFAEnabled)
	if err != nil {
		zap.S().Errorw("token sign failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	zap.S().Infow("admin signed in", "admin_id", admin.ID, "mfa", admin.MFAEnabled)
	writeJSON(w, http.StatusOK, AdminSigninResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		MFA:       claims.MFA,
	})
}

// Signout revokes the presented token until it would have expired.
func (h *Handler) Signout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	if h.Denylist != nil {
		if err := h.Denylist.Revoke(r.Context(), claims); err != nil {
			zap.S().Errorw("token revoke failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to sign out")
			return
		}
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Signed out"})
}
