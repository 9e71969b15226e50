package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/lkhn/wealth-backend/internal/models"
	"github.com/lkhn/wealth-backend/internal/services"
)

const (
	presenceReadLimit = 4 * 1024
	presenceIdle      = 90 * time.Second
)

var presenceUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin is enforced by the CORS layer.
		return true
	},
}

// PresenceRequest is the optional body of the status endpoints.
type PresenceRequest struct {
	Device string `json:"device,omitempty"`
}

// MarkOffline handles POST /api/offline-status?userId=.
func (h *Handler) MarkOffline(w http.ResponseWriter, r *http.Request) {
	h.setPresence(w, r, models.PresenceOffline)
}

// MarkOnline handles POST /api/online-status?userId=.
func (h *Handler) MarkOnline(w http.ResponseWriter, r *http.Request) {
	h.setPresence(w, r, models.PresenceOnline)
}

// GetPresence handles GET /api/presence?userId=.
func (h *Handler) GetPresence(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	p, err := h.Presence.Get(ctx, userID)
	if errors.Is(err, services.ErrPresenceNotFound) {
		writeJSON(w, http.StatusOK, models.Presence{UserID: userID, Status: models.PresenceOffline})
		return
	}
	if err != nil {
		zap.S().Errorw("presence lookup failed", "user_id", userID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch status")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) setPresence(w http.ResponseWriter, r *http.Request, status models.PresenceStatus) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}

	// The body is optional; beacons on page unload often send none.
	var req PresenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := h.upsertPresence(ctx, userID, status, req.Device); err != nil {
		zap.S().Errorw("presence update failed", "user_id", userID, "status", status, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update status")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Status updated"})
}

func (h *Handler) upsertPresence(ctx context.Context, userID string, status models.PresenceStatus, device string) error {
	err := h.Presence.Upsert(ctx, models.Presence{
		UserID:     userID,
		Status:     status,
		LastActive: h.now(),
		Device:     strings.TrimSpace(device),
	})
	if err == nil {
		h.Metrics.Presence(string(status))
	}
	return err
}

// PresenceWebSocket keeps a user online for the lifetime of the connection.
// Any client message refreshes lastActive; disconnecting marks the user offline.
func (h *Handler) PresenceWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "User ID is required")
		return
	}
	device := r.URL.Query().Get("device")

	conn, err := presenceUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	h.touchPresence(userID, models.PresenceOnline, device)
	defer h.touchPresence(userID, models.PresenceOffline, device)

	conn.SetReadLimit(presenceReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(presenceIdle))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(presenceIdle))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(presenceIdle))
		h.touchPresence(userID, models.PresenceOnline, device)
	}
}

// touchPresence runs detached from the request so the offline write survives the disconnect.
func (h *Handler) touchPresence(userID string, status models.PresenceStatus, device string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := h.upsertPresence(ctx, userID, status, device); err != nil {
		zap.S().Warnw("presence update failed", "user_id", userID, "status", status, "error", err)
	}
}
