package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/silasdani/bullet-services-sub001/internal/services"
)

type DeviceTokenHandler struct {
	Push   *services.PushService
	Logger *slog.Logger
}

type deviceTokenRequest struct {
	Token string `json:"token"`
}

func (h *DeviceTokenHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req deviceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Push.Register(r.Context(), claims.UserID, req.Token); err != nil {
		h.Logger.Error("register device token", "user_id", claims.UserID, "err", err)
		http.Error(w, "Failed to register token", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *DeviceTokenHandler) UnregisterToken(w http.ResponseWriter, r *http.Request) {
	if _, ok := ClaimsFromContext(r.Context()); !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	token := r.URL.Query().Get(":token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusBadRequest)
		return
	}
	if err := h.Push.Unregister(r.Context(), token); err != nil {
		h.Logger.Error("unregister device token", "err", err)
		http.Error(w, "Failed to unregister token", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
