package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/silasdani/bullet-services-sub001/internal/models"
	"github.com/silasdani/bullet-services-sub001/internal/services"
)

type WorkSessionHandler struct {
	CheckIn  *services.CheckInService
	CheckOut *services.CheckOutService
	Logger   *slog.Logger
}

type checkInRequest struct {
	WorkOrderID int      `json:"work_order_id"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	Address     string   `json:"address"`
}

type checkOutRequest struct {
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Address string   `json:"address"`
}

func (h *WorkSessionHandler) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	session, err := h.CheckIn.CheckIn(r.Context(), claims.UserID, req.WorkOrderID, req.Lat, req.Lon, req.Address)
	if err != nil {
		h.writeCheckError(w, "check in", err)
		return
	}
	json.NewEncoder(w).Encode(session)
}

func (h *WorkSessionHandler) HandleCheckOut(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	var req checkOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	session, err := h.CheckOut.CheckOut(r.Context(), claims.UserID, req.Lat, req.Lon, req.Address)
	if err != nil {
		h.writeCheckError(w, "check out", err)
		return
	}
	json.NewEncoder(w).Encode(session)
}

func (h *WorkSessionHandler) writeCheckError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, models.ErrActiveSessionExists):
		http.Error(w, "You already have an active session", http.StatusConflict)
	case errors.Is(err, models.ErrNoActiveSession):
		http.Error(w, "No active session", http.StatusConflict)
	case errors.Is(err, models.ErrNotAssignedToBuilding):
		http.Error(w, "You are not assigned to this building", http.StatusForbidden)
	case errors.Is(err, models.ErrWorkOrderNotCheckable):
		http.Error(w, "Work order is not open for check-in", http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrOutOfRange):
		http.Error(w, "Too far from the building", http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrNoPhotoEvidence):
		http.Error(w, "Upload at least one photo before checking out", http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrWorkOrderNotFound):
		http.Error(w, "Work order not found", http.StatusNotFound)
	default:
		h.Logger.Error("work session action failed", "action", action, "err", err)
		http.Error(w, "Failed to "+action, http.StatusInternalServerError)
	}
}

// Timesheet lists the caller's closed sessions for a period. Defaults to
// the current calendar month.
func (h *WorkSessionHandler) Timesheet(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "Invalid from date", http.StatusBadRequest)
			return
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			http.Error(w, "Invalid to date", http.StatusBadRequest)
			return
		}
		to = parsed
	}

	entries, err := h.CheckOut.Timesheet(r.Context(), claims.UserID, from, to)
	if err != nil {
		h.Logger.Error("load timesheet", "user_id", claims.UserID, "err", err)
		http.Error(w, "Failed to load timesheet", http.StatusInternalServerError)
		return
	}
	var total float64
	for _, e := range entries {
		total += e.HoursWorked
	}
	json.NewEncoder(w).Encode(map[string]any{
		"entries":     entries,
		"total_hours": models.Round2(total),
	})
}
