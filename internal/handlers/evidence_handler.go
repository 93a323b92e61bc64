package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/silasdani/bullet-services-sub001/internal/models"
	"github.com/silasdani/bullet-services-sub001/internal/services"
)

// maxEvidenceSize caps a single photo upload at 10 MB.
const maxEvidenceSize = 10 << 20

type EvidenceHandler struct {
	Service *services.EvidenceService
	Logger  *slog.Logger
}

// UploadEvidence accepts a multipart photo upload for a work order.
func (h *EvidenceHandler) UploadEvidence(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := r.ParseMultipartForm(maxEvidenceSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	workOrderID, err := strconv.Atoi(r.FormValue("work_order_id"))
	if err != nil {
		http.Error(w, "Invalid work_order_id", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "Missing photo", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxEvidenceSize))
	if err != nil {
		http.Error(w, "Failed to read photo", http.StatusBadRequest)
		return
	}
	contentType := header.Header.Get("Content-Type")

	evidence, err := h.Service.Upload(r.Context(), claims.UserID, workOrderID, data, contentType)
	if err != nil {
		if errors.Is(err, models.ErrWorkOrderNotFound) {
			http.Error(w, "Work order not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("upload evidence", "work_order_id", workOrderID, "err", err)
		http.Error(w, "Failed to upload evidence", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(evidence)
}
