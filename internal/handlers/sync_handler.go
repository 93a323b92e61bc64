package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/silasdani/bullet-services-sub001/internal/services"
)

type SyncHandler struct {
	Sync   *services.FreshbooksSyncService
	Logger *slog.Logger
}

// SyncResource pulls one remote collection (invoices, clients, payments).
func (h *SyncHandler) SyncResource(w http.ResponseWriter, r *http.Request) {
	resource := r.URL.Query().Get(":resource")
	synced, err := h.Sync.SyncAll(r.Context(), resource)
	if err != nil {
		h.Logger.Error("sync failed", "resource", resource, "synced", synced, "err", err)
		http.Error(w, "Sync failed", http.StatusBadGateway)
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"resource": resource, "synced": synced})
}

// SyncOne refreshes a single invoice mirror by its remote id.
func (h *SyncHandler) SyncOne(w http.ResponseWriter, r *http.Request) {
	freshbooksID, err := strconv.ParseInt(r.URL.Query().Get(":freshbooks_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid remote invoice ID", http.StatusBadRequest)
		return
	}
	if err := h.Sync.SyncOne(r.Context(), freshbooksID); err != nil {
		h.Logger.Error("sync one failed", "freshbooks_id", freshbooksID, "err", err)
		http.Error(w, "Sync failed", http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusOK)
}
