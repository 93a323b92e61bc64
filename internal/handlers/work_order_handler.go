package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/silasdani/bullet-services-sub001/internal/models"
	"github.com/silasdani/bullet-services-sub001/internal/services"
)

type WorkOrderHandler struct {
	Service *services.WorkOrderService
	Logger  *slog.Logger
}

func (h *WorkOrderHandler) AcceptWorkOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid work order ID", http.StatusBadRequest)
		return
	}
	invoiceID, err := h.Service.Accept(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrWorkOrderNotFound) {
			http.Error(w, "Work order not found", http.StatusNotFound)
			return
		}
		h.Logger.Error("accept work order", "work_order_id", id, "err", err)
		http.Error(w, "Failed to accept work order", http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(map[string]int{"invoice_id": invoiceID})
}
