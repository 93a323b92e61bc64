package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/silasdani/bullet-services-sub001/internal/freshbooks"
	"github.com/silasdani/bullet-services-sub001/internal/models"
	"github.com/silasdani/bullet-services-sub001/internal/services"
)

type InvoiceHandler struct {
	Send          *services.InvoiceSendService
	Void          *services.InvoiceVoidService
	VoidWithEmail *services.InvoiceVoidWithEmailService
	MarkPaid      *services.InvoiceMarkPaidService
	Discount      *services.InvoiceApplyDiscountService
	Mirrors       services.MirrorStore
	Gateway       *freshbooks.ClientAPI
	Logger        *slog.Logger
}

func invoiceID(r *http.Request) (int, error) {
	return strconv.Atoi(r.URL.Query().Get(":id"))
}

// writeResult encodes an action result: 200 on success, 422 on a refused
// action. Soft failures ride along in the errors array.
func writeResult(w http.ResponseWriter, result models.Result) {
	if !result.Success {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	json.NewEncoder(w).Encode(result)
}

func (h *InvoiceHandler) SendInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := invoiceID(r)
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	writeResult(w, h.Send.Run(r.Context(), id))
}

func (h *InvoiceHandler) VoidInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := invoiceID(r)
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	writeResult(w, h.Void.Run(r.Context(), id))
}

func (h *InvoiceHandler) VoidInvoiceWithEmail(w http.ResponseWriter, r *http.Request) {
	id, err := invoiceID(r)
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	writeResult(w, h.VoidWithEmail.Run(r.Context(), id))
}

func (h *InvoiceHandler) MarkInvoicePaid(w http.ResponseWriter, r *http.Request) {
	id, err := invoiceID(r)
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	writeResult(w, h.MarkPaid.Run(r.Context(), id))
}

func (h *InvoiceHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	id, err := invoiceID(r)
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	writeResult(w, h.Discount.Run(r.Context(), id))
}

func (h *InvoiceHandler) InvoicePDF(w http.ResponseWriter, r *http.Request) {
	id, err := invoiceID(r)
	if err != nil {
		http.Error(w, "Invalid invoice ID", http.StatusBadRequest)
		return
	}
	mirror, err := h.Mirrors.GetByInvoiceID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrRemoteInvoiceMissing) {
			http.Error(w, "No remote invoice", http.StatusNotFound)
			return
		}
		h.Logger.Error("load mirror for pdf", "invoice_id", id, "err", err)
		http.Error(w, "Failed to load invoice", http.StatusInternalServerError)
		return
	}
	pdf, err := h.Gateway.GetInvoicePDF(r.Context(), mirror.FreshbooksID)
	if err != nil {
		h.Logger.Error("fetch invoice pdf", "invoice_id", id, "err", err)
		http.Error(w, "Failed to fetch PDF", http.StatusBadGateway)
		return
	}
	if pdf == nil {
		http.Error(w, "Remote invoice not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Write(pdf)
}
