package models

import (
	"encoding/json"
	"time"
)

// Invoice is the local invoice record for a work order. Invoices are never
// hard-deleted; voiding is a terminal status, not removal.
type Invoice struct {
	ID           int       `json:"id"`
	WorkOrderID  int       `json:"work_order_id"`
	Status       string    `json:"status"`
	FinalStatus  string    `json:"final_status"`
	AmountIncVAT float64   `json:"amount_inc_vat"`
	AmountExVAT  float64   `json:"amount_ex_vat"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FreshbooksInvoice mirrors the last-known state of a remote FreshBooks
// invoice. Written only by sync and by action services right after a
// mutating gateway call.
type FreshbooksInvoice struct {
	ID                int             `json:"id"`
	InvoiceID         int             `json:"invoice_id"`
	FreshbooksID      int64           `json:"freshbooks_id"`
	Amount            float64         `json:"amount"`
	AmountOutstanding float64         `json:"amount_outstanding"`
	Status            string          `json:"status"`
	DueDate           *time.Time      `json:"due_date,omitempty"`
	RawData           json.RawMessage `json:"raw_data,omitempty"`
	SyncedAt          time.Time       `json:"synced_at"`
}

// FreshbooksClient mirrors a remote accounting client record.
type FreshbooksClient struct {
	ID           int             `json:"id"`
	FreshbooksID int64           `json:"freshbooks_id"`
	Email        string          `json:"email"`
	Organization string          `json:"organization"`
	RawData      json.RawMessage `json:"raw_data,omitempty"`
	SyncedAt     time.Time       `json:"synced_at"`
}

// FreshbooksPayment mirrors a remote payment record.
type FreshbooksPayment struct {
	ID           int             `json:"id"`
	FreshbooksID int64           `json:"freshbooks_id"`
	InvoiceID    int64           `json:"remote_invoice_id"`
	Amount       float64         `json:"amount"`
	RawData      json.RawMessage `json:"raw_data,omitempty"`
	SyncedAt     time.Time       `json:"synced_at"`
}

// VATRate is the rate applied to all invoice amounts.
const VATRate = 0.20

// ExVAT derives the VAT-exclusive amount from a VAT-inclusive one,
// rounded to 2 decimals.
func ExVAT(incVAT float64) float64 {
	return Round2(incVAT / (1 + VATRate))
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	if v < 0 {
		return -Round2(-v)
	}
	return float64(int64(v*100+0.5)) / 100
}
