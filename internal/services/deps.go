package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/silasdani/bullet-services-sub001/internal/freshbooks"
	"github.com/silasdani/bullet-services-sub001/internal/models"
)

// Gateway is the slice of the accounting client the invoice actions use.
type Gateway interface {
	GetInvoice(ctx context.Context, id int64) (*freshbooks.Invoice, error)
	UpdateInvoice(ctx context.Context, id int64, fields map[string]any) error
	UpdateInvoiceLines(ctx context.Context, id int64, lines []freshbooks.Line) error
	VoidInvoice(ctx context.Context, id int64) error
	SendInvoiceByEmail(ctx context.Context, id int64, email, subject, message string) error
}

// InvoiceStore is the slice of InvoiceRepository the services depend on.
type InvoiceStore interface {
	GetByID(ctx context.Context, id int) (models.Invoice, error)
	ApplyStatus(ctx context.Context, invoiceID int, from, to string) error
	SetFinalStatus(ctx context.Context, invoiceID int, finalStatus string) error
	UpdateAmounts(ctx context.Context, invoiceID int, incVAT, exVAT float64) error
}

// MirrorStore is the slice of FreshbooksInvoiceRepository the services use.
type MirrorStore interface {
	GetByInvoiceID(ctx context.Context, invoiceID int) (models.FreshbooksInvoice, error)
	Upsert(ctx context.Context, m models.FreshbooksInvoice) error
	UpdateStatus(ctx context.Context, freshbooksID int64, status string) error
	Delete(ctx context.Context, id int) error
}

// WorkOrderStore resolves the work order an invoice belongs to.
type WorkOrderStore interface {
	GetByID(ctx context.Context, id int) (models.WorkOrder, error)
}

// Mailer sends a client-facing email. Transport lives behind the contract.
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// Pusher sends one push notification to a device token.
type Pusher interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// failResult logs a gateway/internal failure and converts it into a Result;
// action services never let a remote exception escape unhandled.
func failResult(logger *slog.Logger, action string, invoiceID int, err error) models.Result {
	logger.Error("invoice action failed", "action", action, "invoice_id", invoiceID, "err", err)
	return models.Fail(fmt.Sprintf("%s failed: %v", action, err))
}

// clock indirection so tests can pin time.
var timeNow = time.Now
