package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/silasdani/bullet-services-sub001/internal/fsm"
	"github.com/silasdani/bullet-services-sub001/internal/models"
)

// InvoiceMarkPaidService records an out-of-band payment (bank transfer,
// cheque) against the remote invoice and settles the local records.
type InvoiceMarkPaidService struct {
	Invoices InvoiceStore
	Mirrors  MirrorStore
	Gateway  Gateway
	Events   *EventDispatcher
	Logger   *slog.Logger
}

func (s *InvoiceMarkPaidService) Run(ctx context.Context, invoiceID int) models.Result {
	inv, mirror, fail := loadInvoiceAndMirror(ctx, s.Invoices, s.Mirrors, invoiceID)
	if fail != nil {
		return *fail
	}

	if !fsm.CanTransition(inv.Status, fsm.StatusPaid) {
		return models.Fail(fmt.Sprintf("cannot mark an invoice in status %q as paid", inv.Status))
	}

	if err := s.Gateway.UpdateInvoice(ctx, mirror.FreshbooksID, map[string]any{"action_mark_as_paid": true}); err != nil {
		return failResult(s.Logger, ActionMarkPaid, invoiceID, err)
	}

	if err := s.Invoices.ApplyStatus(ctx, invoiceID, inv.Status, fsm.StatusPaid); err != nil {
		if errors.Is(err, models.ErrStatusConflict) {
			return models.Fail("invoice status changed concurrently, refresh and retry")
		}
		return failResult(s.Logger, ActionMarkPaid, invoiceID, err)
	}

	mirror.Status = fsm.StatusPaid
	mirror.AmountOutstanding = 0
	if err := s.Mirrors.Upsert(ctx, mirror); err != nil {
		return failResult(s.Logger, ActionMarkPaid, invoiceID, err)
	}
	if err := s.Invoices.SetFinalStatus(ctx, invoiceID, fsm.StatusPaid); err != nil {
		s.Logger.Error("set final status", "invoice_id", invoiceID, "err", err)
	}

	if s.Events != nil {
		s.Events.Publish(InvoiceEvent{
			InvoiceID:    invoiceID,
			FreshbooksID: mirror.FreshbooksID,
			Action:       ActionMarkPaid,
			FromStatus:   inv.Status,
			ToStatus:     fsm.StatusPaid,
			OccurredAt:   timeNow(),
		})
	}
	return models.Ok("invoice marked as paid")
}
