package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/silasdani/bullet-services-sub001/internal/freshbooks"
	"github.com/silasdani/bullet-services-sub001/internal/fsm"
	"github.com/silasdani/bullet-services-sub001/internal/models"
)

// InvoiceVoidService voids an invoice remotely and locally. FreshBooks
// rejects voiding drafts, so the remote status is checked before any
// mutating call goes out.
type InvoiceVoidService struct {
	Invoices InvoiceStore
	Mirrors  MirrorStore
	Gateway  Gateway
	Events   *EventDispatcher
	Logger   *slog.Logger
}

func (s *InvoiceVoidService) Run(ctx context.Context, invoiceID int) models.Result {
	result, _ := s.run(ctx, invoiceID)
	return result
}

// run returns the mirror alongside the result so VoidWithEmail can reuse it.
func (s *InvoiceVoidService) run(ctx context.Context, invoiceID int) (models.Result, models.FreshbooksInvoice) {
	inv, mirror, fail := loadInvoiceAndMirror(ctx, s.Invoices, s.Mirrors, invoiceID)
	if fail != nil {
		return *fail, models.FreshbooksInvoice{}
	}

	if !fsm.CanTransition(inv.Status, fsm.StatusVoided) {
		return models.Fail(fmt.Sprintf("cannot void an invoice in status %q", inv.Status)), mirror
	}

	remote, err := s.Gateway.GetInvoice(ctx, mirror.FreshbooksID)
	if err != nil {
		var apiErr *freshbooks.APIError
		if errors.As(err, &apiErr) && apiErr.InvalidRemoteID() {
			return s.clearStaleMirror(ctx, invoiceID, mirror), mirror
		}
		return failResult(s.Logger, ActionVoid, invoiceID, err), mirror
	}
	if remote == nil {
		return s.clearStaleMirror(ctx, invoiceID, mirror), mirror
	}
	if fsm.Normalize(remote.StatusString()) == fsm.StatusDraft {
		return models.Fail("cannot void a draft invoice"), mirror
	}

	if err := s.Gateway.VoidInvoice(ctx, mirror.FreshbooksID); err != nil {
		return failResult(s.Logger, ActionVoid, invoiceID, err), mirror
	}

	if err := s.Invoices.ApplyStatus(ctx, invoiceID, inv.Status, fsm.StatusVoided); err != nil {
		if errors.Is(err, models.ErrStatusConflict) {
			return models.Fail("invoice status changed concurrently, refresh and retry"), mirror
		}
		return failResult(s.Logger, ActionVoid, invoiceID, err), mirror
	}
	if err := s.Mirrors.UpdateStatus(ctx, mirror.FreshbooksID, fsm.StatusVoided); err != nil {
		return failResult(s.Logger, ActionVoid, invoiceID, err), mirror
	}
	if err := s.Invoices.SetFinalStatus(ctx, invoiceID, fsm.StatusVoided); err != nil {
		s.Logger.Error("set final status", "invoice_id", invoiceID, "err", err)
	}

	if s.Events != nil {
		s.Events.Publish(InvoiceEvent{
			InvoiceID:    invoiceID,
			FreshbooksID: mirror.FreshbooksID,
			Action:       ActionVoid,
			FromStatus:   inv.Status,
			ToStatus:     fsm.StatusVoided,
			OccurredAt:   timeNow(),
		})
	}
	return models.Ok("invoice voided"), mirror
}

// clearStaleMirror drops a mirror whose remote id no longer resolves; the
// next sync pass recreates the link from the authoritative collection.
func (s *InvoiceVoidService) clearStaleMirror(ctx context.Context, invoiceID int, mirror models.FreshbooksInvoice) models.Result {
	s.Logger.Warn("stale remote invoice id, clearing mirror",
		"invoice_id", invoiceID, "freshbooks_id", mirror.FreshbooksID)
	if err := s.Mirrors.Delete(ctx, mirror.ID); err != nil {
		return failResult(s.Logger, ActionVoid, invoiceID, err)
	}
	return models.Fail("remote invoice no longer exists; stale link cleared")
}

// InvoiceVoidWithEmailService voids the invoice and then notifies the
// client by email. The email is a soft side effect of an already-committed
// void: its failure never rolls the void back.
type InvoiceVoidWithEmailService struct {
	Void       *InvoiceVoidService
	WorkOrders WorkOrderStore
	Mailer     Mailer
	Logger     *slog.Logger
}

func (s *InvoiceVoidWithEmailService) Run(ctx context.Context, invoiceID int) models.Result {
	result, mirror := s.Void.run(ctx, invoiceID)
	if !result.Success {
		return result
	}

	inv, err := s.Void.Invoices.GetByID(ctx, invoiceID)
	if err != nil {
		s.Logger.Error("reload invoice after void", "invoice_id", invoiceID, "err", err)
		return result.SoftFail("void email could not be sent")
	}
	order, err := s.WorkOrders.GetByID(ctx, inv.WorkOrderID)
	if err != nil || order.ClientEmail == "" {
		s.Logger.Error("resolve client email after void", "invoice_id", invoiceID, "err", err)
		return result.SoftFail("void email could not be sent")
	}

	subject := fmt.Sprintf("Invoice for %s has been voided", order.Reference)
	html := fmt.Sprintf("<p>The invoice for %s (ref %d) has been voided and no payment is due.</p>", order.Reference, mirror.FreshbooksID)
	text := fmt.Sprintf("The invoice for %s has been voided and no payment is due.", order.Reference)
	if err := s.Mailer.Send(ctx, order.ClientEmail, subject, html, text); err != nil {
		s.Logger.Error("send void email", "invoice_id", invoiceID, "err", err)
		return result.SoftFail("void email could not be sent")
	}

	if err := s.Void.Invoices.SetFinalStatus(ctx, invoiceID, "voided + email sent"); err != nil {
		s.Logger.Error("set final status", "invoice_id", invoiceID, "err", err)
	}
	result.Message = "invoice voided and client notified"
	return result
}
