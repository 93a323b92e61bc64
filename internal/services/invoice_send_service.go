package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/silasdani/bullet-services-sub001/internal/fsm"
	"github.com/silasdani/bullet-services-sub001/internal/models"
)

// InvoiceSendService emails an invoice to the client through the accounting
// platform and moves it into the sent state.
type InvoiceSendService struct {
	Invoices   InvoiceStore
	Mirrors    MirrorStore
	WorkOrders WorkOrderStore
	Gateway    Gateway
	Mailer     Mailer
	Events     *EventDispatcher
	Logger     *slog.Logger
}

func (s *InvoiceSendService) Run(ctx context.Context, invoiceID int) models.Result {
	inv, mirror, fail := loadInvoiceAndMirror(ctx, s.Invoices, s.Mirrors, invoiceID)
	if fail != nil {
		return *fail
	}

	if !fsm.CanTransition(inv.Status, fsm.StatusSent) {
		return models.Fail(fmt.Sprintf("cannot send an invoice in status %q", inv.Status))
	}

	order, err := s.WorkOrders.GetByID(ctx, inv.WorkOrderID)
	if err != nil {
		return failResult(s.Logger, ActionSend, invoiceID, err)
	}
	if order.ClientEmail == "" {
		return models.Fail("work order has no client email")
	}

	subject := fmt.Sprintf("Invoice for %s", order.Reference)
	message := fmt.Sprintf("Please find attached the invoice for the window repair work at %s.", order.Reference)
	if err := s.Gateway.SendInvoiceByEmail(ctx, mirror.FreshbooksID, order.ClientEmail, subject, message); err != nil {
		return failResult(s.Logger, ActionSend, invoiceID, err)
	}

	if err := s.Invoices.ApplyStatus(ctx, invoiceID, inv.Status, fsm.StatusSent); err != nil {
		return failResult(s.Logger, ActionSend, invoiceID, err)
	}
	if err := s.Mirrors.UpdateStatus(ctx, mirror.FreshbooksID, fsm.StatusSent); err != nil {
		return failResult(s.Logger, ActionSend, invoiceID, err)
	}
	if err := s.Invoices.SetFinalStatus(ctx, invoiceID, fsm.StatusSent); err != nil {
		s.Logger.Error("set final status", "invoice_id", invoiceID, "err", err)
	}

	result := models.Ok("invoice sent")

	// Courtesy confirmation straight from us; the accounting platform owns
	// the invoice email itself. Never rolls back the transition.
	if s.Mailer != nil {
		html := fmt.Sprintf("<p>Your invoice for %s is on its way to %s.</p>", order.Reference, order.ClientEmail)
		text := fmt.Sprintf("Your invoice for %s is on its way to %s.", order.Reference, order.ClientEmail)
		if err := s.Mailer.Send(ctx, order.ClientEmail, subject, html, text); err != nil {
			s.Logger.Error("send confirmation email", "invoice_id", invoiceID, "err", err)
			result = result.SoftFail("confirmation email could not be sent")
		}
	}

	if s.Events != nil {
		s.Events.Publish(InvoiceEvent{
			InvoiceID:    invoiceID,
			FreshbooksID: mirror.FreshbooksID,
			Action:       ActionSend,
			FromStatus:   inv.Status,
			ToStatus:     fsm.StatusSent,
			OccurredAt:   timeNow(),
		})
	}
	return result
}
