package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/silasdani/bullet-services-sub001/internal/freshbooks"
	"github.com/silasdani/bullet-services-sub001/internal/fsm"
	"github.com/silasdani/bullet-services-sub001/internal/models"
)

// discountRate is the flat goodwill discount applied by the back office.
const discountRate = 0.10

// InvoiceApplyDiscountService rewrites the remote line set with a single
// discount line worth 10% of the non-discount total. Re-running the service
// replaces the previous discount line instead of compounding it.
type InvoiceApplyDiscountService struct {
	Invoices InvoiceStore
	Mirrors  MirrorStore
	Gateway  Gateway
	Events   *EventDispatcher
	Logger   *slog.Logger
}

func (s *InvoiceApplyDiscountService) Run(ctx context.Context, invoiceID int) models.Result {
	inv, mirror, fail := loadInvoiceAndMirror(ctx, s.Invoices, s.Mirrors, invoiceID)
	if fail != nil {
		return *fail
	}

	if fsm.IsTerminal(inv.Status) {
		return models.Fail("cannot discount a settled or voided invoice")
	}

	remote, err := s.Gateway.GetInvoice(ctx, mirror.FreshbooksID)
	if err != nil {
		var apiErr *freshbooks.APIError
		if errors.As(err, &apiErr) && apiErr.InvalidRemoteID() {
			return models.Fail("remote invoice no longer exists")
		}
		return failResult(s.Logger, ActionApplyDiscount, invoiceID, err)
	}
	if remote == nil {
		return models.Fail("remote invoice no longer exists")
	}

	// Strip the previous discount line, if any, before recomputing. Exact
	// name match only: a client line merely containing "Discount" stays.
	lines := make([]freshbooks.Line, 0, len(remote.Lines))
	for _, l := range remote.Lines {
		if l.Name == DiscountLineName {
			continue
		}
		lines = append(lines, l)
	}

	var base float64
	for _, l := range lines {
		base += l.UnitCost * l.Qty
	}
	if base <= 0 {
		return models.Fail("cannot discount a zero-total invoice")
	}

	discount := models.Round2(base * discountRate)
	lines = append(lines, freshbooks.Line{
		Name:        DiscountLineName,
		Description: "Goodwill discount",
		UnitCost:    -discount,
		Qty:         1,
	})

	if err := s.Gateway.UpdateInvoiceLines(ctx, mirror.FreshbooksID, lines); err != nil {
		return failResult(s.Logger, ActionApplyDiscount, invoiceID, err)
	}

	// The gateway owns the post-update total; re-read rather than trusting
	// our own arithmetic for the cached amounts.
	updated, err := s.Gateway.GetInvoice(ctx, mirror.FreshbooksID)
	if err != nil || updated == nil {
		return failResult(s.Logger, ActionApplyDiscount, invoiceID, err)
	}
	if err := s.Invoices.UpdateAmounts(ctx, invoiceID, updated.Amount, models.ExVAT(updated.Amount)); err != nil {
		return failResult(s.Logger, ActionApplyDiscount, invoiceID, err)
	}

	mirror.Amount = updated.Amount
	mirror.AmountOutstanding = updated.Outstanding
	if mirror.AmountOutstanding > mirror.Amount {
		s.Logger.Warn("remote outstanding exceeds amount, clamping",
			"invoice_id", invoiceID, "freshbooks_id", mirror.FreshbooksID)
		mirror.AmountOutstanding = mirror.Amount
	}
	mirror.Status = fsm.Normalize(updated.StatusString())
	if err := s.Mirrors.Upsert(ctx, mirror); err != nil {
		return failResult(s.Logger, ActionApplyDiscount, invoiceID, err)
	}

	if s.Events != nil {
		s.Events.Publish(InvoiceEvent{
			InvoiceID:    invoiceID,
			FreshbooksID: mirror.FreshbooksID,
			Action:       ActionApplyDiscount,
			FromStatus:   inv.Status,
			ToStatus:     inv.Status,
			OccurredAt:   timeNow(),
		})
	}
	return models.Ok("discount applied")
}
