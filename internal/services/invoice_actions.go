package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

// Action names used in Result messages, logs and events.
const (
	ActionSend          = "send"
	ActionVoid          = "void"
	ActionVoidWithEmail = "void_with_email"
	ActionMarkPaid      = "mark_paid"
	ActionApplyDiscount = "apply_discount"
)

// DiscountLineName is the exact line name the discount service owns. Lines
// are stripped only on exact equality so a client line that merely contains
// the word (e.g. "Discount Consulting") is left alone.
const DiscountLineName = "Discount"

// loadInvoiceAndMirror resolves the invoice and its authoritative remote
// mirror. A missing mirror is the canonical "no remote invoice" failure
// every action shares.
func loadInvoiceAndMirror(ctx context.Context, invoices InvoiceStore, mirrors MirrorStore, invoiceID int) (models.Invoice, models.FreshbooksInvoice, *models.Result) {
	inv, err := invoices.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, models.ErrInvoiceNotFound) {
			res := models.Fail("invoice not found")
			return models.Invoice{}, models.FreshbooksInvoice{}, &res
		}
		res := models.Fail(fmt.Sprintf("load invoice: %v", err))
		return models.Invoice{}, models.FreshbooksInvoice{}, &res
	}
	mirror, err := mirrors.GetByInvoiceID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, models.ErrRemoteInvoiceMissing) {
			res := models.Fail("no remote invoice")
			return models.Invoice{}, models.FreshbooksInvoice{}, &res
		}
		res := models.Fail(fmt.Sprintf("load remote invoice: %v", err))
		return models.Invoice{}, models.FreshbooksInvoice{}, &res
	}
	return inv, mirror, nil
}
