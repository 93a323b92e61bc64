package services

import (
	"context"
	"testing"

	"github.com/silasdani/bullet-services-sub001/internal/freshbooks"
	"github.com/silasdani/bullet-services-sub001/internal/fsm"
	"github.com/silasdani/bullet-services-sub001/internal/models"
)

func newDiscountService(invoices *fakeInvoiceStore, mirrors *fakeMirrorStore, gateway *fakeGateway) *InvoiceApplyDiscountService {
	return &InvoiceApplyDiscountService{
		Invoices: invoices,
		Mirrors:  mirrors,
		Gateway:  gateway,
		Logger:   testLogger(),
	}
}

func discountLines(lines []freshbooks.Line) []freshbooks.Line {
	var out []freshbooks.Line
	for _, l := range lines {
		if l.Name == DiscountLineName {
			out = append(out, l)
		}
	}
	return out
}

func TestApplyDiscountAddsSingleLine(t *testing.T) {
	invoices := &fakeInvoiceStore{inv: models.Invoice{ID: 1, Status: fsm.StatusSent}}
	mirrors := &fakeMirrorStore{mirror: models.FreshbooksInvoice{ID: 10, InvoiceID: 1, FreshbooksID: 555}}
	gateway := &fakeGateway{remote: &freshbooks.Invoice{
		ID:     555,
		Status: 2,
		Amount: 200,
		Lines: []freshbooks.Line{
			{Name: "Window repair", UnitCost: 150, Qty: 1},
			{Name: "Callout", UnitCost: 50, Qty: 1},
		},
	}}

	result := newDiscountService(invoices, mirrors, gateway).Run(context.Background(), 1)
	if !result.Success {
		t.Fatalf("Run failed: %+v", result)
	}
	if len(gateway.lineSets) != 1 {
		t.Fatalf("line pushes = %d; want 1", len(gateway.lineSets))
	}

	discounts := discountLines(gateway.remote.Lines)
	if len(discounts) != 1 {
		t.Fatalf("discount lines = %d; want 1", len(discounts))
	}
	if got := discounts[0].UnitCost; got != -20 {
		t.Errorf("discount unit cost = %v; want -20 (10%% of 200)", got)
	}
	if invoices.amountInc != 180 {
		t.Errorf("cached inc-VAT amount = %v; want 180", invoices.amountInc)
	}
	if invoices.amountEx != models.ExVAT(180) {
		t.Errorf("cached ex-VAT amount = %v; want %v", invoices.amountEx, models.ExVAT(180))
	}
}

func TestApplyDiscountIsIdempotent(t *testing.T) {
	invoices := &fakeInvoiceStore{inv: models.Invoice{ID: 1, Status: fsm.StatusSent}}
	mirrors := &fakeMirrorStore{mirror: models.FreshbooksInvoice{ID: 10, InvoiceID: 1, FreshbooksID: 555}}
	gateway := &fakeGateway{remote: &freshbooks.Invoice{
		ID:     555,
		Status: 2,
		Amount: 100,
		Lines:  []freshbooks.Line{{Name: "Window repair", UnitCost: 100, Qty: 1}},
	}}
	svc := newDiscountService(invoices, mirrors, gateway)

	for run := 1; run <= 2; run++ {
		if result := svc.Run(context.Background(), 1); !result.Success {
			t.Fatalf("run %d failed: %+v", run, result)
		}
	}

	discounts := discountLines(gateway.remote.Lines)
	if len(discounts) != 1 {
		t.Fatalf("discount lines after two runs = %d; want 1", len(discounts))
	}
	// Second run strips the old line first, so the base stays 100 and the
	// discount does not compound.
	if got := discounts[0].UnitCost; got != -10 {
		t.Errorf("discount unit cost after two runs = %v; want -10", got)
	}
}

func TestApplyDiscountLeavesClientDiscountLookalikes(t *testing.T) {
	invoices := &fakeInvoiceStore{inv: models.Invoice{ID: 1, Status: fsm.StatusSent}}
	mirrors := &fakeMirrorStore{mirror: models.FreshbooksInvoice{ID: 10, InvoiceID: 1, FreshbooksID: 555}}
	gateway := &fakeGateway{remote: &freshbooks.Invoice{
		ID:     555,
		Status: 2,
		Lines: []freshbooks.Line{
			{Name: "Discount Consulting", UnitCost: 100, Qty: 1},
		},
	}}

	if result := newDiscountService(invoices, mirrors, gateway).Run(context.Background(), 1); !result.Success {
		t.Fatalf("Run failed: %+v", result)
	}

	var kept bool
	for _, l := range gateway.remote.Lines {
		if l.Name == "Discount Consulting" {
			kept = true
		}
	}
	if !kept {
		t.Error("client line containing the word Discount was stripped")
	}
}

func TestApplyDiscountRefusesZeroTotal(t *testing.T) {
	invoices := &fakeInvoiceStore{inv: models.Invoice{ID: 1, Status: fsm.StatusSent}}
	mirrors := &fakeMirrorStore{mirror: models.FreshbooksInvoice{ID: 10, InvoiceID: 1, FreshbooksID: 555}}
	gateway := &fakeGateway{remote: &freshbooks.Invoice{ID: 555, Status: 2}}

	result := newDiscountService(invoices, mirrors, gateway).Run(context.Background(), 1)
	if result.Success {
		t.Fatal("expected failure for zero-total invoice")
	}
	if result.Message != "cannot discount a zero-total invoice" {
		t.Errorf("message = %q", result.Message)
	}
	if len(gateway.lineSets) != 0 {
		t.Errorf("line pushes = %d; want 0", len(gateway.lineSets))
	}
}

func TestApplyDiscountRefusesTerminalInvoice(t *testing.T) {
	invoices := &fakeInvoiceStore{inv: models.Invoice{ID: 1, Status: fsm.StatusPaid}}
	mirrors := &fakeMirrorStore{mirror: models.FreshbooksInvoice{ID: 10, InvoiceID: 1, FreshbooksID: 555}}
	gateway := &fakeGateway{remote: &freshbooks.Invoice{ID: 555, Status: 4}}

	result := newDiscountService(invoices, mirrors, gateway).Run(context.Background(), 1)
	if result.Success {
		t.Fatal("expected failure for settled invoice")
	}
	if gateway.mutatingCalls() != 0 {
		t.Errorf("mutating gateway calls = %d; want 0", gateway.mutatingCalls())
	}
}
