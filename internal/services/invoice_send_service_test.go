package services

import (
	"context"
	"testing"

	"github.com/silasdani/bullet-services-sub001/internal/fsm"
	"github.com/silasdani/bullet-services-sub001/internal/models"
)

func newSendService(invoices *fakeInvoiceStore, mirrors *fakeMirrorStore, gateway *fakeGateway, mailer *fakeMailer) *InvoiceSendService {
	return &InvoiceSendService{
		Invoices:   invoices,
		Mirrors:    mirrors,
		WorkOrders: &fakeWorkOrderStore{order: models.WorkOrder{ID: 7, Reference: "WO-7", ClientEmail: "client@example.com"}},
		Gateway:    gateway,
		Mailer:     mailer,
		Logger:     testLogger(),
	}
}

func TestSendInvoice(t *testing.T) {
	invoices := &fakeInvoiceStore{inv: models.Invoice{ID: 1, WorkOrderID: 7, Status: fsm.StatusDraft}}
	mirrors := &fakeMirrorStore{mirror: models.FreshbooksInvoice{ID: 10, InvoiceID: 1, FreshbooksID: 555}}
	gateway := &fakeGateway{}
	mailer := &fakeMailer{}

	result := newSendService(invoices, mirrors, gateway, mailer).Run(context.Background(), 1)
	if !result.Success {
		t.Fatalf("Run failed: %+v", result)
	}
	if gateway.emailCalls != 1 || gateway.emailTo != "client@example.com" {
		t.Errorf("gateway email calls = %d to %q", gateway.emailCalls, gateway.emailTo)
	}
	if invoices.appliedTo != fsm.StatusSent {
		t.Errorf("applied status = %q; want %q", invoices.appliedTo, fsm.StatusSent)
	}
	if mailer.sent != 1 {
		t.Errorf("confirmation emails = %d; want 1", mailer.sent)
	}
}

func TestSendInvoiceSoftFailsOnConfirmationEmail(t *testing.T) {
	invoices := &fakeInvoiceStore{inv: models.Invoice{ID: 1, WorkOrderID: 7, Status: fsm.StatusDraft}}
	mirrors := &fakeMirrorStore{mirror: models.FreshbooksInvoice{ID: 10, InvoiceID: 1, FreshbooksID: 555}}
	gateway := &fakeGateway{}
	mailer := &fakeMailer{sendErr: context.DeadlineExceeded}

	result := newSendService(invoices, mirrors, gateway, mailer).Run(context.Background(), 1)
	if !result.Success {
		t.Fatalf("send should survive a failed confirmation email: %+v", result)
	}
	if len(result.Errors) == 0 {
		t.Error("expected a soft error about the confirmation email")
	}
}

func TestSendInvoiceRefusesTerminalStatus(t *testing.T) {
	invoices := &fakeInvoiceStore{inv: models.Invoice{ID: 1, WorkOrderID: 7, Status: fsm.StatusPaid}}
	mirrors := &fakeMirrorStore{mirror: models.FreshbooksInvoice{ID: 10, InvoiceID: 1, FreshbooksID: 555}}
	gateway := &fakeGateway{}

	result := newSendService(invoices, mirrors, gateway, &fakeMailer{}).Run(context.Background(), 1)
	if result.Success {
		t.Fatal("expected refusal for paid invoice")
	}
	if gateway.mutatingCalls() != 0 {
		t.Errorf("mutating gateway calls = %d; want 0", gateway.mutatingCalls())
	}
}

func TestSendInvoiceRequiresMirror(t *testing.T) {
	invoices := &fakeInvoiceStore{inv: models.Invoice{ID: 1, WorkOrderID: 7, Status: fsm.StatusDraft}}
	mirrors := &fakeMirrorStore{getErr: models.ErrRemoteInvoiceMissing}

	result := newSendService(invoices, mirrors, &fakeGateway{}, &fakeMailer{}).Run(context.Background(), 1)
	if result.Success {
		t.Fatal("expected failure without a remote mirror")
	}
	if result.Message != "no remote invoice" {
		t.Errorf("message = %q", result.Message)
	}
}

func TestMarkPaidSettlesMirror(t *testing.T) {
	invoices := &fakeInvoiceStore{inv: models.Invoice{ID: 1, Status: fsm.StatusViewed}}
	mirrors := &fakeMirrorStore{mirror: models.FreshbooksInvoice{ID: 10, InvoiceID: 1, FreshbooksID: 555, Amount: 120, AmountOutstanding: 120}}
	gateway := &fakeGateway{}

	svc := &InvoiceMarkPaidService{Invoices: invoices, Mirrors: mirrors, Gateway: gateway, Logger: testLogger()}
	result := svc.Run(context.Background(), 1)
	if !result.Success {
		t.Fatalf("Run failed: %+v", result)
	}
	if len(gateway.updates) != 1 {
		t.Fatalf("gateway updates = %d; want 1", len(gateway.updates))
	}
	if v, ok := gateway.updates[0]["action_mark_as_paid"].(bool); !ok || !v {
		t.Errorf("update payload = %v; want action_mark_as_paid=true", gateway.updates[0])
	}
	if len(mirrors.upserted) != 1 {
		t.Fatalf("mirror upserts = %d; want 1", len(mirrors.upserted))
	}
	m := mirrors.upserted[0]
	if m.Status != fsm.StatusPaid || m.AmountOutstanding != 0 {
		t.Errorf("mirror = status %q outstanding %v; want paid with 0 outstanding", m.Status, m.AmountOutstanding)
	}
}

func TestMarkPaidRefusesDraft(t *testing.T) {
	invoices := &fakeInvoiceStore{inv: models.Invoice{ID: 1, Status: fsm.StatusDraft}}
	mirrors := &fakeMirrorStore{mirror: models.FreshbooksInvoice{ID: 10, InvoiceID: 1, FreshbooksID: 555}}
	gateway := &fakeGateway{}

	svc := &InvoiceMarkPaidService{Invoices: invoices, Mirrors: mirrors, Gateway: gateway, Logger: testLogger()}
	if result := svc.Run(context.Background(), 1); result.Success {
		t.Fatal("expected refusal for draft invoice")
	}
	if gateway.mutatingCalls() != 0 {
		t.Errorf("mutating gateway calls = %d; want 0", gateway.mutatingCalls())
	}
}
