package services

import (
	"context"
	"testing"

	"github.com/silasdani/bullet-services-sub001/internal/freshbooks"
	"github.com/silasdani/bullet-services-sub001/internal/fsm"
	"github.com/silasdani/bullet-services-sub001/internal/models"
)

type fakeSyncGateway struct {
	invoicePages [][]freshbooks.Invoice
	listCalls    int
	single       *freshbooks.Invoice
	singleErr    error
}

func (f *fakeSyncGateway) GetInvoice(ctx context.Context, id int64) (*freshbooks.Invoice, error) {
	return f.single, f.singleErr
}

func (f *fakeSyncGateway) ListInvoices(ctx context.Context, page, perPage int) ([]freshbooks.Invoice, int, error) {
	f.listCalls++
	return f.invoicePages[page-1], len(f.invoicePages), nil
}

func (f *fakeSyncGateway) ListClients(ctx context.Context, page, perPage int) ([]freshbooks.Client, int, error) {
	return nil, 1, nil
}

func (f *fakeSyncGateway) ListPayments(ctx context.Context, page, perPage int) ([]freshbooks.Payment, int, error) {
	return nil, 1, nil
}

type fakeLinker struct {
	byReference map[string]int
}

func (f *fakeLinker) IDByWorkOrderReference(ctx context.Context, reference string) (int, error) {
	if id, ok := f.byReference[reference]; ok {
		return id, nil
	}
	return 0, models.ErrInvoiceNotFound
}

func newSyncService(gateway SyncGateway, mirrors MirrorStore, linker InvoiceLinker) *FreshbooksSyncService {
	return &FreshbooksSyncService{
		Gateway:  gateway,
		Invoices: linker,
		Mirrors:  mirrors,
		Logger:   testLogger(),
	}
}

func TestSyncAllInvoicesPagesThrough(t *testing.T) {
	gateway := &fakeSyncGateway{invoicePages: [][]freshbooks.Invoice{
		{{ID: 1, Status: 2, Amount: 10, Outstanding: 10}, {ID: 2, Status: 4, Amount: 20}},
		{{ID: 3, Status: 1, Amount: 30, Outstanding: 30}},
		{{ID: 4, Status: 3, Amount: 40, Outstanding: 40}},
	}}
	mirrors := &fakeMirrorStore{}

	synced, err := newSyncService(gateway, mirrors, &fakeLinker{}).SyncAll(context.Background(), ResourceInvoices)
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if gateway.listCalls != 3 {
		t.Errorf("list calls = %d; want 3", gateway.listCalls)
	}
	if synced != 4 {
		t.Errorf("synced = %d; want 4", synced)
	}
	if len(mirrors.upserted) != 4 {
		t.Errorf("upserts = %d; want 4", len(mirrors.upserted))
	}
}

func TestSyncNormalizesStatusAndClampsOutstanding(t *testing.T) {
	gateway := &fakeSyncGateway{invoicePages: [][]freshbooks.Invoice{
		{{ID: 1, Status: 2, Amount: 100, Outstanding: 150}},
	}}
	mirrors := &fakeMirrorStore{}

	if _, err := newSyncService(gateway, mirrors, &fakeLinker{}).SyncAll(context.Background(), ResourceInvoices); err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	m := mirrors.upserted[0]
	if m.Status != fsm.StatusSent {
		t.Errorf("status = %q; want %q", m.Status, fsm.StatusSent)
	}
	if m.AmountOutstanding != 100 {
		t.Errorf("outstanding = %v; want clamped to 100", m.AmountOutstanding)
	}
}

func TestSyncLinksMirrorByReference(t *testing.T) {
	gateway := &fakeSyncGateway{invoicePages: [][]freshbooks.Invoice{
		{
			{ID: 1, Number: "WO-7", Status: 2},
			{ID: 2, Number: "UNKNOWN", Status: 2},
		},
	}}
	mirrors := &fakeMirrorStore{}
	linker := &fakeLinker{byReference: map[string]int{"WO-7": 42}}

	if _, err := newSyncService(gateway, mirrors, linker).SyncAll(context.Background(), ResourceInvoices); err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if got := mirrors.upserted[0].InvoiceID; got != 42 {
		t.Errorf("linked invoice id = %d; want 42", got)
	}
	if got := mirrors.upserted[1].InvoiceID; got != 0 {
		t.Errorf("unmatched remote linked to %d; want unlinked", got)
	}
}

func TestSyncOneLeavesMirrorFrozenOn404(t *testing.T) {
	gateway := &fakeSyncGateway{single: nil}
	mirrors := &fakeMirrorStore{}

	if err := newSyncService(gateway, mirrors, &fakeLinker{}).SyncOne(context.Background(), 555); err != nil {
		t.Fatalf("SyncOne: %v", err)
	}
	if len(mirrors.upserted) != 0 {
		t.Errorf("upserts = %d; want 0 (mirror frozen)", len(mirrors.upserted))
	}
}

func TestSyncAllRejectsUnknownResource(t *testing.T) {
	if _, err := newSyncService(&fakeSyncGateway{}, &fakeMirrorStore{}, &fakeLinker{}).SyncAll(context.Background(), "expenses"); err == nil {
		t.Fatal("expected error for unknown resource")
	}
}
