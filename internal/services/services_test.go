package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/silasdani/bullet-services-sub001/internal/freshbooks"
	"github.com/silasdani/bullet-services-sub001/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeInvoiceStore struct {
	inv         models.Invoice
	getErr      error
	appliedFrom string
	appliedTo   string
	applyErr    error
	finalStatus string
	amountInc   float64
	amountEx    float64
}

func (f *fakeInvoiceStore) GetByID(ctx context.Context, id int) (models.Invoice, error) {
	if f.getErr != nil {
		return models.Invoice{}, f.getErr
	}
	return f.inv, nil
}

func (f *fakeInvoiceStore) ApplyStatus(ctx context.Context, invoiceID int, from, to string) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.appliedFrom, f.appliedTo = from, to
	f.inv.Status = to
	return nil
}

func (f *fakeInvoiceStore) SetFinalStatus(ctx context.Context, invoiceID int, finalStatus string) error {
	f.finalStatus = finalStatus
	return nil
}

func (f *fakeInvoiceStore) UpdateAmounts(ctx context.Context, invoiceID int, incVAT, exVAT float64) error {
	f.amountInc, f.amountEx = incVAT, exVAT
	return nil
}

type fakeMirrorStore struct {
	mirror    models.FreshbooksInvoice
	getErr    error
	upserted  []models.FreshbooksInvoice
	statusSet string
	deletedID int
}

func (f *fakeMirrorStore) GetByInvoiceID(ctx context.Context, invoiceID int) (models.FreshbooksInvoice, error) {
	if f.getErr != nil {
		return models.FreshbooksInvoice{}, f.getErr
	}
	return f.mirror, nil
}

func (f *fakeMirrorStore) Upsert(ctx context.Context, m models.FreshbooksInvoice) error {
	f.upserted = append(f.upserted, m)
	return nil
}

func (f *fakeMirrorStore) UpdateStatus(ctx context.Context, freshbooksID int64, status string) error {
	f.statusSet = status
	return nil
}

func (f *fakeMirrorStore) Delete(ctx context.Context, id int) error {
	f.deletedID = id
	return nil
}

type fakeWorkOrderStore struct {
	order  models.WorkOrder
	getErr error
}

func (f *fakeWorkOrderStore) GetByID(ctx context.Context, id int) (models.WorkOrder, error) {
	if f.getErr != nil {
		return models.WorkOrder{}, f.getErr
	}
	return f.order, nil
}

// fakeGateway mimics the remote accounting API in memory. Pushing lines
// recomputes the remote total the way the real platform does.
type fakeGateway struct {
	remote     *freshbooks.Invoice
	getErr     error
	updateErr  error
	getCalls   int
	updates    []map[string]any
	lineSets   [][]freshbooks.Line
	voidCalls  int
	emailCalls int
	emailTo    string
}

func (f *fakeGateway) GetInvoice(ctx context.Context, id int64) (*freshbooks.Invoice, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.remote, nil
}

func (f *fakeGateway) UpdateInvoice(ctx context.Context, id int64, fields map[string]any) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, fields)
	return nil
}

func (f *fakeGateway) UpdateInvoiceLines(ctx context.Context, id int64, lines []freshbooks.Line) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.lineSets = append(f.lineSets, lines)
	if f.remote != nil {
		f.remote.Lines = lines
		var total float64
		for _, l := range lines {
			total += l.UnitCost * l.Qty
		}
		f.remote.Amount = total
		f.remote.Outstanding = total
	}
	return nil
}

func (f *fakeGateway) VoidInvoice(ctx context.Context, id int64) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.voidCalls++
	return nil
}

func (f *fakeGateway) SendInvoiceByEmail(ctx context.Context, id int64, email, subject, message string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.emailCalls++
	f.emailTo = email
	return nil
}

// mutatingCalls counts gateway calls that change remote state.
func (f *fakeGateway) mutatingCalls() int {
	return len(f.updates) + len(f.lineSets) + f.voidCalls + f.emailCalls
}

type fakeMailer struct {
	sent    int
	lastTo  string
	sendErr error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent++
	f.lastTo = to
	return nil
}
