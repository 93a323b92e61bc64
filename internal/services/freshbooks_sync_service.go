package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/silasdani/bullet-services-sub001/internal/freshbooks"
	"github.com/silasdani/bullet-services-sub001/internal/fsm"
	"github.com/silasdani/bullet-services-sub001/internal/models"
)

// syncPerPage is the page size used against the remote collections.
const syncPerPage = 100

// Syncable resource names accepted by SyncAll.
const (
	ResourceInvoices = "invoices"
	ResourceClients  = "clients"
	ResourcePayments = "payments"
)

// SyncGateway is the read-only slice of the accounting client the sync
// service pages through.
type SyncGateway interface {
	GetInvoice(ctx context.Context, id int64) (*freshbooks.Invoice, error)
	ListInvoices(ctx context.Context, page, perPage int) ([]freshbooks.Invoice, int, error)
	ListClients(ctx context.Context, page, perPage int) ([]freshbooks.Client, int, error)
	ListPayments(ctx context.Context, page, perPage int) ([]freshbooks.Payment, int, error)
}

// InvoiceLinker resolves a local invoice from a remote invoice number.
type InvoiceLinker interface {
	IDByWorkOrderReference(ctx context.Context, reference string) (int, error)
}

// ClientMirrorStore persists remote client snapshots.
type ClientMirrorStore interface {
	Upsert(ctx context.Context, c models.FreshbooksClient) error
}

// PaymentMirrorStore persists remote payment snapshots.
type PaymentMirrorStore interface {
	Upsert(ctx context.Context, p models.FreshbooksPayment) error
}

// FreshbooksSyncService pulls remote accounting state into the local
// mirror tables. Sync never mutates remote state and never deletes local
// mirrors; the action services own mutation.
type FreshbooksSyncService struct {
	Gateway  SyncGateway
	Invoices InvoiceLinker
	Mirrors  MirrorStore
	Clients  ClientMirrorStore
	Payments PaymentMirrorStore
	Logger   *slog.Logger
}

// SyncAll pages through one remote collection and upserts every record.
// Returns the number of records synced.
func (s *FreshbooksSyncService) SyncAll(ctx context.Context, resource string) (int, error) {
	switch resource {
	case ResourceInvoices:
		return s.syncInvoices(ctx)
	case ResourceClients:
		return s.syncClients(ctx)
	case ResourcePayments:
		return s.syncPayments(ctx)
	}
	return 0, fmt.Errorf("sync: unknown resource %q", resource)
}

func (s *FreshbooksSyncService) syncInvoices(ctx context.Context) (int, error) {
	var synced int
	for page, pages := 1, 1; page <= pages; page++ {
		items, totalPages, err := s.Gateway.ListInvoices(ctx, page, syncPerPage)
		if err != nil {
			return synced, fmt.Errorf("sync invoices page %d: %w", page, err)
		}
		pages = totalPages
		for _, remote := range items {
			if err := s.upsertInvoiceMirror(ctx, remote); err != nil {
				return synced, err
			}
			synced++
		}
	}
	s.Logger.Info("invoice sync complete", "synced", synced)
	return synced, nil
}

func (s *FreshbooksSyncService) syncClients(ctx context.Context) (int, error) {
	var synced int
	for page, pages := 1, 1; page <= pages; page++ {
		items, totalPages, err := s.Gateway.ListClients(ctx, page, syncPerPage)
		if err != nil {
			return synced, fmt.Errorf("sync clients page %d: %w", page, err)
		}
		pages = totalPages
		for _, remote := range items {
			raw, _ := json.Marshal(remote)
			err := s.Clients.Upsert(ctx, models.FreshbooksClient{
				FreshbooksID: remote.ID,
				Email:        remote.Email,
				Organization: remote.Organization,
				RawData:      raw,
			})
			if err != nil {
				return synced, err
			}
			synced++
		}
	}
	s.Logger.Info("client sync complete", "synced", synced)
	return synced, nil
}

func (s *FreshbooksSyncService) syncPayments(ctx context.Context) (int, error) {
	var synced int
	for page, pages := 1, 1; page <= pages; page++ {
		items, totalPages, err := s.Gateway.ListPayments(ctx, page, syncPerPage)
		if err != nil {
			return synced, fmt.Errorf("sync payments page %d: %w", page, err)
		}
		pages = totalPages
		for _, remote := range items {
			raw, _ := json.Marshal(remote)
			err := s.Payments.Upsert(ctx, models.FreshbooksPayment{
				FreshbooksID: remote.ID,
				InvoiceID:    remote.InvoiceID,
				Amount:       remote.Amount,
				RawData:      raw,
			})
			if err != nil {
				return synced, err
			}
			synced++
		}
	}
	s.Logger.Info("payment sync complete", "synced", synced)
	return synced, nil
}

// SyncOne refreshes a single invoice mirror from the remote. A remote 404
// leaves the mirror frozen at its last-known state; the missing record is
// logged, not treated as a delete.
func (s *FreshbooksSyncService) SyncOne(ctx context.Context, freshbooksID int64) error {
	remote, err := s.Gateway.GetInvoice(ctx, freshbooksID)
	if err != nil {
		return fmt.Errorf("sync one %d: %w", freshbooksID, err)
	}
	if remote == nil {
		s.Logger.Warn("remote invoice missing, mirror left frozen", "freshbooks_id", freshbooksID)
		return nil
	}
	return s.upsertInvoiceMirror(ctx, *remote)
}

func (s *FreshbooksSyncService) upsertInvoiceMirror(ctx context.Context, remote freshbooks.Invoice) error {
	mirror := models.FreshbooksInvoice{
		FreshbooksID:      remote.ID,
		Amount:            remote.Amount,
		AmountOutstanding: remote.Outstanding,
		Status:            fsm.Normalize(remote.StatusString()),
	}
	if mirror.AmountOutstanding > mirror.Amount {
		s.Logger.Warn("remote outstanding exceeds amount, clamping",
			"freshbooks_id", remote.ID,
			"amount", remote.Amount, "outstanding", remote.Outstanding)
		mirror.AmountOutstanding = mirror.Amount
	}
	if due, err := time.Parse("2006-01-02", remote.DueDate); err == nil {
		mirror.DueDate = &due
	}
	raw, err := json.Marshal(remote)
	if err != nil {
		return fmt.Errorf("sync: marshal invoice %d: %w", remote.ID, err)
	}
	mirror.RawData = raw

	// Link the mirror to a local invoice by matching the remote invoice
	// number against the work order reference. Unmatched remotes are still
	// mirrored so back-office reporting sees the full remote ledger.
	if remote.Number != "" {
		id, err := s.Invoices.IDByWorkOrderReference(ctx, remote.Number)
		switch {
		case err == nil:
			mirror.InvoiceID = id
		case errors.Is(err, models.ErrInvoiceNotFound):
			// remote-only invoice, keep unlinked
		default:
			return fmt.Errorf("sync: link invoice %d: %w", remote.ID, err)
		}
	}
	return s.Mirrors.Upsert(ctx, mirror)
}
