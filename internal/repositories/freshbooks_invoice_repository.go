package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

type FreshbooksInvoiceRepository struct {
	DB *sql.DB
}

func (r *FreshbooksInvoiceRepository) GetByInvoiceID(ctx context.Context, invoiceID int) (models.FreshbooksInvoice, error) {
	const q = `
SELECT id, invoice_id, freshbooks_id, amount, amount_outstanding, status, due_date, raw_data, synced_at
FROM freshbooks_invoices WHERE invoice_id = $1
ORDER BY synced_at DESC LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, q, invoiceID))
}

func (r *FreshbooksInvoiceRepository) GetByFreshbooksID(ctx context.Context, freshbooksID int64) (models.FreshbooksInvoice, error) {
	const q = `
SELECT id, invoice_id, freshbooks_id, amount, amount_outstanding, status, due_date, raw_data, synced_at
FROM freshbooks_invoices WHERE freshbooks_id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, q, freshbooksID))
}

func (r *FreshbooksInvoiceRepository) scanOne(row *sql.Row) (models.FreshbooksInvoice, error) {
	var m models.FreshbooksInvoice
	var invoiceID sql.NullInt64
	err := row.Scan(&m.ID, &invoiceID, &m.FreshbooksID, &m.Amount, &m.AmountOutstanding,
		&m.Status, &m.DueDate, &m.RawData, &m.SyncedAt)
	m.InvoiceID = int(invoiceID.Int64)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FreshbooksInvoice{}, models.ErrRemoteInvoiceMissing
	}
	if err != nil {
		return models.FreshbooksInvoice{}, err
	}
	return m, nil
}

// Upsert overwrites every mirrored field keyed by the remote id. Sync is
// accretive only: rows are created or refreshed here, never pruned.
func (r *FreshbooksInvoiceRepository) Upsert(ctx context.Context, m models.FreshbooksInvoice) error {
	const q = `
INSERT INTO freshbooks_invoices
  (invoice_id, freshbooks_id, amount, amount_outstanding, status, due_date, raw_data, synced_at)
VALUES (NULLIF($1, 0), $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT (freshbooks_id) DO UPDATE SET
  invoice_id = COALESCE(EXCLUDED.invoice_id, freshbooks_invoices.invoice_id),
  amount = EXCLUDED.amount,
  amount_outstanding = EXCLUDED.amount_outstanding,
  status = EXCLUDED.status,
  due_date = EXCLUDED.due_date,
  raw_data = EXCLUDED.raw_data,
  synced_at = NOW()`
	_, err := r.DB.ExecContext(ctx, q,
		m.InvoiceID, m.FreshbooksID, m.Amount, m.AmountOutstanding, m.Status, m.DueDate, m.RawData)
	return err
}

func (r *FreshbooksInvoiceRepository) UpdateStatus(ctx context.Context, freshbooksID int64, status string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE freshbooks_invoices SET status = $1, synced_at = NOW() WHERE freshbooks_id = $2`,
		status, freshbooksID)
	return err
}

// Delete removes a mirror whose remote id no longer resolves upstream
// (self-healing for stale cached ids).
func (r *FreshbooksInvoiceRepository) Delete(ctx context.Context, id int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM freshbooks_invoices WHERE id = $1`, id)
	return err
}
