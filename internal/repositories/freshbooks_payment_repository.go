package repositories

import (
	"context"
	"database/sql"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

type FreshbooksPaymentRepository struct {
	DB *sql.DB
}

func (r *FreshbooksPaymentRepository) Upsert(ctx context.Context, p models.FreshbooksPayment) error {
	const q = `
INSERT INTO freshbooks_payments (freshbooks_id, remote_invoice_id, amount, raw_data, synced_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (freshbooks_id) DO UPDATE SET
  remote_invoice_id = EXCLUDED.remote_invoice_id,
  amount = EXCLUDED.amount,
  raw_data = EXCLUDED.raw_data,
  synced_at = NOW()`
	_, err := r.DB.ExecContext(ctx, q, p.FreshbooksID, p.InvoiceID, p.Amount, p.RawData)
	return err
}
