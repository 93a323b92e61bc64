package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

type WorkOrderRepository struct {
	DB *sql.DB
}

func (r *WorkOrderRepository) GetByID(ctx context.Context, id int) (models.WorkOrder, error) {
	const q = `
SELECT id, reference, client_name, client_email, building_id, status, amount_inc_vat, accepted_at, created_at, updated_at
FROM work_orders WHERE id = $1`
	var w models.WorkOrder
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&w.ID, &w.Reference, &w.ClientName, &w.ClientEmail, &w.BuildingID,
		&w.Status, &w.AmountIncVAT, &w.AcceptedAt, &w.CreatedAt, &w.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WorkOrder{}, models.ErrWorkOrderNotFound
	}
	if err != nil {
		return models.WorkOrder{}, err
	}
	return w, nil
}

// Accept marks the order approved and creates its draft invoice in one
// transaction. A second call is a no-op returning the existing invoice id.
func (r *WorkOrderRepository) Accept(ctx context.Context, id int, now time.Time) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var w models.WorkOrder
	err = tx.QueryRowContext(ctx,
		`SELECT id, status, amount_inc_vat FROM work_orders WHERE id = $1 FOR UPDATE`, id).
		Scan(&w.ID, &w.Status, &w.AmountIncVAT)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrWorkOrderNotFound
	}
	if err != nil {
		return 0, err
	}

	if w.Status == models.WorkOrderApproved {
		var invoiceID int
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM invoices WHERE work_order_id = $1 ORDER BY id LIMIT 1`, id).Scan(&invoiceID)
		if err != nil {
			return 0, err
		}
		return invoiceID, tx.Commit()
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE work_orders SET status = $1, accepted_at = $2, updated_at = NOW() WHERE id = $3`,
		models.WorkOrderApproved, now, id)
	if err != nil {
		return 0, err
	}

	var invoiceID int
	err = tx.QueryRowContext(ctx, `
INSERT INTO invoices (work_order_id, status, final_status, amount_inc_vat, amount_ex_vat, created_at, updated_at)
VALUES ($1, 'draft', 'draft', $2, $3, NOW(), NOW())
RETURNING id`,
		id, w.AmountIncVAT, models.ExVAT(w.AmountIncVAT)).Scan(&invoiceID)
	if err != nil {
		return 0, err
	}
	return invoiceID, tx.Commit()
}
