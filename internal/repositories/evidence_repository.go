package repositories

import (
	"context"
	"database/sql"
	"time"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

type EvidenceRepository struct {
	DB *sql.DB
}

func (r *EvidenceRepository) Create(ctx context.Context, e models.WorkEvidence) (models.WorkEvidence, error) {
	const q = `
INSERT INTO work_evidences (work_order_id, user_id, image_url, taken_at)
VALUES ($1, $2, $3, $4)
RETURNING id`
	err := r.DB.QueryRowContext(ctx, q, e.WorkOrderID, e.UserID, e.ImageURL, e.TakenAt).Scan(&e.ID)
	if err != nil {
		return models.WorkEvidence{}, err
	}
	return e, nil
}

// CountSince counts photo evidence for a work order taken on or after the
// given time; check-out requires at least one.
func (r *EvidenceRepository) CountSince(ctx context.Context, workOrderID int, since time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM work_evidences WHERE work_order_id = $1 AND taken_at >= $2`,
		workOrderID, since).Scan(&count)
	return count, err
}
