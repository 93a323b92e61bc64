package repositories

import (
	"context"
	"database/sql"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

type FreshbooksClientRepository struct {
	DB *sql.DB
}

func (r *FreshbooksClientRepository) Upsert(ctx context.Context, c models.FreshbooksClient) error {
	const q = `
INSERT INTO freshbooks_clients (freshbooks_id, email, organization, raw_data, synced_at)
VALUES ($1, $2, $3, $4, NOW())
ON CONFLICT (freshbooks_id) DO UPDATE SET
  email = EXCLUDED.email,
  organization = EXCLUDED.organization,
  raw_data = EXCLUDED.raw_data,
  synced_at = NOW()`
	_, err := r.DB.ExecContext(ctx, q, c.FreshbooksID, c.Email, c.Organization, c.RawData)
	return err
}
