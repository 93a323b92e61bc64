package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

type BuildingRepository struct {
	DB *sql.DB
}

func (r *BuildingRepository) GetByID(ctx context.Context, id int) (models.Building, error) {
	const q = `SELECT id, name, address, lat, lon, created_at, updated_at FROM buildings WHERE id = $1`
	var b models.Building
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.Name, &b.Address, &b.Lat, &b.Lon, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Building{}, models.ErrBuildingNotFound
	}
	if err != nil {
		return models.Building{}, err
	}
	return b, nil
}

// MissingCoordinates lists buildings the geocode sweep still has to fill in.
func (r *BuildingRepository) MissingCoordinates(ctx context.Context, limit int) ([]models.Building, error) {
	const q = `
SELECT id, name, address, lat, lon, created_at, updated_at
FROM buildings
WHERE (lat IS NULL OR lon IS NULL) AND address <> ''
ORDER BY id LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buildings := []models.Building{}
	for rows.Next() {
		var b models.Building
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.Lat, &b.Lon, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		buildings = append(buildings, b)
	}
	return buildings, rows.Err()
}

func (r *BuildingRepository) UpdateCoordinates(ctx context.Context, id int, lat, lon float64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE buildings SET lat = $1, lon = $2, updated_at = NOW() WHERE id = $3`,
		lat, lon, id)
	return err
}

// IsAssigned reports whether the user has a building assignment.
func (r *BuildingRepository) IsAssigned(ctx context.Context, userID, buildingID int) (bool, error) {
	var x int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM building_assignments WHERE user_id = $1 AND building_id = $2 LIMIT 1`,
		userID, buildingID).Scan(&x)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
