package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

type WorkSessionRepository struct {
	DB *sql.DB
}

// CheckIn inserts a session after verifying, under a row lock on the user,
// that no active session exists. Locking the user row serializes concurrent
// check-in attempts for the same user.
func (r *WorkSessionRepository) CheckIn(ctx context.Context, s models.WorkSession) (models.WorkSession, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.WorkSession{}, err
	}
	defer tx.Rollback()

	var locked int
	err = tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, s.UserID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WorkSession{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.WorkSession{}, err
	}

	var activeID int
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM work_sessions WHERE user_id = $1 AND checked_out_at IS NULL LIMIT 1`,
		s.UserID).Scan(&activeID)
	if err == nil {
		return models.WorkSession{}, models.ErrActiveSessionExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.WorkSession{}, err
	}

	const q = `
INSERT INTO work_sessions (user_id, work_order_id, checked_in_at, in_lat, in_lon, in_address)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	err = tx.QueryRowContext(ctx, q,
		s.UserID, s.WorkOrderID, s.CheckedInAt, s.InLat, s.InLon, s.InAddress).Scan(&s.ID)
	if err != nil {
		return models.WorkSession{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.WorkSession{}, err
	}
	return s, nil
}

func (r *WorkSessionRepository) ActiveByUser(ctx context.Context, userID int) (models.WorkSession, error) {
	const q = `
SELECT id, user_id, work_order_id, checked_in_at, checked_out_at,
       in_lat, in_lon, in_address, out_lat, out_lon, out_address, hours_worked
FROM work_sessions WHERE user_id = $1 AND checked_out_at IS NULL LIMIT 1`
	var s models.WorkSession
	var outAddress sql.NullString
	err := r.DB.QueryRowContext(ctx, q, userID).Scan(
		&s.ID, &s.UserID, &s.WorkOrderID, &s.CheckedInAt, &s.CheckedOutAt,
		&s.InLat, &s.InLon, &s.InAddress, &s.OutLat, &s.OutLon, &outAddress, &s.HoursWorked,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WorkSession{}, models.ErrNoActiveSession
	}
	if err != nil {
		return models.WorkSession{}, err
	}
	s.OutAddress = outAddress.String
	return s, nil
}

// Close stamps the check-out on a still-open session.
func (r *WorkSessionRepository) Close(ctx context.Context, s models.WorkSession) error {
	const q = `
UPDATE work_sessions
SET checked_out_at = $1, out_lat = $2, out_lon = $3, out_address = $4, hours_worked = $5
WHERE id = $6 AND checked_out_at IS NULL`
	res, err := r.DB.ExecContext(ctx, q,
		s.CheckedOutAt, s.OutLat, s.OutLon, s.OutAddress, s.HoursWorked, s.ID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrNoActiveSession
	}
	return nil
}

// Timesheet lists closed sessions for a user inside a period.
func (r *WorkSessionRepository) Timesheet(ctx context.Context, userID int, from, to time.Time) ([]models.TimesheetEntry, error) {
	const q = `
SELECT s.work_order_id, w.reference, s.checked_in_at, s.checked_out_at, s.hours_worked
FROM work_sessions s
JOIN work_orders w ON w.id = s.work_order_id
WHERE s.user_id = $1 AND s.checked_out_at IS NOT NULL
  AND s.checked_in_at >= $2 AND s.checked_in_at < $3
ORDER BY s.checked_in_at`
	rows, err := r.DB.QueryContext(ctx, q, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.TimesheetEntry{}
	for rows.Next() {
		var e models.TimesheetEntry
		if err := rows.Scan(&e.WorkOrderID, &e.Reference, &e.CheckedInAt, &e.CheckedOutAt, &e.HoursWorked); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
