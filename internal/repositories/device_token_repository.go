package repositories

import (
	"context"
	"database/sql"
)

type DeviceTokenRepository struct {
	DB *sql.DB
}

func (r *DeviceTokenRepository) Insert(ctx context.Context, userID int, token string) error {
	const q = `
INSERT INTO notify_tokens (user_id, token)
VALUES ($1, $2)
ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id`
	_, err := r.DB.ExecContext(ctx, q, userID, token)
	return err
}

func (r *DeviceTokenRepository) Delete(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM notify_tokens WHERE token = $1`, token)
	return err
}

func (r *DeviceTokenRepository) TokensByUser(ctx context.Context, userID int) ([]string, error) {
	return r.queryTokens(ctx, `SELECT token FROM notify_tokens WHERE user_id = $1`, userID)
}

// AdminTokens lists device tokens of every admin user, the audience of
// check-in/out and invoice notifications.
func (r *DeviceTokenRepository) AdminTokens(ctx context.Context) ([]string, error) {
	const q = `
SELECT t.token FROM notify_tokens t
JOIN users u ON u.id = t.user_id
WHERE u.role = 'admin'`
	return r.queryTokens(ctx, q)
}

func (r *DeviceTokenRepository) queryTokens(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
