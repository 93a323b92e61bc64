package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (models.User, error) {
	const q = `SELECT id, name, email, password_hash, role, created_at FROM users WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, q, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	const q = `SELECT id, name, email, password_hash, role, created_at FROM users WHERE email = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, q, email))
}

func (r *UserRepository) scanOne(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (r *UserRepository) CreateSession(ctx context.Context, s models.Session) error {
	const q = `
INSERT INTO sessions (user_id, refresh_token, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE SET refresh_token = EXCLUDED.refresh_token, expires_at = EXCLUDED.expires_at`
	_, err := r.DB.ExecContext(ctx, q, s.UserID, s.RefreshToken, s.ExpiresAt)
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	const q = `SELECT id, user_id, refresh_token, expires_at FROM sessions WHERE refresh_token = $1`
	var s models.Session
	err := r.DB.QueryRowContext(ctx, q, refreshToken).Scan(&s.ID, &s.UserID, &s.RefreshToken, &s.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, models.ErrNoRecord
	}
	if err != nil {
		return models.Session{}, err
	}
	if time.Now().After(s.ExpiresAt) {
		return models.Session{}, models.ErrNoRecord
	}
	return s, nil
}
