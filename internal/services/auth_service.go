package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/silasdani/bullet-services-sub001/internal/models"
)

// TokenIssuer signs access tokens and mints refresh tokens.
type TokenIssuer interface {
	Access(user models.User) (string, error)
	Refresh() (string, time.Time, error)
}

// AuthUserStore is the slice of UserRepository the auth service uses.
type AuthUserStore interface {
	GetByID(ctx context.Context, id int) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	CreateSession(ctx context.Context, s models.Session) error
	GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error)
}

// TokenPair is the sign-in response payload.
type TokenPair struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

// AuthService authenticates portal users.
type AuthService struct {
	Users  AuthUserStore
	Tokens TokenIssuer
	Logger *slog.Logger
}

// SignIn verifies credentials and issues a token pair. Unknown emails and
// wrong passwords both collapse to ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (TokenPair, error) {
	user, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return TokenPair{}, models.ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return TokenPair{}, models.ErrInvalidCredentials
	}

	access, err := s.Tokens.Access(user)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, expiresAt, err := s.Tokens.Refresh()
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.Users.CreateSession(ctx, models.Session{
		UserID:       user.ID,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}); err != nil {
		return TokenPair{}, err
	}

	s.Logger.Info("user signed in", "user_id", user.ID, "role", user.Role)
	return TokenPair{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

// RefreshAccess swaps a valid refresh token for a new access token.
func (s *AuthService) RefreshAccess(ctx context.Context, refreshToken string) (TokenPair, error) {
	session, err := s.Users.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return TokenPair{}, models.ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	user, err := s.Users.GetByID(ctx, session.UserID)
	if err != nil {
		return TokenPair{}, err
	}
	access, err := s.Tokens.Access(user)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refreshToken, User: user}, nil
}
