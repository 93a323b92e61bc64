package models

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// User roles.
const (
	RoleAdmin      = "admin"
	RoleContractor = "contractor"
)

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// RequiresBuildingAssignment reports whether check-in demands an explicit
// building assignment for this user's role. Admins may check in anywhere.
func (u User) RequiresBuildingAssignment() bool {
	return u.Role == RoleContractor
}

// Claims carried inside access tokens.
type Claims struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// Session stores a refresh token for the portal.
type Session struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// DeviceToken is a registered FCM push target.
type DeviceToken struct {
	UserID int    `json:"user_id"`
	Token  string `json:"token"`
}
