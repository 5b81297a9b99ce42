package domain

import (
	"context"
	"time"

	"github.com/CalumRakk/resume-project/pkg/auth"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type LogoutRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// ClientInfo describes the caller of an auth operation for binding and
// security logging.
type ClientInfo struct {
	Fingerprint auth.Fingerprint
	RequestID   string
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
}

type AuthUsecase interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest, client ClientInfo) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string, client ClientInfo) (string, error)
	Logout(ctx context.Context, userID, refreshToken string, client ClientInfo) error
	GetCurrentUser(ctx context.Context, id string) (*User, error)
}
