package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidSession     = errors.New("invalid session")
	ErrSessionExpired     = errors.New("session expired")
	ErrSessionRevoked     = errors.New("session revoked")
	ErrForbidden          = errors.New("insufficient permissions")
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Role     Role   `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID   snowflake.ID `json:"userId"`
	Username string       `json:"username"`
	Role     Role         `json:"role"`
	Name     string       `json:"name"`
	Phone    string       `json:"phone"`
}

type Service interface {
	// Register creates a new account. Blank role defaults to customer.
	Register(ctx context.Context, req RegisterRequest) (*User, error)

	// Login verifies credentials and opens a session. The returned token is
	// shown exactly once; only its hash is kept.
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)

	// Logout revokes the session behind the raw token.
	Logout(ctx context.Context, rawToken string) error

	// Authenticate resolves a raw bearer token to its principal, touching
	// the session's last-seen time.
	Authenticate(ctx context.Context, rawToken string) (*Principal, error)

	// EnsureAdmin creates the named admin account if no user has it yet.
	// Called once at startup from configuration.
	EnsureAdmin(ctx context.Context, username, password string) error
}
