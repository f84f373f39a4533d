package auth

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// CredentialStore persists user records. Email uniqueness is
// enforced by the storage engine.
type CredentialStore interface {
	Register(ctx context.Context, email, passwordHash, fullName string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error)
	SetRoles(ctx context.Context, id uuid.UUID, roles ...Role) (*User, error)
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) bool
}

// TokenIssuer creates and verifies signed session tokens
type TokenIssuer interface {
	Issue(user *User) (string, error)
	Validate(token string) (*Claims, error)
}

// Authenticator resolves a raw bearer token into an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*User, error)
}

// LoginResult is returned by Register, Login and CheckStatus
type LoginResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// NewSlogLogger adapts a *slog.Logger to Logger
func NewSlogLogger(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return slogLogger{l}
}

type slogLogger struct {
	*slog.Logger
}

type defLogger struct{}

func (defLogger) Debug(string, ...any) {}
func (defLogger) Info(string, ...any)  {}
func (defLogger) Warn(string, ...any)  {}
func (defLogger) Error(string, ...any) {}
