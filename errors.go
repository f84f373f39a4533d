package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeUnauthorized        = "UNAUTHORIZED"
	TextCodeForbidden           = "FORBIDDEN"
	TextCodeEmailTaken          = "EMAIL_TAKEN"
	TextCodeTokenInvalid        = "TOKEN_INVALID"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeUserNotFound        = "USER_NOT_FOUND"
	TextCodeIdentityUnavailable = "IDENTITY_UNAVAILABLE"
	TextCodeValidation          = "VALIDATION_FAILED"
	TextCodeInternal            = "INTERNAL_ERROR"
)

// ErrUnauthorized is the single caller facing shape for every
// authentication failure: missing, invalid or expired tokens,
// bad credentials, unknown or inactive users.
var ErrUnauthorized = goerrors.New("unauthorized", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(goerrors.CodeUnauthorized)

// ErrForbidden is returned when an authenticated user lacks
// every role an operation accepts.
var ErrForbidden = goerrors.New("forbidden", goerrors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(goerrors.CodeForbidden)

// ErrEmailTaken is returned when the storage unique constraint on
// email rejects an insert.
var ErrEmailTaken = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(goerrors.CodeConflict)

// ErrTokenInvalid covers malformed tokens, bad signatures and
// unexpected signing methods.
var ErrTokenInvalid = goerrors.New("token invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for tokens with a valid signature
// past their expiry.
var ErrTokenExpired = goerrors.New("token expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserNotFound is internal to the credential store and the guards.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrIdentityUnavailable signals that identity was read where no
// authentication guard ran. It is a wiring bug, not caller input.
var ErrIdentityUnavailable = goerrors.New("identity not available in context", goerrors.CategoryInternal).
	WithTextCode(TextCodeIdentityUnavailable).
	WithCode(goerrors.CodeInternal)

// IsUniqueViolation reports whether err comes from a unique
// constraint rejecting a write, for postgres and sqlite drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr interface{ SQLState() string }
	if goerrors.As(err, &pgErr) && pgErr.SQLState() == "23505" {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

func internalError(err error, message string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithTextCode(TextCodeInternal).
		WithCode(goerrors.CodeInternal)
}
