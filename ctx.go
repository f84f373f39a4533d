package auth

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// Projectable user fields for UserField
const (
	FieldID       = "id"
	FieldEmail    = "email"
	FieldFullName = "fullName"
	FieldIsActive = "isActive"
	FieldRoles    = "roles"
)

// WithUser sets the authenticated user in the given context
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userCtxKey, user)
}

// UserFromContext finds the user from the context.
func UserFromContext(ctx context.Context) (*User, bool) {
	if ctx == nil {
		return nil, false
	}
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok && raw != nil
}

// MustUser returns the user or panics. Only call it behind the
// authentication guard.
func MustUser(ctx context.Context) *User {
	user, ok := UserFromContext(ctx)
	if !ok {
		panic("auth: no user in context, authentication guard did not run")
	}
	return user
}

// UserField projects a single field of the authenticated user.
func UserField(ctx context.Context, field string) (any, error) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return nil, ErrIdentityUnavailable
	}

	switch field {
	case FieldID:
		return user.ID, nil
	case FieldEmail:
		return user.Email, nil
	case FieldFullName:
		return user.FullName, nil
	case FieldIsActive:
		return user.IsActive, nil
	case FieldRoles:
		return append(Roles(nil), user.Roles...), nil
	default:
		return nil, goerrors.Wrap(
			fmt.Errorf("unknown user field %q", field),
			goerrors.CategoryInternal,
			ErrIdentityUnavailable.Message,
		).WithTextCode(TextCodeIdentityUnavailable).WithCode(goerrors.CodeInternal)
	}
}

// CurrentUser returns the user attached by the authentication guard
func CurrentUser(c router.Context) (*User, error) {
	user, ok := UserFromContext(c.Context())
	if !ok {
		return nil, ErrIdentityUnavailable
	}
	return user.Public(), nil
}

// CurrentUserField is UserField for router contexts
func CurrentUserField(c router.Context, field string) (any, error) {
	return UserField(c.Context(), field)
}
