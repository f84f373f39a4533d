package auth

import (
	"context"
	"database/sql"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type users struct {
	repository.Repository[*User]
	db bun.IDB
}

var _ CredentialStore = (*users)(nil)

// NewUsersRepository returns a CredentialStore backed by bun.
func NewUsersRepository(db *bun.DB) CredentialStore {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

// Register inserts a new user. Duplicate emails are rejected by the
// unique constraint, there is no existence check before the insert.
func (a *users) Register(ctx context.Context, email, passwordHash, fullName string) (*User, error) {
	record := &User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	prepareUserDefaults(record)

	if _, err := a.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, internalError(err, "failed to insert user")
	}

	return record.Public(), nil
}

// FindByEmail loads the password hash. The result must not leave
// the login path.
func (a *users) FindByEmail(ctx context.Context, email string) (*User, error) {
	record := &User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, internalError(err, "failed to find user by email")
	}

	return record, nil
}

// FindByID never loads the password hash and never caches, so role
// and active flag changes apply on the next request.
func (a *users) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	record, err := a.Repository.GetByID(ctx, id.String(), withoutPassword)
	if err != nil {
		if repository.IsRecordNotFound(err) || goerrors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, internalError(err, "failed to find user by id")
	}
	return record.Public(), nil
}

// SetActive toggles the active flag
func (a *users) SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error) {
	return a.update(ctx, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("is_active = ?", active)
	})
}

// SetRoles replaces the role set. An empty set falls back to
// DefaultRole.
func (a *users) SetRoles(ctx context.Context, id uuid.UUID, roles ...Role) (*User, error) {
	for _, r := range roles {
		if !r.IsValid() {
			return nil, goerrors.New("unknown role", goerrors.CategoryValidation).
				WithTextCode(TextCodeValidation).
				WithCode(goerrors.CodeBadRequest).
				WithMetadata(map[string]any{"role": r.String()})
		}
	}

	return a.update(ctx, id, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("roles = ?", Roles(roles).Normalize())
	})
}

func (a *users) update(ctx context.Context, id uuid.UUID, set func(*bun.UpdateQuery) *bun.UpdateQuery) (*User, error) {
	q := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id.String())

	res, err := set(q).Exec(ctx)
	if err != nil {
		return nil, internalError(err, "failed to update user")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrUserNotFound
	}

	return a.FindByID(ctx, id)
}

func withoutPassword(q *bun.SelectQuery) *bun.SelectQuery {
	return q.ExcludeColumn("password_hash")
}
