package repository

import (
	"context"
	"errors"
	"log"

	"github.com/uptrace/bun"

	auth "github.com/goliatone/go-catalog-auth"
	"github.com/goliatone/go-catalog-auth/migrations"
)

type Manager struct {
	db    *bun.DB
	users auth.CredentialStore
}

func NewRepositoryManager(db *bun.DB) *Manager {
	return &Manager{
		db:    db,
		users: auth.NewUsersRepository(db),
	}
}

func (m *Manager) Validate() error {
	if m.db == nil {
		return errors.New("repository db should be initialized")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	return nil
}

func (m *Manager) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

// Migrate applies pending schema migrations
func (m *Manager) Migrate(ctx context.Context) error {
	return migrations.Run(ctx, m.db)
}

func (m *Manager) DB() *bun.DB {
	return m.db
}

func (m *Manager) Users() auth.CredentialStore {
	return m.users
}
