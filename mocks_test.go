package auth_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	auth "github.com/goliatone/go-catalog-auth"
)

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) Register(ctx context.Context, email, passwordHash, fullName string) (*auth.User, error) {
	args := m.Called(ctx, email, passwordHash, fullName)
	if user := args.Get(0); user != nil {
		return user.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if user := args.Get(0); user != nil {
		return user.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) FindByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) SetActive(ctx context.Context, id uuid.UUID, active bool) (*auth.User, error) {
	args := m.Called(ctx, id, active)
	if user := args.Get(0); user != nil {
		return user.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCredentialStore) SetRoles(ctx context.Context, id uuid.UUID, roles ...auth.Role) (*auth.User, error) {
	args := m.Called(ctx, id, roles)
	if user := args.Get(0); user != nil {
		return user.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	args := m.Called(ctx, plaintext)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(ctx context.Context, plaintext, digest string) bool {
	args := m.Called(ctx, plaintext, digest)
	return args.Bool(0)
}
