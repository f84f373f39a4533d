package auth

import (
	"context"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// Auther implements login, status checks and both guards.
type Auther struct {
	store   CredentialStore
	hasher  PasswordHasher
	tokens  TokenIssuer
	logger  Logger
	metrics *Metrics

	dummyOnce   sync.Once
	dummyDigest string
}

// dummyPassword backs the digest verified on unknown email logins.
const dummyPassword = "catalog-auth-unknown-account"

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Auther
func NewAuthenticator(store CredentialStore, hasher PasswordHasher, tokens TokenIssuer) *Auther {
	return &Auther{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (a *Auther) WithLogger(l Logger) *Auther {
	if l != nil {
		a.logger = l
	}
	return a
}

func (a *Auther) WithMetrics(m *Metrics) *Auther {
	a.metrics = m
	return a
}

// Login verifies credentials and issues a token. Unknown email,
// wrong password and inactive account all fail with ErrUnauthorized.
func (a *Auther) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	msg := LoginMessage{Email: email, Password: password}
	if err := msg.Validate(); err != nil {
		a.metrics.observeLogin("invalid")
		return nil, err
	}

	user, err := a.store.FindByEmail(ctx, email)
	if err != nil {
		if !goerrors.Is(err, ErrUserNotFound) {
			a.logger.Error("Login find user by email", "error", err)
			a.metrics.observeLogin("error")
			return nil, err
		}
		a.hasher.Verify(ctx, password, a.unknownUserDigest(ctx))
		a.logger.Debug("Login unknown email")
		a.metrics.observeLogin("denied")
		return nil, ErrUnauthorized
	}

	if !a.hasher.Verify(ctx, password, user.PasswordHash) {
		a.logger.Debug("Login password mismatch", "user_id", user.ID)
		a.metrics.observeLogin("denied")
		return nil, ErrUnauthorized
	}

	if !user.IsActive {
		a.logger.Debug("Login inactive user", "user_id", user.ID)
		a.metrics.observeLogin("denied")
		return nil, ErrUnauthorized
	}

	token, err := a.tokens.Issue(user)
	if err != nil {
		a.logger.Error("Login issue token", "error", err)
		a.metrics.observeLogin("error")
		return nil, err
	}

	a.metrics.observeLogin("success")
	return &LoginResult{User: user.Public(), Token: token}, nil
}

// CheckStatus returns the authenticated user with a fresh token.
func (a *Auther) CheckStatus(ctx context.Context) (*LoginResult, error) {
	user, ok := UserFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	token, err := a.tokens.Issue(user)
	if err != nil {
		a.logger.Error("CheckStatus issue token", "error", err)
		return nil, err
	}

	return &LoginResult{User: user.Public(), Token: token}, nil
}

// Authenticate resolves token into an active user. The user is
// loaded from the store on every call.
func (a *Auther) Authenticate(ctx context.Context, token string) (*User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, a.deny("missing token")
	}

	claims, err := a.tokens.Validate(token)
	if err != nil {
		return nil, a.deny("token rejected", "error", err)
	}

	id, err := claims.UserID()
	if err != nil {
		return nil, a.deny("token subject malformed", "sub", claims.Subject)
	}

	user, err := a.store.FindByID(ctx, id)
	if err != nil {
		if goerrors.Is(err, ErrUserNotFound) {
			return nil, a.deny("token subject not found", "user_id", id)
		}
		a.logger.Error("Authenticate find user by id", "error", err)
		return nil, err
	}

	if !user.IsActive {
		return nil, a.deny("user inactive", "user_id", id)
	}

	return user, nil
}

// Authorize checks the context user against allowed roles. No user
// in context fails closed.
func (a *Auther) Authorize(ctx context.Context, allowed ...Role) error {
	user, ok := UserFromContext(ctx)
	if !ok {
		a.logger.Error("Authorize called without an authenticated user")
		a.metrics.observeDenial("roles")
		return ErrForbidden
	}

	if len(allowed) == 0 || user.Roles.HasAny(allowed...) {
		return nil
	}

	a.logger.Debug("Authorize role mismatch", "user_id", user.ID, "roles", user.Roles.Strings())
	a.metrics.observeDenial("roles")
	return ErrForbidden
}

// WarmUp computes the unknown account digest ahead of the first login.
func (a *Auther) WarmUp(ctx context.Context) {
	a.unknownUserDigest(ctx)
}

func (a *Auther) unknownUserDigest(ctx context.Context) string {
	a.dummyOnce.Do(func() {
		digest, err := a.hasher.Hash(ctx, dummyPassword)
		if err != nil {
			a.logger.Warn("Login dummy digest unavailable", "error", err)
			return
		}
		a.dummyDigest = digest
	})
	return a.dummyDigest
}

func (a *Auther) deny(reason string, args ...any) error {
	a.logger.Debug("Authenticate denied: "+reason, args...)
	a.metrics.observeDenial("authentication")
	return ErrUnauthorized
}
