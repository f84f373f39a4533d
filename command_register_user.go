package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

// RegisterUserHandler validates, hashes and stores a new account,
// then issues its first token.
type RegisterUserHandler struct {
	store   CredentialStore
	hasher  PasswordHasher
	tokens  TokenIssuer
	logger  Logger
	metrics *Metrics
}

func NewRegisterUserHandler(store CredentialStore, hasher PasswordHasher, tokens TokenIssuer) *RegisterUserHandler {
	return &RegisterUserHandler{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		logger: defLogger{},
	}
}

func (h *RegisterUserHandler) WithLogger(l Logger) *RegisterUserHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *RegisterUserHandler) WithMetrics(m *Metrics) *RegisterUserHandler {
	h.metrics = m
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) (*LoginResult, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) (*LoginResult, error) {
	if err := event.Validate(); err != nil {
		h.metrics.observeRegistration("invalid")
		return nil, err
	}

	hash, err := h.hasher.Hash(ctx, event.Password)
	if err != nil {
		h.logger.Error("RegisterUser hash password", "error", err)
		h.metrics.observeRegistration("error")
		return nil, internalError(err, "failed to hash password")
	}

	user, err := h.store.Register(ctx, event.Email, hash, event.FullName)
	if err != nil {
		if goerrors.Is(err, ErrEmailTaken) {
			h.metrics.observeRegistration("conflict")
			return nil, err
		}
		h.logger.Error("RegisterUser store user", "error", err)
		h.metrics.observeRegistration("error")
		return nil, err
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("RegisterUser issue token", "error", err)
		h.metrics.observeRegistration("error")
		return nil, err
	}

	h.logger.Info("RegisterUser created", "user_id", user.ID)
	h.metrics.observeRegistration("success")
	return &LoginResult{User: user.Public(), Token: token}, nil
}
