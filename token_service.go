package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// TokenService signs and validates HS256 session tokens
type TokenService struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
	logger     Logger
}

var _ TokenIssuer = (*TokenService)(nil)

type TokenServiceOption func(*TokenService)

// WithClock overrides time.Now
func WithClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

func WithTokenLogger(l Logger) TokenServiceOption {
	return func(ts *TokenService) {
		if l != nil {
			ts.logger = l
		}
	}
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, ttl time.Duration, opts ...TokenServiceOption) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	ts := &TokenService{
		signingKey: signingKey,
		ttl:        ttl,
		now:        time.Now,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// Issue creates a token for user with sub, iat and exp claims.
func (ts *TokenService) Issue(user *User) (string, error) {
	if user == nil || user.ID == uuid.Nil {
		return "", goerrors.New("token subject must not be empty", goerrors.CategoryInternal).
			WithTextCode(TextCodeInternal).
			WithCode(goerrors.CodeInternal)
	}

	now := ts.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.signingKey)
	if err != nil {
		return "", internalError(err, "failed to sign JWT")
	}

	return signed, nil
}

// Validate parses and validates a token string. It returns
// ErrTokenExpired for a correctly signed token past its expiry and
// ErrTokenInvalid for anything else that fails.
func (ts *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ts.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		ts.logger.Debug("token validation failed", "error", err)
		return nil, ErrTokenInvalid
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	if _, err := claims.UserID(); err != nil {
		ts.logger.Debug("token subject is not a user id", "sub", claims.Subject)
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// TTL returns the configured token lifetime
func (ts *TokenService) TTL() time.Duration {
	return ts.ttl
}
