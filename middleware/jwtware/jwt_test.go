package jwtware

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

type requestContext struct {
	*router.MockContext
	std     context.Context
	headers map[string]string
	query   map[string]string
	cookies map[string]string
}

func newRequestContext() *requestContext {
	return &requestContext{
		MockContext: router.NewMockContext(),
		std:         context.Background(),
		headers:     map[string]string{},
		query:       map[string]string{},
		cookies:     map[string]string{},
	}
}

func (c *requestContext) Context() context.Context      { return c.std }
func (c *requestContext) SetContext(ctx context.Context) { c.std = ctx }

func (c *requestContext) Header(key string) string {
	return c.headers[key]
}

func (c *requestContext) Query(key string, defaultValue ...string) string {
	if v, ok := c.query[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *requestContext) Cookies(key string, defaultValue ...string) string {
	if v, ok := c.cookies[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func TestGetExtractors(t *testing.T) {
	tests := []struct {
		name   string
		lookup string
		setup  func(c *requestContext)
		want   string
	}{
		{
			name:   "header with scheme",
			lookup: "header:Authorization",
			setup:  func(c *requestContext) { c.headers["Authorization"] = "Bearer abc.def.ghi" },
			want:   "abc.def.ghi",
		},
		{
			name:   "scheme is case insensitive",
			lookup: "header:Authorization",
			setup:  func(c *requestContext) { c.headers["Authorization"] = "bearer abc" },
			want:   "abc",
		},
		{
			name:   "header without scheme",
			lookup: "header:Authorization",
			setup:  func(c *requestContext) { c.headers["Authorization"] = "abc.def.ghi" },
			want:   "",
		},
		{
			name:   "query",
			lookup: "query:auth_token",
			setup:  func(c *requestContext) { c.query["auth_token"] = "q-token" },
			want:   "q-token",
		},
		{
			name:   "cookie",
			lookup: "cookie:jwt",
			setup:  func(c *requestContext) { c.cookies["jwt"] = "c-token" },
			want:   "c-token",
		},
		{
			name:   "first source wins",
			lookup: "header:Authorization, cookie:jwt",
			setup: func(c *requestContext) {
				c.headers["Authorization"] = "Bearer h-token"
				c.cookies["jwt"] = "c-token"
			},
			want: "h-token",
		},
		{
			name:   "falls through to next source",
			lookup: "header:Authorization,cookie:jwt",
			setup:  func(c *requestContext) { c.cookies["jwt"] = "c-token" },
			want:   "c-token",
		},
		{
			name:   "unknown sources ignored",
			lookup: "form:token,header,cookie:",
			setup:  func(c *requestContext) { c.cookies["jwt"] = "c-token" },
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newRequestContext()
			tt.setup(c)
			assert.Equal(t, tt.want, extractToken(c, GetExtractors(tt.lookup, "Bearer")))
		})
	}
}

func TestNew_SetsContextOnSuccess(t *testing.T) {
	var gotToken string
	mw := New(Config{
		Authenticate: func(ctx context.Context, token string) (context.Context, error) {
			gotToken = token
			return context.WithValue(ctx, ctxKey{}, "ana"), nil
		},
	})

	var seen any
	h := mw(func(c router.Context) error {
		seen = c.Context().Value(ctxKey{})
		return nil
	})

	c := newRequestContext()
	c.headers["Authorization"] = "Bearer abc"
	require.NoError(t, h(c))

	assert.Equal(t, "abc", gotToken)
	assert.Equal(t, "ana", seen)
}

func TestNew_ReadsAuthorizationHeader(t *testing.T) {
	var gotToken string
	mw := New(Config{
		Authenticate: func(ctx context.Context, token string) (context.Context, error) {
			gotToken = token
			return ctx, nil
		},
	})

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer abc.def.ghi"
	ctx.On("Header", "Authorization").Return("Bearer abc.def.ghi")
	ctx.On("Context").Return(context.Background())
	ctx.On("SetContext", mock.Anything).Return()

	called := false
	h := mw(func(router.Context) error {
		called = true
		return nil
	})

	require.NoError(t, h(ctx))
	assert.Equal(t, "abc.def.ghi", gotToken)
	assert.True(t, called)
}

func TestNew_MissingTokenReachesAuthenticate(t *testing.T) {
	denied := errors.New("denied")
	var gotToken = "unset"

	mw := New(Config{
		Authenticate: func(ctx context.Context, token string) (context.Context, error) {
			gotToken = token
			return ctx, denied
		},
	})

	called := false
	h := mw(func(router.Context) error {
		called = true
		return nil
	})

	err := h(newRequestContext())
	assert.ErrorIs(t, err, denied, "default error handler returns the error")
	assert.Empty(t, gotToken)
	assert.False(t, called)
}

func TestNew_ErrorHandler(t *testing.T) {
	var handled error
	mw := New(Config{
		Authenticate: func(ctx context.Context, token string) (context.Context, error) {
			return ctx, ErrJWTMissingOrMalformed
		},
		ErrorHandler: func(_ router.Context, err error) error {
			handled = err
			return nil
		},
	})

	h := mw(func(router.Context) error {
		t.Fatal("next must not run")
		return nil
	})

	require.NoError(t, h(newRequestContext()))
	assert.ErrorIs(t, handled, ErrJWTMissingOrMalformed)
}

func TestNew_Filter(t *testing.T) {
	mw := New(Config{
		Filter: func(router.Context) bool { return true },
		Authenticate: func(ctx context.Context, token string) (context.Context, error) {
			t.Fatal("authenticate must not run")
			return ctx, nil
		},
	})

	called := false
	h := mw(func(router.Context) error {
		called = true
		return nil
	})

	require.NoError(t, h(newRequestContext()))
	assert.True(t, called)
}

func TestNew_RequiresAuthenticate(t *testing.T) {
	assert.Panics(t, func() { New() })
	assert.Panics(t, func() { New(Config{}) })
}
