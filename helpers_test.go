package auth_test

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"

	auth "github.com/goliatone/go-catalog-auth"
	"github.com/goliatone/go-catalog-auth/repository"
)

const testSigningKey = "test-signing-key-with-at-least-32-bytes"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	ctx := context.Background()
	dsn := "file:" + strings.ReplaceAll(uuid.NewString(), "-", "") + "?mode=memory&cache=shared"

	db, err := repository.Open(ctx, repository.DBConfig{
		Driver: repository.DriverSQLite,
		DSN:    dsn,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, repository.NewRepositoryManager(db).Migrate(ctx))
	return db
}

type testEnv struct {
	db       *bun.DB
	store    auth.CredentialStore
	hasher   *auth.BcryptHasher
	tokens   *auth.TokenService
	clock    *fakeClock
	auther   *auth.Auther
	register *auth.RegisterUserHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	clock := newFakeClock()

	env := &testEnv{
		db:     db,
		store:  auth.NewUsersRepository(db),
		hasher: auth.NewBcryptHasher(bcrypt.MinCost, 4),
		tokens: auth.NewTokenService([]byte(testSigningKey), time.Hour, auth.WithClock(clock.Now)),
		clock:  clock,
	}

	env.auther = auth.NewAuthenticator(env.store, env.hasher, env.tokens)
	env.register = auth.NewRegisterUserHandler(env.store, env.hasher, env.tokens)
	return env
}

func (e *testEnv) mustRegister(t *testing.T, email, password, fullName string) *auth.LoginResult {
	t.Helper()
	res, err := e.register.Execute(context.Background(), auth.RegisterUserMessage{
		Email:    email,
		Password: password,
		FullName: fullName,
	})
	require.NoError(t, err)
	return res
}

// testContext overrides the parts of router.MockContext the
// handlers under test touch.
type testContext struct {
	*router.MockContext
	std     context.Context
	headers map[string]string
	params  map[string]string
	body    []byte
	status  int
	payload any
}

func newTestContext() *testContext {
	return &testContext{
		MockContext: router.NewMockContext(),
		std:         context.Background(),
		headers:     map[string]string{},
		params:      map[string]string{},
	}
}

func (c *testContext) withBearer(token string) *testContext {
	c.headers[router.HeaderAuthorization] = "Bearer " + token
	return c
}

func (c *testContext) withBody(t *testing.T, v any) *testContext {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	c.body = b
	return c
}

func (c *testContext) Context() context.Context {
	return c.std
}

func (c *testContext) SetContext(ctx context.Context) {
	c.std = ctx
}

func (c *testContext) Path() string {
	return "/test"
}

func (c *testContext) Header(key string) string {
	return c.headers[key]
}

func (c *testContext) Param(key string, defaultValue ...string) string {
	if v, ok := c.params[key]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (c *testContext) Bind(i any) error {
	return json.Unmarshal(c.body, i)
}

func (c *testContext) JSON(code int, val any) error {
	c.status = code
	c.payload = val
	return nil
}

// response round trips the captured payload through JSON, the way a
// client would see it.
func (c *testContext) response(t *testing.T) map[string]any {
	t.Helper()
	b, err := json.Marshal(c.payload)
	require.NoError(t, err)

	out := map[string]any{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func okHandler(called *bool) router.HandlerFunc {
	return func(router.Context) error {
		*called = true
		return nil
	}
}
