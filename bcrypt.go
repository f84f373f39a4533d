package auth

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// BcryptHasher runs bcrypt with a bounded number of concurrent
// computations.
type BcryptHasher struct {
	cost    int
	pool    *semaphore.Weighted
	metrics *Metrics
	logger  Logger
}

var _ PasswordHasher = (*BcryptHasher)(nil)

type HasherOption func(*BcryptHasher)

func WithHasherMetrics(m *Metrics) HasherOption {
	return func(h *BcryptHasher) {
		h.metrics = m
	}
}

func WithHasherLogger(l Logger) HasherOption {
	return func(h *BcryptHasher) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewBcryptHasher returns a hasher with the given cost and at most
// workers concurrent hash computations.
func NewBcryptHasher(cost, workers int, opts ...HasherOption) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	h := &BcryptHasher{
		cost:   cost,
		pool:   semaphore.NewWeighted(int64(workers)),
		logger: defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	return h
}

// Hash will generate a password hash. The salt is embedded in
// the digest.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.pool.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify compares plaintext with digest in constant time. Any
// mismatch, malformed digest or cancelled wait yields false.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, digest string) bool {
	if digest == "" {
		return false
	}

	if err := h.acquire(ctx); err != nil {
		h.logger.Debug("password verify aborted", "error", err)
		return false
	}
	defer h.pool.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// Cost returns the configured work factor
func (h *BcryptHasher) Cost() int {
	return h.cost
}

func (h *BcryptHasher) acquire(ctx context.Context) error {
	start := time.Now()
	err := h.pool.Acquire(ctx, 1)
	h.metrics.observeHashWait(time.Since(start))
	return err
}
