package auth

import (
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTokenTTL    = 2 * time.Hour
	DefaultBcryptCost  = 10
	DefaultTokenLookup = "header:Authorization"
	DefaultAuthScheme  = "Bearer"
	minSigningKeyBytes = 32
)

// Config holds auth options. Values come from the process
// environment, never from request input.
type Config struct {
	SigningKey  string        `env:"SIGNING_KEY,required,notEmpty"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"2h"`
	BcryptCost  int           `env:"BCRYPT_COST" envDefault:"10"`
	HashWorkers int           `env:"HASH_WORKERS"`
	TokenLookup string        `env:"TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme  string        `env:"AUTH_SCHEME" envDefault:"Bearer"`
}

// LoadConfig parses Config from environment variables prefixed with AUTH_.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(nil)
}

// LoadConfigFrom parses Config from the given environment map, or
// from the process environment when environ is nil.
func LoadConfigFrom(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{Prefix: "AUTH_"}
	if environ != nil {
		opts.Environment = environ
	}

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid auth configuration").
			WithCode(goerrors.CodeBadRequest)
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) withDefaults() Config {
	if c.TokenTTL == 0 {
		c.TokenTTL = DefaultTokenTTL
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = DefaultBcryptCost
	}
	if c.HashWorkers <= 0 {
		c.HashWorkers = runtime.NumCPU()
	}
	if c.TokenLookup == "" {
		c.TokenLookup = DefaultTokenLookup
	}
	if c.AuthScheme == "" {
		c.AuthScheme = DefaultAuthScheme
	}
	return c
}

// Validate checks bounds on every option
func (c Config) Validate() error {
	err := goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&c,
			validation.Field(&c.SigningKey, validation.Required, validation.Length(minSigningKeyBytes, 0)),
			validation.Field(&c.TokenTTL, validation.Min(time.Minute), validation.Max(24*time.Hour)),
			validation.Field(&c.BcryptCost, validation.Min(bcrypt.MinCost), validation.Max(bcrypt.MaxCost)),
			validation.Field(&c.HashWorkers, validation.Min(1)),
		)
	}, "invalid auth configuration")
	if err != nil {
		return err.WithTextCode(TextCodeValidation).WithCode(goerrors.CodeBadRequest)
	}
	return nil
}
