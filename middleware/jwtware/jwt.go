package jwtware

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup       = "header:" + router.HeaderAuthorization
	defaultAuthScheme        = "Bearer"
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// AuthenticateFunc resolves a raw token and returns the request
// context enriched with the resolved identity. An empty token must
// be rejected.
type AuthenticateFunc func(ctx context.Context, token string) (context.Context, error)

type Config struct {
	// Filter skips the middleware when it returns true
	Filter func(router.Context) bool
	// Authenticate is required
	Authenticate AuthenticateFunc
	ErrorHandler func(router.Context, error) error
	// TokenLookup is a comma separated list of source:name pairs,
	// e.g. "header:Authorization,cookie:jwt,query:auth_token"
	TokenLookup string
	AuthScheme  string
}

// New returns a middleware that authenticates the request bearer
// token and stores the enriched context before calling next.
func New(config ...Config) router.MiddlewareFunc {
	cfg := makeCfg(config)
	extractors := GetExtractors(cfg.TokenLookup, cfg.AuthScheme)

	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			if cfg.Filter != nil && cfg.Filter(c) {
				return next(c)
			}

			token := extractToken(c, extractors)

			ctx, err := cfg.Authenticate(c.Context(), token)
			if err != nil {
				return cfg.ErrorHandler(c, err)
			}

			c.SetContext(ctx)
			return next(c)
		}
	}
}

func makeCfg(config []Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Authenticate == nil {
		panic("jwtware: Authenticate is required")
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(_ router.Context, err error) error {
			return err
		}
	}

	if strings.TrimSpace(cfg.TokenLookup) == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if strings.TrimSpace(cfg.AuthScheme) == "" {
		cfg.AuthScheme = defaultAuthScheme
	}

	return cfg
}

// extractToken returns the first token found or an empty string.
func extractToken(c router.Context, extractors []JWTExtractor) string {
	for _, extractor := range extractors {
		if token, err := extractor(c); err == nil && token != "" {
			return token
		}
	}
	return ""
}

type JWTExtractor func(c router.Context) (string, error)

func GetExtractors(tokenLookup string, authScheme string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	// header:Authorization,cookie:jwt,query:auth_token
	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.SplitN(strings.TrimSpace(rootPart), ":", 2)
		if len(parts) != 2 {
			continue
		}

		source, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if name == "" {
			continue
		}

		switch source {
		case "header":
			extractors = append(extractors, jwtFromHeader(name, authScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(name))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(name))
		}
	}

	return extractors
}

// jwtFromHeader returns a function that extracts token from the request header.
func jwtFromHeader(header string, authScheme string) JWTExtractor {
	authScheme = strings.TrimSpace(authScheme)
	return func(c router.Context) (string, error) {
		a := c.Header(header)
		l := len(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) && a[l] == ' ' {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

// jwtFromQuery returns a function that extracts token from the query string.
func jwtFromQuery(param string) JWTExtractor {
	return func(c router.Context) (string, error) {
		token := c.Query(param, "")
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromCookie returns a function that extracts token from the named cookie.
func jwtFromCookie(name string) JWTExtractor {
	return func(c router.Context) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}
