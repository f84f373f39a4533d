package auth

import (
	"context"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"

	"github.com/goliatone/go-catalog-auth/middleware/jwtware"
)

// RouteGuard builds the per route middleware chain: authenticate
// first, then check roles.
type RouteGuard struct {
	auther      *Auther
	tokenLookup string
	authScheme  string
	responder   *ErrorResponder
}

func NewRouteGuard(auther *Auther, cfg Config, responder *ErrorResponder) *RouteGuard {
	cfg = cfg.withDefaults()
	if responder == nil {
		responder = NewErrorResponder(nil)
	}
	return &RouteGuard{
		auther:      auther,
		tokenLookup: cfg.TokenLookup,
		authScheme:  cfg.AuthScheme,
		responder:   responder,
	}
}

// Authenticate rejects the request unless it carries a valid token
// for an active user, and attaches that user to the request context.
func (g *RouteGuard) Authenticate() router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		TokenLookup: g.tokenLookup,
		AuthScheme:  g.authScheme,
		Authenticate: func(ctx context.Context, token string) (context.Context, error) {
			user, err := g.auther.Authenticate(ctx, token)
			if err != nil {
				return ctx, err
			}
			return WithUser(ctx, user), nil
		},
		ErrorHandler: g.responder.Respond,
	})
}

// RequireRoles allows the request when the user holds any of roles.
// No roles means any authenticated user.
func (g *RouteGuard) RequireRoles(roles ...Role) router.MiddlewareFunc {
	allowed := append([]Role(nil), roles...)
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(c router.Context) error {
			if err := g.auther.Authorize(c.Context(), allowed...); err != nil {
				return g.responder.Respond(c, err)
			}
			return next(c)
		}
	}
}

// Protect returns the fixed guard pipeline for one route.
func (g *RouteGuard) Protect(roles ...Role) []router.MiddlewareFunc {
	return []router.MiddlewareFunc{
		g.Authenticate(),
		g.RequireRoles(roles...),
	}
}

// ErrorResponder writes errors as JSON. Internal errors are logged
// in full and replaced by an opaque body.
type ErrorResponder struct {
	logger Logger
	debug  bool
}

func NewErrorResponder(logger Logger) *ErrorResponder {
	if logger == nil {
		logger = defLogger{}
	}
	return &ErrorResponder{logger: logger}
}

// WithDebug pretty prints error metadata in logs
func (r *ErrorResponder) WithDebug(debug bool) *ErrorResponder {
	r.debug = debug
	return r
}

func (r *ErrorResponder) Respond(c router.Context, err error) error {
	richErr := goerrors.MapToError(err, []goerrors.ErrorMapper{}).Clone()
	if richErr.Code == 0 {
		richErr.Code = codeForCategory(richErr.Category)
	}

	switch richErr.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput, goerrors.CategoryConflict,
		goerrors.CategoryAuth, goerrors.CategoryAuthz, goerrors.CategoryNotFound:
		r.logger.Debug("Request rejected",
			"text_code", richErr.TextCode,
			"category", richErr.Category.String(),
			"path", c.Path(),
		)
	default:
		args := []any{"error", err, "path", c.Path()}
		for _, attr := range goerrors.ToSlogAttributes(richErr) {
			args = append(args, attr)
		}
		if r.debug {
			args = append(args, "details", print.MaybePrettyJSON(richErr.Metadata))
		}
		r.logger.Error("Request failed", args...)

		richErr = goerrors.New("an unexpected error occurred", goerrors.CategoryInternal).
			WithTextCode(TextCodeInternal).
			WithCode(goerrors.CodeInternal)
	}

	return c.JSON(richErr.Code, errorBody(richErr))
}

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Category string            `json:"category"`
	Code     int               `json:"code"`
	TextCode string            `json:"text_code,omitempty"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
}

func errorBody(e *goerrors.Error) ErrorBody {
	detail := ErrorDetail{
		Category: e.Category.String(),
		Code:     e.Code,
		TextCode: e.TextCode,
		Message:  e.Message,
	}
	if e.Category == goerrors.CategoryValidation {
		if fields := e.ValidationMap(); len(fields) > 0 {
			detail.Fields = fields
		}
	}
	return ErrorBody{Error: detail}
}

func codeForCategory(c goerrors.Category) int {
	switch c {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
