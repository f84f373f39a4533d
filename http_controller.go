package auth

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

type AuthControllerRoutes struct {
	Register    string
	Login       string
	CheckStatus string
	Private     string
	AdminOnly   string
	UserActive  string
	UserRoles   string
}

// DefaultRoutes mirror the catalog API paths
var DefaultRoutes = AuthControllerRoutes{
	Register:    "/auth/register",
	Login:       "/auth/login",
	CheckStatus: "/auth/check-status",
	Private:     "/auth/private",
	AdminOnly:   "/auth/private2",
	UserActive:  "/auth/users/:id/active",
	UserRoles:   "/auth/users/:id/roles",
}

// AdminRoles may change other accounts
var AdminRoles = []Role{RoleAdmin, RoleSuperUser}

type AuthController struct {
	Routes    AuthControllerRoutes
	Logger    Logger
	auther    *Auther
	register  *RegisterUserHandler
	store     CredentialStore
	guard     *RouteGuard
	responder *ErrorResponder
}

type AuthControllerOption func(*AuthController)

func WithControllerLogger(l Logger) AuthControllerOption {
	return func(ac *AuthController) {
		if l != nil {
			ac.Logger = l
		}
	}
}

func WithControllerRoutes(routes AuthControllerRoutes) AuthControllerOption {
	return func(ac *AuthController) {
		ac.Routes = routes
	}
}

func NewAuthController(auther *Auther, register *RegisterUserHandler, store CredentialStore, guard *RouteGuard, responder *ErrorResponder, opts ...AuthControllerOption) *AuthController {
	if responder == nil {
		responder = NewErrorResponder(nil)
	}

	ac := &AuthController{
		Routes:    DefaultRoutes,
		Logger:    defLogger{},
		auther:    auther,
		register:  register,
		store:     store,
		guard:     guard,
		responder: responder,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ac)
		}
	}

	return ac
}

// RegisterAuthRoutes mounts the auth endpoints on app
func RegisterAuthRoutes[T any](app router.Router[T], a *AuthController) {
	app.Post(a.Routes.Register, a.RegisterUser)
	app.Post(a.Routes.Login, a.Login)

	app.Get(a.Routes.CheckStatus, a.CheckStatus, a.guard.Protect()...)
	app.Get(a.Routes.Private, a.Private, a.guard.Protect()...)
	app.Get(a.Routes.AdminOnly, a.AdminOnly, a.guard.Protect(AdminRoles...)...)
	app.Patch(a.Routes.UserActive, a.SetUserActive, a.guard.Protect(AdminRoles...)...)
	app.Patch(a.Routes.UserRoles, a.SetUserRoles, a.guard.Protect(AdminRoles...)...)
}

func (a *AuthController) RegisterUser(ctx router.Context) error {
	payload := new(RegisterUserMessage)
	if err := ctx.Bind(payload); err != nil {
		return a.responder.Respond(ctx, badRequest(err))
	}

	res, err := a.register.Execute(ctx.Context(), *payload)
	if err != nil {
		return a.responder.Respond(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, res)
}

func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginMessage)
	if err := ctx.Bind(payload); err != nil {
		return a.responder.Respond(ctx, badRequest(err))
	}

	res, err := a.auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.responder.Respond(ctx, err)
	}

	return ctx.JSON(http.StatusOK, res)
}

func (a *AuthController) CheckStatus(ctx router.Context) error {
	res, err := a.auther.CheckStatus(ctx.Context())
	if err != nil {
		return a.responder.Respond(ctx, err)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (a *AuthController) Private(ctx router.Context) error {
	user, err := CurrentUser(ctx)
	if err != nil {
		return a.responder.Respond(ctx, err)
	}

	email, err := CurrentUserField(ctx, FieldEmail)
	if err != nil {
		return a.responder.Respond(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"ok":        true,
		"user":      user,
		"userEmail": email,
	})
}

func (a *AuthController) AdminOnly(ctx router.Context) error {
	user, err := CurrentUser(ctx)
	if err != nil {
		return a.responder.Respond(ctx, err)
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"ok":   true,
		"user": user,
	})
}

type setActivePayload struct {
	IsActive *bool `json:"isActive"`
}

type setRolesPayload struct {
	Roles []string `json:"roles"`
}

func (a *AuthController) SetUserActive(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return a.responder.Respond(ctx, badRequest(err))
	}

	payload := new(setActivePayload)
	if err := ctx.Bind(payload); err != nil {
		return a.responder.Respond(ctx, badRequest(err))
	}
	if payload.IsActive == nil {
		return a.responder.Respond(ctx, goerrors.NewValidationFromMap("invalid input", map[string]string{
			"isActive": "cannot be blank",
		}).WithTextCode(TextCodeValidation).WithCode(goerrors.CodeBadRequest))
	}

	user, err := a.store.SetActive(ctx.Context(), id, *payload.IsActive)
	if err != nil {
		return a.responder.Respond(ctx, err)
	}

	a.Logger.Info("User active flag changed", "user_id", id, "is_active", *payload.IsActive)
	return ctx.JSON(http.StatusOK, map[string]any{"user": user})
}

func (a *AuthController) SetUserRoles(ctx router.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return a.responder.Respond(ctx, badRequest(err))
	}

	payload := new(setRolesPayload)
	if err := ctx.Bind(payload); err != nil {
		return a.responder.Respond(ctx, badRequest(err))
	}

	roles := make([]Role, 0, len(payload.Roles))
	for _, label := range payload.Roles {
		role, err := ParseRole(label)
		if err != nil {
			return a.responder.Respond(ctx, goerrors.NewValidationFromMap("invalid input", map[string]string{
				"roles": err.Error(),
			}).WithTextCode(TextCodeValidation).WithCode(goerrors.CodeBadRequest))
		}
		roles = append(roles, role)
	}

	user, err := a.store.SetRoles(ctx.Context(), id, roles...)
	if err != nil {
		return a.responder.Respond(ctx, err)
	}

	a.Logger.Info("User roles changed", "user_id", id, "roles", user.Roles.Strings())
	return ctx.JSON(http.StatusOK, map[string]any{"user": user})
}

func badRequest(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "malformed request").
		WithTextCode("BAD_REQUEST").
		WithCode(goerrors.CodeBadRequest)
}
