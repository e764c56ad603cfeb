package echoapi

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/solomonake/student-crm-dashboard/core/identity"
	sessionsvc "github.com/solomonake/student-crm-dashboard/services/session"
)

type authApi struct {
	tokens   *TokenIssuer
	provider identity.Provider
	sessions sessionsvc.Store
	validate *validator.Validate
}

func registerAuthAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	tokens *TokenIssuer,
	provider identity.Provider,
	sessions sessionsvc.Store,
	validate *validator.Validate,
) {
	api := authApi{
		tokens:   tokens,
		provider: provider,
		sessions: sessions,
		validate: validate,
	}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/login", api.login)
	ag.POST("/signup", api.signup)

	// authed endpoints
	sg := ag.Group("", authed...)
	sg.POST("/logout", api.logout)
	sg.POST("/token-refresh", api.refreshToken)
	sg.GET("/me", api.me)
}

type LoginResponse struct {
	Token     string             `json:"token"`
	Principal identity.Principal `json:"principal"`
}

func (api *authApi) respondWithToken(ctx echo.Context, code int, p identity.Principal) error {
	token, err := api.tokens.Generate(api.tokens.Claims(p))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(code, LoginResponse{Token: token, Principal: p})
}

func (api *authApi) login(ctx echo.Context) error {
	var data identity.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.provider.Login(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	return api.respondWithToken(ctx, http.StatusOK, p)
}

func (api *authApi) signup(ctx echo.Context) error {
	var data identity.Signup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Signup")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.provider.Signup(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "signing up")
	}
	return api.respondWithToken(ctx, http.StatusCreated, p)
}

func (api *authApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	rctx := ctx.Request().Context()

	if err = api.sessions.Revoke(rctx, claims.Id, time.Unix(claims.ExpiresAt, 0)); err != nil {
		return errors.Wrap(err, "revoking session")
	}
	if err = api.provider.Logout(rctx, claims.Principal()); err != nil {
		return errors.Wrap(err, "logging out")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	token, err := api.tokens.refresh(p, claims)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"token": token})
}

func (api *authApi) me(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}
